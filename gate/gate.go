// Package gate implements the member identity gate: it assigns each profile
// a unique coop member number exactly once, normalizes previously stored
// numbers, and tracks acceptance of the current terms-of-service version.
// Check and Accept never fail outward; every internal failure degrades to
// "not accepted" so callers only deal with a boolean.
package gate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"member-service/membernum"
	"member-service/models"
	"member-service/store"
)

// ErrStoreUnavailable wraps profile store failures so internal callers can
// tell them apart from allocation exhaustion (membernum.ErrExhausted).
var ErrStoreUnavailable = errors.New("profile store unavailable")

// CheckResult is the outcome of a terms check. Profile is nil when the user
// is anonymous or the profile could not be loaded or bootstrapped.
type CheckResult struct {
	TermsAccepted bool
	Profile       *models.Profile
}

type Gate struct {
	profiles       store.ProfileStore
	reservations   store.NumberReservations
	allocator      *membernum.Allocator
	currentVersion string
	reservationTTL time.Duration
	now            func() time.Time

	// Serializes first-time profile creation per user so concurrent checks
	// in this process cannot insert twice. The store's UNIQUE constraint on
	// user_id is the cross-process backstop. Entries are never removed;
	// they are one mutex per active user.
	mu        sync.Mutex
	userLocks map[string]*sync.Mutex
}

// New builds a gate. reservations may be nil, in which case candidate
// numbers are checked against the profile store alone. currentVersion is
// compared by exact string equality against stored terms versions.
func New(profiles store.ProfileStore, reservations store.NumberReservations, currentVersion string, reservationTTL time.Duration) *Gate {
	g := &Gate{
		profiles:       profiles,
		reservations:   reservations,
		currentVersion: currentVersion,
		reservationTTL: reservationTTL,
		now:            time.Now,
		userLocks:      make(map[string]*sync.Mutex),
	}
	g.allocator = membernum.NewAllocator(g.numberAvailable)
	return g
}

// Check reports whether the user has accepted the current terms version,
// bootstrapping a profile on first contact and reconciling the stored
// member number along the way. Anonymous users are not accepted and cause
// no store access.
func (g *Gate) Check(ctx context.Context, user *models.User) CheckResult {
	if user == nil || user.UserID == "" {
		return CheckResult{}
	}

	profile, err := g.profiles.GetByUserID(ctx, user.UserID)
	if err != nil {
		log.Printf("terms check: load profile failed for user %s: %v", user.UserID, err)
		return CheckResult{}
	}

	if profile == nil {
		profile, err = g.createProfile(ctx, user, false, time.Time{})
		if err != nil {
			log.Printf("terms check: bootstrap profile failed for user %s: %v", user.UserID, err)
			return CheckResult{}
		}
	} else {
		profile = g.ensureMemberNumber(ctx, profile)
	}

	return CheckResult{TermsAccepted: g.accepted(profile), Profile: profile}
}

// Accept records acceptance of the current terms version, creating the
// profile first if the user has never been seen. It returns true only when
// the store confirms the write; every failure collapses to false so the UI
// can show a generic retry prompt. Calling Accept again after a failure
// retries.
func (g *Gate) Accept(ctx context.Context, user *models.User) bool {
	if user == nil || user.UserID == "" {
		return false
	}

	profile, err := g.profiles.GetByUserID(ctx, user.UserID)
	if err != nil {
		log.Printf("terms accept: load profile failed for user %s: %v", user.UserID, err)
		return false
	}

	acceptedAt := g.now().UTC()

	if profile == nil {
		created, err := g.createProfile(ctx, user, true, acceptedAt)
		if err != nil {
			log.Printf("terms accept: create profile failed for user %s: %v", user.UserID, err)
			return false
		}
		if g.accepted(created) {
			return true
		}
		// A concurrent check won the creation race with an unaccepted
		// profile; fall through and update it.
		profile = created
	}

	updated, err := g.profiles.UpdateTerms(ctx, profile.ID, true, g.currentVersion, acceptedAt)
	if err != nil || updated == nil {
		log.Printf("terms accept: update failed for user %s: %v", user.UserID, err)
		return false
	}
	return true
}

// CurrentVersion returns the terms version the gate compares against.
func (g *Gate) CurrentVersion() string {
	return g.currentVersion
}

func (g *Gate) accepted(profile *models.Profile) bool {
	return profile != nil && profile.TermsAccepted && profile.TermsVersion == g.currentVersion
}

// createProfile inserts a profile with a freshly allocated member number,
// serialized per user. If another goroutine created the profile first, the
// existing record is returned instead.
func (g *Gate) createProfile(ctx context.Context, user *models.User, accepted bool, acceptedAt time.Time) (*models.Profile, error) {
	lock := g.userLock(user.UserID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := g.profiles.GetByUserID(ctx, user.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if existing != nil {
		return existing, nil
	}

	number, err := g.allocator.Allocate(ctx)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		UserID:           user.UserID,
		Email:            user.Email,
		Username:         user.Username,
		CoopMemberNumber: number,
		TermsAccepted:    accepted,
	}
	if accepted {
		profile.TermsVersion = g.currentVersion
		profile.TermsAcceptedAt = &acceptedAt
	}

	created, err := g.profiles.Create(ctx, profile)
	if err != nil {
		g.releaseReservation(ctx, number)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return created, nil
}

// ensureMemberNumber reconciles a loaded profile's member number: persists
// the normalized form when the stored value is canonical but dirty, or
// allocates a fresh number when no canonical value can be derived. Both
// persistence paths are best-effort; on failure the profile is returned
// unchanged and stays usable.
func (g *Gate) ensureMemberNumber(ctx context.Context, profile *models.Profile) *models.Profile {
	normalized := membernum.Normalize(profile.CoopMemberNumber)

	if len(normalized) == membernum.Length {
		if normalized == profile.CoopMemberNumber {
			return profile
		}
		updated, err := g.profiles.UpdateMemberNumber(ctx, profile.ID, normalized)
		if err != nil {
			log.Printf("member number: persist normalization failed for profile %s, keeping stored value: %v", profile.ID, err)
			return profile
		}
		return updated
	}

	number, err := g.allocator.Allocate(ctx)
	if err != nil {
		log.Printf("member number: allocation failed for profile %s: %v", profile.ID, err)
		return profile
	}
	updated, err := g.profiles.UpdateMemberNumber(ctx, profile.ID, number)
	if err != nil {
		log.Printf("member number: assignment failed for profile %s: %v", profile.ID, err)
		g.releaseReservation(ctx, number)
		return profile
	}
	return updated
}

// numberAvailable is the allocator's availability predicate: claim the
// candidate in the reservation cache, then confirm no profile owns it. The
// profile store is authoritative; a reservation cache outage only disables
// the cross-instance guard.
func (g *Gate) numberAvailable(ctx context.Context, candidate string) (bool, error) {
	if g.reservations != nil {
		reserved, err := g.reservations.Reserve(ctx, candidate, g.reservationTTL)
		if err != nil {
			log.Printf("member number: reservation cache unavailable, falling back to store check: %v", err)
		} else if !reserved {
			return false, nil
		}
	}

	taken, err := g.profiles.MemberNumberTaken(ctx, candidate)
	if err != nil {
		g.releaseReservation(ctx, candidate)
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if taken {
		g.releaseReservation(ctx, candidate)
		return false, nil
	}
	return true, nil
}

func (g *Gate) releaseReservation(ctx context.Context, number string) {
	if g.reservations == nil {
		return
	}
	if err := g.reservations.Release(ctx, number); err != nil {
		log.Printf("member number: release reservation for %s failed: %v", number, err)
	}
}

func (g *Gate) userLock(userID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()
	lock, ok := g.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		g.userLocks[userID] = lock
	}
	return lock
}
