package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"member-service/db"
	"member-service/models"
)

// ProfileStore is the persistence boundary for coop member profiles. A nil
// profile with a nil error means "not found".
type ProfileStore interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	MemberNumberTaken(ctx context.Context, number string) (bool, error)
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	UpdateMemberNumber(ctx context.Context, id, number string) (*models.Profile, error)
	UpdateTerms(ctx context.Context, id string, accepted bool, version string, acceptedAt time.Time) (*models.Profile, error)
}

const profileColumns = `id, user_id, email, username, coop_member_number, terms_accepted, terms_version, terms_accepted_at, created_at, updated_at`

// PostgresProfileStore stores profiles in the shared Postgres database.
// The profiles table carries UNIQUE constraints on user_id and
// coop_member_number; duplicate inserts surface as errors here.
type PostgresProfileStore struct{}

func NewPostgresProfileStore() *PostgresProfileStore {
	return &PostgresProfileStore{}
}

func (s *PostgresProfileStore) GetByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1 LIMIT 1`
	profile, err := scanProfile(db.DB.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query profile by user: %w", err)
	}
	return profile, nil
}

func (s *PostgresProfileStore) MemberNumberTaken(ctx context.Context, number string) (bool, error) {
	var taken bool
	err := db.DB.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM profiles WHERE coop_member_number = $1)`, number).Scan(&taken)
	if err != nil {
		return false, fmt.Errorf("query member number: %w", err)
	}
	return taken, nil
}

func (s *PostgresProfileStore) Create(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	query := `
		INSERT INTO profiles (user_id, email, username, coop_member_number, terms_accepted, terms_version, terms_accepted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + profileColumns
	created, err := scanProfile(db.DB.QueryRowContext(ctx, query,
		profile.UserID,
		nullString(profile.Email),
		nullString(profile.Username),
		nullString(profile.CoopMemberNumber),
		profile.TermsAccepted,
		nullString(profile.TermsVersion),
		nullTime(profile.TermsAcceptedAt),
	))
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}
	return created, nil
}

func (s *PostgresProfileStore) UpdateMemberNumber(ctx context.Context, id, number string) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET coop_member_number = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + profileColumns
	updated, err := scanProfile(db.DB.QueryRowContext(ctx, query, number, id))
	if err != nil {
		return nil, fmt.Errorf("update member number: %w", err)
	}
	return updated, nil
}

func (s *PostgresProfileStore) UpdateTerms(ctx context.Context, id string, accepted bool, version string, acceptedAt time.Time) (*models.Profile, error) {
	query := `
		UPDATE profiles
		SET terms_accepted = $1, terms_version = $2, terms_accepted_at = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING ` + profileColumns
	updated, err := scanProfile(db.DB.QueryRowContext(ctx, query, accepted, version, acceptedAt, id))
	if err != nil {
		return nil, fmt.Errorf("update terms: %w", err)
	}
	return updated, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProfile(row rowScanner) (*models.Profile, error) {
	var (
		profile      models.Profile
		email        sql.NullString
		username     sql.NullString
		memberNumber sql.NullString
		termsVersion sql.NullString
		acceptedAt   sql.NullTime
	)
	err := row.Scan(
		&profile.ID,
		&profile.UserID,
		&email,
		&username,
		&memberNumber,
		&profile.TermsAccepted,
		&termsVersion,
		&acceptedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	profile.Email = email.String
	profile.Username = username.String
	profile.CoopMemberNumber = memberNumber.String
	profile.TermsVersion = termsVersion.String
	if acceptedAt.Valid {
		profile.TermsAcceptedAt = &acceptedAt.Time
	}
	return &profile, nil
}

func nullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
