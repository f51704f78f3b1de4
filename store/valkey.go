package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	appconfig "member-service/config"

	glide "github.com/valkey-io/valkey-glide/go/v2"
	glideconfig "github.com/valkey-io/valkey-glide/go/v2/config"
	"github.com/valkey-io/valkey-glide/go/v2/constants"
	glidemodels "github.com/valkey-io/valkey-glide/go/v2/models"
	"github.com/valkey-io/valkey-glide/go/v2/options"
)

// NumberReservations holds short-lived claims on candidate member numbers so
// two service instances cannot hand out the same number between generating a
// candidate and persisting it.
type NumberReservations interface {
	Reserve(ctx context.Context, number string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, number string) error
	Close() error
}

type valkeyClient interface {
	SetWithOptions(ctx context.Context, key string, value string, opts options.SetOptions) (glidemodels.Result[string], error)
	Get(ctx context.Context, key string) (glidemodels.Result[string], error)
	Del(ctx context.Context, keys []string) (int64, error)
	Close()
}

var newGlideClient = func(cfg appconfig.ValkeyConfig) (valkeyClient, error) {
	clientConfig := glideconfig.NewClientConfiguration().
		WithAddress(&glideconfig.NodeAddress{Host: hostFromAddr(cfg.Addr), Port: portFromAddr(cfg.Addr)}).
		WithDatabaseId(cfg.DB)
	if cfg.Password != "" {
		clientConfig = clientConfig.WithCredentials(glideconfig.NewServerCredentialsWithDefaultUsername(cfg.Password))
	}
	return glide.NewClient(clientConfig)
}

type ValkeyReservationStore struct {
	client valkeyClient
	prefix string
}

func NewValkeyReservationStore(cfg appconfig.ValkeyConfig) (*ValkeyReservationStore, error) {
	client, err := newGlideClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("valkey connect failed: %w", err)
	}
	return &ValkeyReservationStore{client: client, prefix: cfg.Prefix}, nil
}

// Reserve claims the number with SET NX and a TTL. It reports false when
// another instance already holds the claim.
func (v *ValkeyReservationStore) Reserve(ctx context.Context, number string, ttl time.Duration) (bool, error) {
	seconds := uint64(ttl.Seconds())
	if seconds == 0 {
		seconds = 1
	}
	opts := *options.NewSetOptions().
		SetConditionalSet(constants.OnlyIfDoesNotExist).
		SetExpiry(&options.Expiry{Type: constants.Seconds, Duration: seconds})

	result, err := v.client.SetWithOptions(ctx, v.key(number), "reserved", opts)
	if err != nil {
		return false, err
	}
	return !result.IsNil(), nil
}

func (v *ValkeyReservationStore) Release(ctx context.Context, number string) error {
	_, err := v.client.Del(ctx, []string{v.key(number)})
	return err
}

func (v *ValkeyReservationStore) Close() error {
	v.client.Close()
	return nil
}

func (v *ValkeyReservationStore) key(number string) string {
	return fmt.Sprintf("%s:%s", v.prefix, number)
}

func hostFromAddr(addr string) string {
	host, _, found := strings.Cut(addr, ":")
	if !found {
		return addr
	}
	return host
}

func portFromAddr(addr string) int {
	_, portStr, found := strings.Cut(addr, ":")
	if !found {
		return 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 6379
	}
	return port
}
