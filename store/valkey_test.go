package store

import (
	"context"
	"errors"
	"testing"
	"time"

	appconfig "member-service/config"

	glidemodels "github.com/valkey-io/valkey-glide/go/v2/models"
	"github.com/valkey-io/valkey-glide/go/v2/options"

	"github.com/stretchr/testify/assert"
)

type mockClient struct {
	setWithOptionsFn func(ctx context.Context, key, value string, opts options.SetOptions) (glidemodels.Result[string], error)
	delFn            func(ctx context.Context, keys []string) (int64, error)
	closed           bool
}

func (m *mockClient) SetWithOptions(ctx context.Context, key, value string, opts options.SetOptions) (glidemodels.Result[string], error) {
	if m.setWithOptionsFn != nil {
		return m.setWithOptionsFn(ctx, key, value, opts)
	}
	return glidemodels.CreateStringResult("OK"), nil
}

func (m *mockClient) Get(ctx context.Context, key string) (glidemodels.Result[string], error) {
	return glidemodels.CreateNilStringResult(), nil
}

func (m *mockClient) Del(ctx context.Context, keys []string) (int64, error) {
	if m.delFn != nil {
		return m.delFn(ctx, keys)
	}
	return 1, nil
}

func (m *mockClient) Close() {
	m.closed = true
}

func newTestStore(client *mockClient) *ValkeyReservationStore {
	return &ValkeyReservationStore{client: client, prefix: "test"}
}

func TestReserveAcquired(t *testing.T) {
	var seenKey string
	mock := &mockClient{
		setWithOptionsFn: func(ctx context.Context, key, value string, opts options.SetOptions) (glidemodels.Result[string], error) {
			seenKey = key
			return glidemodels.CreateStringResult("OK"), nil
		},
	}
	store := newTestStore(mock)

	reserved, err := store.Reserve(context.Background(), "ABCD1234", time.Minute)
	assert.NoError(t, err)
	assert.True(t, reserved)
	assert.Equal(t, "test:ABCD1234", seenKey)
}

func TestReserveAlreadyHeld(t *testing.T) {
	mock := &mockClient{
		setWithOptionsFn: func(ctx context.Context, key, value string, opts options.SetOptions) (glidemodels.Result[string], error) {
			return glidemodels.CreateNilStringResult(), nil
		},
	}
	store := newTestStore(mock)

	reserved, err := store.Reserve(context.Background(), "ABCD1234", time.Minute)
	assert.NoError(t, err)
	assert.False(t, reserved)
}

func TestReserveError(t *testing.T) {
	mock := &mockClient{
		setWithOptionsFn: func(ctx context.Context, key, value string, opts options.SetOptions) (glidemodels.Result[string], error) {
			return glidemodels.CreateNilStringResult(), errors.New("set error")
		},
	}
	store := newTestStore(mock)

	_, err := store.Reserve(context.Background(), "ABCD1234", time.Minute)
	assert.Error(t, err)
}

func TestRelease(t *testing.T) {
	var seenKeys []string
	mock := &mockClient{
		delFn: func(ctx context.Context, keys []string) (int64, error) {
			seenKeys = keys
			return 1, nil
		},
	}
	store := newTestStore(mock)

	assert.NoError(t, store.Release(context.Background(), "ABCD1234"))
	assert.Equal(t, []string{"test:ABCD1234"}, seenKeys)
}

func TestReleaseError(t *testing.T) {
	mock := &mockClient{
		delFn: func(ctx context.Context, keys []string) (int64, error) {
			return 0, errors.New("del error")
		},
	}
	store := newTestStore(mock)
	assert.Error(t, store.Release(context.Background(), "ABCD1234"))
}

func TestNewValkeyReservationStoreError(t *testing.T) {
	original := newGlideClient
	newGlideClient = func(cfg appconfig.ValkeyConfig) (valkeyClient, error) {
		return nil, errors.New("connect failed")
	}
	defer func() { newGlideClient = original }()

	_, err := NewValkeyReservationStore(appconfig.ValkeyConfig{Addr: "localhost:6379", Prefix: "test"})
	assert.Error(t, err)
}

func TestNewValkeyReservationStoreSuccess(t *testing.T) {
	mock := &mockClient{}
	original := newGlideClient
	newGlideClient = func(cfg appconfig.ValkeyConfig) (valkeyClient, error) {
		return mock, nil
	}
	defer func() { newGlideClient = original }()

	store, err := NewValkeyReservationStore(appconfig.ValkeyConfig{Addr: "localhost:6379", Prefix: "test"})
	assert.NoError(t, err)
	assert.NotNil(t, store)
}

func TestClose(t *testing.T) {
	mock := &mockClient{}
	store := newTestStore(mock)
	assert.NoError(t, store.Close())
	assert.True(t, mock.closed)
}

func TestHostFromAddr(t *testing.T) {
	assert.Equal(t, "localhost", hostFromAddr("localhost:6379"))
	assert.Equal(t, "127.0.0.1", hostFromAddr("127.0.0.1:6379"))
	assert.Equal(t, "myhost", hostFromAddr("myhost"))
}

func TestPortFromAddr(t *testing.T) {
	assert.Equal(t, 6379, portFromAddr("localhost:6379"))
	assert.Equal(t, 6380, portFromAddr("localhost:6380"))
	assert.Equal(t, 6379, portFromAddr("myhost"))
}
