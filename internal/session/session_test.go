package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		in      string
		want    Page
		wantErr bool
	}{
		{"inicio", PageHome, false},
		{"CONSULTA", PageBrowse, false},
		{" admin ", PageAdmin, false},
		{"otra", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePage(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownPage)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestState_WithProvider(t *testing.T) {
	st := Default().WithProvider("ACME")
	assert.Equal(t, "ACME", st.Provider)
	assert.Equal(t, PageHome, st.Page)

	assert.Empty(t, st.WithProvider(AllProviders).Provider)
	assert.Empty(t, st.WithProvider("  ").Provider)
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore(time.Hour)
	ctx := context.Background()

	st, err := s.Load(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, Default(), st)

	want := State{Page: PageBrowse, Provider: "Bosch"}
	require.NoError(t, s.Save(ctx, "abc", want))

	got, err := s.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMemoryStore_Expiry(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "a", State{Page: PageAdmin}))
	require.NoError(t, s.Save(ctx, "b", State{Page: PageBrowse}))

	now = now.Add(30 * time.Second)
	got, err := s.Load(ctx, "a") // touches "a"
	require.NoError(t, err)
	assert.Equal(t, PageAdmin, got.Page)

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, s.Sweep(), "only b is idle past the TTL")

	got, err = s.Load(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, Default(), got)

	now = now.Add(2 * time.Minute)
	got, err = s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, Default(), got)
}

// TestRedisStore_RoundTrip runs against a live server when TEST_REDIS_URL is set.
func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_URL")
	if addr == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	opts, err := redis.ParseURL(addr)
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	s := NewRedisStore(client, time.Minute)
	id := "test-" + t.Name()
	defer client.Del(ctx, s.prefix+id)

	st, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, Default(), st)

	want := State{Page: PageBrowse, Provider: "ACME"}
	require.NoError(t, s.Save(ctx, id, want))
	got, err := s.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	ttl, err := client.TTL(ctx, s.prefix+id).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
