package tenantstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dotfriends/asca/internal/core"
)

func newStore() *MemoryStore {
	return NewMemoryStore(zap.NewNop())
}

func TestDefaults(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	mode, err := s.GetMode(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, core.ModeTimeout, mode)

	days, err := s.GetTimeoutDays(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, core.DefaultTimeoutDays, days)

	whitelist, err := s.GetWhitelist(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, whitelist)

	channel, err := s.GetLoggingChannel(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, channel)

	count, err := s.GetPunishmentCount(ctx, "unknown")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSetMode(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	require.NoError(t, s.SetMode(ctx, "t1", core.ModeBan))
	mode, err := s.GetMode(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, core.ModeBan, mode)

	// Other tenants are unaffected.
	mode, err = s.GetMode(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, core.ModeTimeout, mode)
}

func TestSetTimeoutDays_Bounds(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	tests := []struct {
		days  int
		valid bool
	}{
		{0, false},
		{1, true},
		{7, true},
		{28, true},
		{29, false},
		{-3, false},
	}

	for _, tt := range tests {
		err := s.SetTimeoutDays(ctx, "t1", tt.days)
		if tt.valid {
			assert.NoError(t, err, "days %d", tt.days)
		} else {
			assert.ErrorIs(t, err, core.ErrInvalidTimeoutDays, "days %d", tt.days)
		}
	}

	// The last valid value sticks; rejected values never reach storage.
	days, err := s.GetTimeoutDays(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 28, days)
}

func TestWhitelistRoundTrip(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	entries := []string{"discord.gg/myserver", "example.com"}
	require.NoError(t, s.SetWhitelist(ctx, "t1", entries))

	got, err := s.GetWhitelist(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	// Callers cannot mutate stored state through the returned slice.
	got[0] = "mutated"
	again, err := s.GetWhitelist(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, entries, again)
}

func TestLoggingChannelLifecycle(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	require.NoError(t, s.SetLoggingChannel(ctx, "t1", "c9"))
	channel, err := s.GetLoggingChannel(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "c9", channel)

	require.NoError(t, s.ClearLoggingChannel(ctx, "t1"))
	channel, err = s.GetLoggingChannel(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, channel)

	// Clearing an unknown tenant is a no-op.
	require.NoError(t, s.ClearLoggingChannel(ctx, "t2"))
}

func TestPunishmentCounter(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, s.IncrementPunishmentCount(ctx, "t1"))
	}
	require.NoError(t, s.IncrementPunishmentCount(ctx, "t2"))

	count, err := s.GetPunishmentCount(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), count)

	count, err = s.GetPunishmentCount(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestPruneTenantsNotIn(t *testing.T) {
	s := newStore()
	ctx := context.Background()

	require.NoError(t, s.SetMode(ctx, "t1", core.ModeBan))
	require.NoError(t, s.SetMode(ctx, "t2", core.ModeBan))
	require.NoError(t, s.SetMode(ctx, "t3", core.ModeBan))

	require.NoError(t, s.PruneTenantsNotIn(ctx, []string{"t1", "t3"}))

	mode, err := s.GetMode(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, core.ModeTimeout, mode, "pruned tenants fall back to defaults")

	mode, err = s.GetMode(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, core.ModeBan, mode)

	// An empty active set removes everything.
	require.NoError(t, s.PruneTenantsNotIn(ctx, nil))
	mode, err = s.GetMode(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, core.ModeTimeout, mode)
}
