package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotsense/spotscore/internal/types"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := NewDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func metricAt(spotID string, at time.Time) types.RawCheckinMetric {
	return types.RawCheckinMetric{SpotID: spotID, Timestamp: at}
}

func TestInsertAndQueryCheckins(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.EnsureSpot("cafe-1", "Cafe One"))

	now := time.Now().UTC().Truncate(time.Second)

	m := metricAt("cafe-1", now)
	m.WifiSpeed = intPtr(4)
	m.NoiseLevel = intPtr(2)
	m.LaptopFriendly = boolPtr(true)
	m.Tags = []string{"quiet", "outlets"}

	ck, err := repo.InsertCheckin(m)
	require.NoError(t, err)
	assert.NotEmpty(t, ck.ID)

	got, err := repo.CheckinsSince("cafe-1", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "cafe-1", got[0].SpotID)
	require.NotNil(t, got[0].WifiSpeed)
	assert.Equal(t, 4, *got[0].WifiSpeed)
	require.NotNil(t, got[0].LaptopFriendly)
	assert.True(t, *got[0].LaptopFriendly)
	assert.Equal(t, []string{"quiet", "outlets"}, got[0].Tags)
	assert.Nil(t, got[0].Busyness, "unset fields stay nil, never zero-filled")
}

func TestCheckinsSinceWindow(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.EnsureSpot("cafe-2", "Cafe Two"))

	now := time.Now().UTC()
	for _, age := range []time.Duration{time.Hour, 48 * time.Hour, 400 * time.Hour} {
		m := metricAt("cafe-2", now.Add(-age))
		m.Busyness = intPtr(3)
		_, err := repo.InsertCheckin(m)
		require.NoError(t, err)
	}

	got, err := repo.CheckinsSince("cafe-2", now.Add(-72*time.Hour))
	require.NoError(t, err)
	assert.Len(t, got, 2, "check-ins before the window start are excluded")
}

func TestSpotExists(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.EnsureSpot("cafe-3", "Cafe Three"))

	exists, err := repo.SpotExists("cafe-3")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SpotExists("nowhere")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestHourlyBusyness(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.EnsureSpot("cafe-4", "Cafe Four"))

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	// Two readings at 09:00 (3 and 5) and one at 14:00 (1)
	for _, c := range []struct {
		at       time.Time
		busyness int
	}{
		{base, 3},
		{base.Add(24 * time.Hour), 5},
		{base.Add(5 * time.Hour), 1},
	} {
		m := metricAt("cafe-4", c.at)
		m.Busyness = intPtr(c.busyness)
		_, err := repo.InsertCheckin(m)
		require.NoError(t, err)
	}

	profile, covered, err := repo.HourlyBusyness("cafe-4")
	require.NoError(t, err)
	assert.Equal(t, 2, covered)
	assert.InDelta(t, 75, profile[9], 0.01, "busyness 3 and 5 average to 75 on the 0-100 scale")
	assert.InDelta(t, 0, profile[14], 0.01, "busyness 1 maps to 0")
	assert.Zero(t, profile[3], "hours without data stay zero")
}

func TestSnapshotUpsertAndTopSpots(t *testing.T) {
	repo := newTestRepo(t)

	now := time.Now().UTC().Truncate(time.Second)
	for _, s := range []ScoreSnapshot{
		{SpotID: "a", Score: 60, Confidence: 0.5, Breakdown: "{}", UpdatedAt: now},
		{SpotID: "b", Score: 90, Confidence: 0.8, Breakdown: "{}", UpdatedAt: now},
	} {
		require.NoError(t, repo.SaveSnapshot(s))
	}

	// Re-saving replaces, not duplicates
	require.NoError(t, repo.SaveSnapshot(ScoreSnapshot{
		SpotID: "a", Score: 95, Confidence: 0.6, Breakdown: "{}", UpdatedAt: now.Add(time.Minute),
	}))

	top, err := repo.TopSpots(10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "a", top[0].SpotID)
	assert.Equal(t, 95, top[0].Score)
	assert.Equal(t, "b", top[1].SpotID)

	snap, err := repo.GetSnapshot("a")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 95, snap.Score)

	snap, err = repo.GetSnapshot("missing")
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestPruneCheckins(t *testing.T) {
	repo := newTestRepo(t)
	require.NoError(t, repo.EnsureSpot("cafe-5", "Cafe Five"))

	now := time.Now().UTC()
	for _, age := range []time.Duration{time.Hour, 24 * 400 * time.Hour} {
		m := metricAt("cafe-5", now.Add(-age))
		m.WifiSpeed = intPtr(3)
		_, err := repo.InsertCheckin(m)
		require.NoError(t, err)
	}

	deleted, err := repo.PruneCheckins(now.AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	remaining, err := repo.CheckinsSince("cafe-5", time.Time{})
	require.NoError(t, err)
	assert.Len(t, remaining, 1)
}
