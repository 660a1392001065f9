package content

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/tutorloop/internal/store"
)

var now = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestVersionedSourceFallsBackToSeed(t *testing.T) {
	src := NewVersionedSource(testLibrary(t), store.NewMemory())
	c, err := src.GetCurriculum(context.Background(), 6, "math")
	require.NoError(t, err)
	assert.Equal(t, "seed-g6-math", c.ID)
	assert.Equal(t, InitialVersion, c.Version)
}

func TestVersionedSourcePublishAndRollback(t *testing.T) {
	ctx := context.Background()
	src := NewVersionedSource(testLibrary(t), store.NewMemory())
	src.now = func() time.Time { return now }

	seed, err := src.GetCurriculum(ctx, 6, "math")
	require.NoError(t, err)

	next := *seed
	next.Topics = append([]Topic(nil), seed.Topics[0])
	next.Version = "1.1"
	next.ID = VersionID(6, "math", "1.1")
	next.PreviousID = seed.ID
	next.PreviousVersion = seed.Version
	next.OptimizationReason = "dropped integers-addition"
	next.LastUpdated = now
	require.NoError(t, src.Publish(ctx, &next))

	got, err := src.GetCurriculum(ctx, 6, "math")
	require.NoError(t, err)
	assert.Equal(t, "1.1", got.Version)
	assert.Len(t, got.Topics, 1)
	assert.Equal(t, "dropped integers-addition", got.OptimizationReason)

	// Publishing a version that is not newer is rejected.
	stale := next
	stale.ID = "other"
	assert.Error(t, src.Publish(ctx, &stale))

	rolled, err := src.Rollback(ctx, 6, "math")
	require.NoError(t, err)
	assert.Equal(t, "1.2", rolled.Version)
	assert.Len(t, rolled.Topics, 2)
	assert.Equal(t, next.ID, rolled.PreviousID)

	history, err := src.History(ctx, 6, "math")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"1.2", "1.1", "1.0"}, []string{history[0].Version, history[1].Version, history[2].Version})
}

func TestRollbackWithoutPrevious(t *testing.T) {
	src := NewVersionedSource(testLibrary(t), store.NewMemory())
	_, err := src.Rollback(context.Background(), 6, "math")
	assert.ErrorIs(t, err, ErrNoPreviousVersion)
}

func TestCodecRoundTrip(t *testing.T) {
	c := &Curriculum{
		ID: "g6-math-v1.1", GradeLevel: 6, Subject: "math", Version: "1.1",
		Topics: []Topic{{ID: "a", Title: "A"}}, LastUpdated: now, OptimizationReason: "r", PreviousID: "seed",
	}
	rec, err := EncodeCurriculum(c)
	require.NoError(t, err)
	assert.Equal(t, "1.1", rec.Version)
	assert.Equal(t, "seed", rec.PreviousID)

	back, err := DecodeCurriculum(&rec)
	require.NoError(t, err)
	assert.Equal(t, c.Topics, back.Topics)
	assert.True(t, back.LastUpdated.Equal(now))
}
