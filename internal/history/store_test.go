package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
)

func report(id string, start time.Time, outcome build.Outcome) *build.Report {
	return &build.Report{
		SchemaVersion: 1,
		BuildID:       id,
		Start:         start,
		End:           start.Add(1500 * time.Millisecond),
		ContentPages:  2,
		TemplatePages: 3,
		FilesCopied:   4,
		Outcome:       outcome,
		Revision:      "abc123",
		StageResults:  map[build.StageName]build.StageResult{build.StageCopyAssets: build.StageResultSuccess},
	}
}

func TestStoreRecordAndRecent(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Record(ctx, report("b1", base, build.OutcomeSuccess)))
	failed := report("b2", base.Add(time.Hour), build.OutcomeFailed)
	failed.FailedStage = build.StageBeforeBuild
	require.NoError(t, store.Record(ctx, failed))
	require.NoError(t, store.Record(ctx, report("b3", base.Add(-time.Hour), build.OutcomeSuccess)))

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "b2", entries[0].BuildID)
	assert.Equal(t, build.OutcomeFailed, entries[0].Outcome)
	assert.Equal(t, build.StageBeforeBuild, entries[0].FailedStage)
	assert.Equal(t, 5, entries[0].Pages)
	assert.Equal(t, 4, entries[0].FilesCopied)
	assert.Equal(t, 1500*time.Millisecond, entries[0].Duration)
	assert.True(t, entries[0].Start.Equal(base.Add(time.Hour)))
	assert.Equal(t, "b1", entries[1].BuildID)
	assert.Empty(t, entries[1].FailedStage)
}

func TestStoreReport(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	require.NoError(t, store.Record(ctx, report("b1", time.Now(), build.OutcomeSuccess)))

	got, err := store.Report(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, "abc123", got.Revision)
	assert.Equal(t, build.StageResultSuccess, got.StageResults[build.StageCopyAssets])

	_, err = store.Report(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreDuplicateBuildID(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	r := report("b1", time.Now(), build.OutcomeSuccess)
	require.NoError(t, store.Record(t.Context(), r))
	require.Error(t, store.Record(t.Context(), r))
}
