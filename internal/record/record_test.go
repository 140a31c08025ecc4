package record

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/lane-tracker/internal/evaluation"
	"github.com/ironsheep/lane-tracker/internal/lane"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := openTestStore(t)

	runID, err := s.StartRun("highway", lane.DefaultConfig(), 42)
	require.NoError(t, err)
	assert.Len(t, runID, 36)

	results := []lane.Result{
		{
			Frame:          0,
			Left:           lane.EstimateOf(lane.Seg(300, 720, 500, 540)),
			Right:          lane.EstimateOf(lane.Seg(980, 720, 780, 540)),
			LeftCandidates: 2, RightCandidates: 1,
		},
		{Frame: 1, Left: lane.EstimateOf(lane.Seg(301.5, 720, 501, 540)), Right: lane.NoEstimate},
		{Frame: 2, Smoothed: true},
	}
	for _, r := range results {
		require.NoError(t, s.RecordResult(runID, r))
	}

	got, err := s.Results(runID)
	require.NoError(t, err)
	assert.Equal(t, results, got)
}

func TestStore_DuplicateFrame(t *testing.T) {
	s := openTestStore(t)
	runID, err := s.StartRun("dup", lane.DefaultConfig(), 0)
	require.NoError(t, err)

	require.NoError(t, s.RecordResult(runID, lane.Result{Frame: 5}))
	assert.Error(t, s.RecordResult(runID, lane.Result{Frame: 5}))
}

func TestStore_UnknownRunRejected(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.RecordResult("not-a-run", lane.Result{Frame: 0}))
	assert.ErrorIs(t, s.FinishRun("not-a-run", nil), ErrRunNotFound)

	_, err := s.Run("not-a-run")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_FinishRun(t *testing.T) {
	s := openTestStore(t)
	cfg := lane.DefaultConfig()
	cfg.Strategy = lane.StrategyMedian

	runID, err := s.StartRun("scored", cfg, 7)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordResult(runID, lane.Result{Frame: i}))
	}

	tally := &evaluation.Run{TruePositives: 4, FalsePositives: 1, FalseNegatives: 2}
	require.NoError(t, s.FinishRun(runID, tally))

	info, err := s.Run(runID)
	require.NoError(t, err)
	assert.Equal(t, "scored", info.Name)
	assert.Equal(t, "median", info.Strategy)
	assert.Equal(t, uint64(7), info.Seed)
	assert.Equal(t, 3, info.Frames)
	assert.NotZero(t, info.FinishedAt)
	require.NotNil(t, info.Tally)
	assert.Equal(t, 4, info.Tally.TruePositives)
	assert.Equal(t, 3, info.Tally.Frames)

	var stored lane.Config
	require.NoError(t, json.Unmarshal(info.Config, &stored))
	assert.Equal(t, cfg, stored)
}

func TestStore_Runs(t *testing.T) {
	s := openTestStore(t)
	first, err := s.StartRun("a", lane.DefaultConfig(), 1)
	require.NoError(t, err)
	second, err := s.StartRun("b", lane.DefaultConfig(), 2)
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(first, nil))

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	ids := map[string]*RunInfo{runs[0].RunID: runs[0], runs[1].RunID: runs[1]}
	require.Contains(t, ids, first)
	require.Contains(t, ids, second)
	assert.Nil(t, ids[first].Tally)
	assert.Zero(t, ids[second].FinishedAt)
}

func TestOpen_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	runID, err := s.StartRun("mem", lane.DefaultConfig(), 0)
	require.NoError(t, err)
	require.NoError(t, s.RecordResult(runID, lane.Result{Frame: 0}))

	got, err := s.Results(runID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
