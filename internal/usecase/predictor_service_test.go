package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/matchcentre/internal/domain/kv"
	"github.com/riskibarqy/matchcentre/internal/domain/match"
	"github.com/riskibarqy/matchcentre/internal/domain/predictor"
	"github.com/riskibarqy/matchcentre/internal/infrastructure/repository/memory"
	kvmock "github.com/riskibarqy/matchcentre/internal/mocks/domain/kv"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type constRandom float64

func (r constRandom) Float64() float64 { return float64(r) }

type staticSpeed string

func (s staticSpeed) PredictorSpeed(context.Context) (string, error) {
	return string(s), nil
}

func predictorFixtures() []match.Record {
	return []match.Record{
		{
			ID:          "m1",
			Date:        "2026-10-17",
			KickOffTime: "20:00",
			HomeTeam:    match.Team{Names: match.TeamNames{DisplayName: "Home FC"}, Rating: 80, Score: 2},
			AwayTeam:    match.Team{Names: match.TeamNames{DisplayName: "Away FC"}, Rating: 40, Score: 1},
			TimeLabel:   "HT",
			Competition: match.Competition{Name: "Cup", SubHeading: "Final"},
		},
	}
}

func newPredictorServiceForTest(t *testing.T, speed PredictorSpeedReader, rnd predictor.RandomSource) (*PredictorService, *memory.KVStore) {
	t.Helper()

	repo := memory.NewMatchRepository()
	repo.Set(match.ViewFixtures, predictorFixtures())
	store := memory.NewKVStore()
	return NewPredictorService(store, repo, speed, predictor.DefaultSettings(), rnd, logging.NewNop()), store
}

func TestPredictorService_ControlMatchKicksOff(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newPredictorServiceForTest(t, nil, constRandom(0.99))

	state, started, err := svc.ControlMatch(ctx, "m1")
	require.NoError(t, err)
	require.True(t, started)

	assert.Equal(t, 0, state.HomeTeam.Score)
	assert.Equal(t, 0, state.AwayTeam.Score)
	assert.Equal(t, 1, state.Time)
	assert.Equal(t, "1'", state.TimeLabel)
	assert.Equal(t, match.PredictorInPlay, state.PredictorMatchStatus)
	assert.Empty(t, state.StatusMessages)

	var ids []string
	ok, err := store.Get(ctx, kv.KeyPredictorMatchIDs, &ids)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"m1"}, ids)

	var persisted match.Record
	ok, err = store.Get(ctx, kv.PredictorMatchKey("m1"), &persisted)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, match.PredictorInPlay, persisted.PredictorMatchStatus)
}

func TestPredictorService_ControlMatchReselectsRegistered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newPredictorServiceForTest(t, nil, constRandom(0.99))

	_, _, err := svc.ControlMatch(ctx, "m1")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		_, err := svc.Tick(ctx, "m1")
		require.NoError(t, err)
	}

	state, started, err := svc.ControlMatch(ctx, "m1")
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, 6, state.Time)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPredictorService_ControlMatchMissingSeedIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newPredictorServiceForTest(t, nil, constRandom(0.99))

	state, started, err := svc.ControlMatch(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, started)
	assert.Empty(t, state.ID)

	var ids []string
	ok, err := store.Get(ctx, kv.KeyPredictorMatchIDs, &ids)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPredictorService_RunsToFullTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newPredictorServiceForTest(t, nil, constRandom(0.99))

	_, _, err := svc.ControlMatch(ctx, "m1")
	require.NoError(t, err)

	lastTime := 1
	for i := 0; i < 89; i++ {
		require.NoError(t, svc.TickAll(ctx))
		state, ok, err := svc.Get(ctx, "m1")
		require.NoError(t, err)
		require.True(t, ok)
		if state.Time <= lastTime {
			t.Fatalf("time must increase, got=%d last=%d", state.Time, lastTime)
		}
		lastTime = state.Time
	}
	require.Equal(t, predictor.FullTimeMinute, lastTime)

	require.NoError(t, svc.TickAll(ctx))
	state, _, err := svc.Get(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, match.PredictorFinished, state.PredictorMatchStatus)
	assert.Equal(t, "FT", state.TimeLabel)
	assert.Equal(t, []string{"FT", "Predicted penalty shoot-out winner: Away FC"}, state.StatusMessages)

	again, err := svc.Tick(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, state, again)
}

func TestPredictorService_StrongerHomeScoresOnLowRoll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	// 0.03 sits under the home chance (0.0375) and above the away chance.
	svc, _ := newPredictorServiceForTest(t, nil, constRandom(0.03))

	_, _, err := svc.ControlMatch(ctx, "m1")
	require.NoError(t, err)

	state, err := svc.Tick(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 1, state.HomeTeam.Score)
	assert.Equal(t, 0, state.AwayTeam.Score)
	assert.Equal(t, 2, state.Time)
}

func TestPredictorService_TickAllSkipsIDsWithoutState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newPredictorServiceForTest(t, nil, constRandom(0.99))

	_, _, err := svc.ControlMatch(ctx, "m1")
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, kv.KeyPredictorMatchIDs, []string{"ghost", "m1"}))

	require.NoError(t, svc.TickAll(ctx))
	require.NoError(t, svc.TickAll(ctx))

	state, ok, err := svc.Get(ctx, "m1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, state.Time)
	assert.Equal(t, "3'", state.TimeLabel)
}

func TestPredictorService_RefreshInterval(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		speed PredictorSpeedReader
		start bool
		want  time.Duration
	}{
		{name: "idle", speed: staticSpeed("fast"), want: time.Second},
		{name: "fast", speed: staticSpeed("fast"), start: true, want: 10 * time.Millisecond},
		{name: "slow", speed: staticSpeed("slow"), start: true, want: 500 * time.Millisecond},
		{name: "unset defaults to medium", speed: staticSpeed(""), start: true, want: 200 * time.Millisecond},
		{name: "no preference reader", start: true, want: 200 * time.Millisecond},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			svc, _ := newPredictorServiceForTest(t, tc.speed, constRandom(0.99))
			if tc.start {
				_, _, err := svc.ControlMatch(ctx, "m1")
				require.NoError(t, err)
			}

			got, err := svc.RefreshInterval(ctx)
			require.NoError(t, err)
			if got != tc.want {
				t.Fatalf("unexpected interval got=%s want=%s", got, tc.want)
			}
		})
	}
}

func TestPredictorService_Clear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newPredictorServiceForTest(t, nil, constRandom(0.99))

	_, _, err := svc.ControlMatch(ctx, "m1")
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	var state match.Record
	ok, err := store.Get(ctx, kv.PredictorMatchKey("m1"), &state)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPredictorService_StorageFailurePropagates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storeFailure := errors.New("disk full")

	t.Run("load ids", func(t *testing.T) {
		t.Parallel()

		store := kvmock.NewStore(t)
		repo := memory.NewMatchRepository()
		repo.Set(match.ViewFixtures, predictorFixtures())
		svc := NewPredictorService(store, repo, nil, predictor.DefaultSettings(), constRandom(0.5), logging.NewNop())

		store.On("Get", mock.Anything, kv.KeyPredictorMatchIDs, mock.Anything).Return(false, storeFailure).Once()

		_, _, err := svc.ControlMatch(ctx, "m1")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStorage)
		assert.ErrorIs(t, err, storeFailure)
	})

	t.Run("save state leaves ids untouched", func(t *testing.T) {
		t.Parallel()

		store := kvmock.NewStore(t)
		repo := memory.NewMatchRepository()
		repo.Set(match.ViewFixtures, predictorFixtures())
		svc := NewPredictorService(store, repo, nil, predictor.DefaultSettings(), constRandom(0.5), logging.NewNop())

		store.On("Get", mock.Anything, kv.KeyPredictorMatchIDs, mock.Anything).Return(false, nil).Once()
		store.On("Set", mock.Anything, kv.PredictorMatchKey("m1"), mock.Anything).Return(storeFailure).Once()

		_, started, err := svc.ControlMatch(ctx, "m1")
		require.ErrorIs(t, err, ErrStorage)
		assert.False(t, started)
		store.AssertNotCalled(t, "Set", mock.Anything, kv.KeyPredictorMatchIDs, mock.Anything)
	})
}

func TestPredictorService_RunTicksUntilCancelled(t *testing.T) {
	t.Parallel()

	repo := memory.NewMatchRepository()
	repo.Set(match.ViewFixtures, predictorFixtures())
	settings := predictor.DefaultSettings()
	settings.IdleInterval = 5 * time.Millisecond
	svc := NewPredictorService(memory.NewKVStore(), repo, staticSpeed("fast"), settings, constRandom(0.99), logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, _, err := svc.ControlMatch(ctx, "m1")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	require.Eventually(t, func() bool {
		state, _, err := svc.Get(context.Background(), "m1")
		return err == nil && predictor.IsFinished(state)
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatalf("predictor loop did not stop")
	}
}
