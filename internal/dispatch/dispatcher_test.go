package dispatch

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paretosim/optimization-core/internal/ensemble"
	"github.com/paretosim/optimization-core/pkg/logger"
	"github.com/paretosim/optimization-core/pkg/utils"
)

// sumSim produces deterministic outputs so rows can be checked by key.
func sumSim(ctx context.Context, decisions, parameters map[string]float64) (map[string]float64, error) {
	return map[string]float64{
		"f1": decisions["x"] + parameters["p"],
		"f2": decisions["x"] * parameters["p"],
	}, nil
}

func inprocPool(t *testing.T, n int, sim Simulator) []Transport {
	t.Helper()
	transports := make([]Transport, n)
	for i := 0; i < n; i++ {
		tr, err := NewInProcessTransport(fmt.Sprintf("w%d", i), sim)
		require.NoError(t, err)
		transports[i] = tr
	}
	return transports
}

func makeItems(nMembers, nReals int) []WorkItem {
	var items []WorkItem
	for m := 0; m < nMembers; m++ {
		for r := 0; r < nReals; r++ {
			items = append(items, WorkItem{
				Member:      fmt.Sprintf("member-%d", m),
				Realization: fmt.Sprintf("real-%d", r),
				Decisions:   map[string]float64{"x": float64(m)},
				Parameters:  map[string]float64{"p": float64(r)},
			})
		}
	}
	return items
}

func TestEvaluateCycleAssemblesByKey(t *testing.T) {
	d, err := NewDispatcher(inprocPool(t, 3, sumSim), 0, nil, logger.Default)
	require.NoError(t, err)

	items := makeItems(4, 3)
	outcomes, err := d.EvaluateCycle(context.Background(), items, []string{"f1", "f2"})
	require.NoError(t, err)

	assert.Equal(t, len(items), outcomes.Len())
	for m := 0; m < 4; m++ {
		for r := 0; r < 3; r++ {
			key := ensemble.OutcomeKey{
				Member:      fmt.Sprintf("member-%d", m),
				Realization: fmt.Sprintf("real-%d", r),
			}
			v, ok := outcomes.Value(key, "f1")
			require.True(t, ok, "missing %s", key)
			assert.Equal(t, float64(m+r), v)
		}
	}

	// Member order follows submission order, not completion order
	assert.Equal(t, []string{"member-0", "member-1", "member-2", "member-3"}, outcomes.Members())
}

func TestEvaluateCycleRetriesTransientFailures(t *testing.T) {
	var failures atomic.Int64
	failures.Store(3)
	flaky := func(ctx context.Context, dec, par map[string]float64) (map[string]float64, error) {
		if failures.Add(-1) >= 0 {
			return nil, fmt.Errorf("transient worker fault")
		}
		return sumSim(ctx, dec, par)
	}

	d, err := NewDispatcher(inprocPool(t, 2, flaky), 3, utils.NewConstantBackoff(time.Millisecond), logger.Default)
	require.NoError(t, err)

	outcomes, err := d.EvaluateCycle(context.Background(), makeItems(2, 2), []string{"f1", "f2"})
	require.NoError(t, err)
	assert.Equal(t, 4, outcomes.Len())
}

func TestEvaluateCycleAllOrNothing(t *testing.T) {
	poisoned := func(ctx context.Context, dec, par map[string]float64) (map[string]float64, error) {
		if dec["x"] == 1 {
			return nil, fmt.Errorf("model diverged")
		}
		return sumSim(ctx, dec, par)
	}

	d, err := NewDispatcher(inprocPool(t, 2, poisoned), 1, utils.NewConstantBackoff(0), logger.Default)
	require.NoError(t, err)

	outcomes, err := d.EvaluateCycle(context.Background(), makeItems(3, 2), []string{"f1", "f2"})
	require.Error(t, err)
	assert.Nil(t, outcomes, "partial results must be discarded")
	assert.ErrorContains(t, err, "model diverged")
}

func TestEvaluateCycleRejectsOverlap(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	slow := func(ctx context.Context, dec, par map[string]float64) (map[string]float64, error) {
		close(started)
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return sumSim(ctx, dec, par)
	}

	d, err := NewDispatcher(inprocPool(t, 1, slow), 0, nil, logger.Default)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := d.EvaluateCycle(context.Background(), makeItems(1, 1), []string{"f1", "f2"})
		done <- err
	}()

	// Second cycle while the first is blocked inside the simulator
	<-started
	_, err = d.EvaluateCycle(context.Background(), makeItems(1, 1), []string{"f1", "f2"})
	assert.ErrorIs(t, err, ErrCycleInProgress)

	close(release)
	require.NoError(t, <-done)
}

func TestEvaluateCycleContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	blocked := func(ctx context.Context, dec, par map[string]float64) (map[string]float64, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	d, err := NewDispatcher(inprocPool(t, 1, blocked), 0, nil, logger.Default)
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = d.EvaluateCycle(ctx, makeItems(1, 1), []string{"f1", "f2"})
	assert.Error(t, err)
}

func TestNewDispatcherValidation(t *testing.T) {
	_, err := NewDispatcher(nil, 0, nil, logger.Default)
	assert.Error(t, err)

	_, err = NewDispatcher(inprocPool(t, 1, sumSim), -1, nil, logger.Default)
	assert.Error(t, err)
}

func TestEvaluateCycleEmptyItems(t *testing.T) {
	d, err := NewDispatcher(inprocPool(t, 1, sumSim), 0, nil, logger.Default)
	require.NoError(t, err)

	_, err = d.EvaluateCycle(context.Background(), nil, []string{"f1"})
	assert.Error(t, err)
}

func TestInProcessTransportValidation(t *testing.T) {
	_, err := NewInProcessTransport("w", nil)
	assert.Error(t, err)

	tr, err := NewInProcessTransport("", sumSim)
	require.NoError(t, err)
	assert.Equal(t, "inproc", tr.Name())
	assert.NoError(t, tr.Close())
}

func TestDispatcherClose(t *testing.T) {
	d, err := NewDispatcher(inprocPool(t, 2, sumSim), 0, nil, logger.Default)
	require.NoError(t, err)
	assert.Equal(t, 2, d.Workers())
	assert.NoError(t, d.Close())
}
