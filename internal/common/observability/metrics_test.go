package observability

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"scholarship-workers/internal/common/logger"
	"scholarship-workers/internal/common/metrics"
	"scholarship-workers/internal/engine/batch"
	"scholarship-workers/internal/engine/dedup"
	"scholarship-workers/internal/models"
)

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return -1
	}
	return m.GetCounter().GetValue()
}

func TestObservability_Hooks(t *testing.T) {
	obs := New("observability-test", logger.NewZapAdapter(zaptest.NewLogger(t)))
	defer obs.Shutdown()

	ctx, span := obs.Tracer("test").Start(context.Background(), "batch")
	assert.True(t, span.SpanContext().IsValid())
	defer span.End()

	mustApply := metrics.MatchesScored.WithLabelValues(string(models.TierMustApply))
	before := counterValue(mustApply)

	obs.BatchScored(ctx, batch.Stats{
		StudentID:  "stu-1",
		Candidates: 4,
		Scored:     3,
		Excluded:   1,
		Duration:   12 * time.Millisecond,
		Tiers:      map[models.PriorityTier]int{models.TierMustApply: 2},
	})
	assert.Equal(t, before+2, counterValue(mustApply))

	exact := metrics.DuplicatesFound.WithLabelValues("exact")
	fuzzy := metrics.DuplicatesFound.WithLabelValues("fuzzy")
	exactBefore, fuzzyBefore := counterValue(exact), counterValue(fuzzy)

	obs.DuplicatesDetected(ctx, dedup.Summary{Candidates: 5, Exact: 1, Batch: 2})
	assert.Equal(t, exactBefore+1, counterValue(exact))
	assert.Equal(t, fuzzyBefore, counterValue(fuzzy))
}

func TestObservability_ZeroValueIsSafe(t *testing.T) {
	obs := &Observability{log: logger.NewZapAdapter(zaptest.NewLogger(t))}
	require.NotPanics(t, func() {
		obs.BatchScored(context.Background(), batch.Stats{})
		obs.DuplicatesDetected(context.Background(), dedup.Summary{Fuzzy: 1})
		_ = obs.Tracer("noop")
		obs.Shutdown()
	})
}
