package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/courtstats/internal/domain/types"
	"github.com/okian/courtstats/pkg/logger"
	"github.com/okian/courtstats/pkg/metrics"
)

// timed validates p, runs the report pipeline and wraps its rows with the
// elapsed wall-clock time. Validation happens before the store is touched.
func timed[T any](ctx context.Context, e *Engine, report string, p *Params, run func(context.Context) ([]T, error)) (types.Response[T], error) {
	start := time.Now()
	if err := validateParams(ctx, p); err != nil {
		metrics.RecordReport(report, metrics.StatusInvalid, time.Since(start), 0)
		return types.Response[T]{}, &ReportError{Report: report, Err: err}
	}

	rows, err := run(ctx)
	took := time.Since(start)
	if err != nil {
		metrics.RecordReport(report, metrics.StatusError, took, 0)
		metrics.RecordErrorByComponent("analytics", "query_execution")
		e.log.Error(ctx, "report failed", logger.String("report", report), logger.Error(err))
		if errors.Is(err, ErrQueryExecution) {
			return types.Response[T]{}, &ReportError{Report: report, Err: err}
		}
		return types.Response[T]{}, &ReportError{Report: report, Err: fmt.Errorf("%w: %w", ErrQueryExecution, err)}
	}

	resp := types.NewResponse(rows, took.Milliseconds())
	metrics.RecordReport(report, metrics.StatusOK, took, resp.Count)
	e.log.Debug(ctx, "report executed",
		logger.String("report", report),
		logger.Int("rows", resp.Count),
		logger.Duration("took", took),
	)
	return resp, nil
}
