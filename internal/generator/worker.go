package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/courtstats/internal/adapters/repository"
	"github.com/okian/courtstats/internal/domain/model"
	"github.com/okian/courtstats/pkg/logger"
	"github.com/okian/courtstats/pkg/metrics"
)

// WorkerTask is the unit of work handed to one match worker. Workers do
// not carry their own connection info: they share the generator's
// repository.Writer, which owns the connection pool. On SQLite that pool
// is a single connection, so batches from different workers serialize.
type WorkerTask struct {
	WorkerID      int
	TournamentIDs []string
	PlayerIDs     []string
	NumMatches    int
	BatchSize     int
	// Calendar is shared read-only between workers.
	Calendar map[string]Fixture
}

// WorkerResult is what a worker signals back on completion or failure.
type WorkerResult struct {
	WorkerID int    `json:"workerId"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	Written  int    `json:"written"`
}

// partition splits count across max(1, workers) workers with
// ceil-division. Empty shards are dropped, so fewer tasks than workers may
// come back.
func partition(count, workers int) []int {
	if count <= 0 {
		return nil
	}
	workers = max(1, workers)
	per := (count + workers - 1) / workers
	var shards []int
	for w := 0; w < workers; w++ {
		n := min(per, count-w*per)
		if n <= 0 {
			break
		}
		shards = append(shards, n)
	}
	return shards
}

// runWorker writes task.NumMatches matches in batches. Cancellation is
// honoured between batches only: a batch that has started is written.
func runWorker(ctx context.Context, w repository.Writer, seed int64, task WorkerTask, log logger.Logger) (WorkerResult, error) {
	res := WorkerResult{WorkerID: task.WorkerID}
	src := newSource(seed, streamWorkers+uint64(task.WorkerID))
	log = log.With(logger.Int("worker_id", task.WorkerID))

	metrics.AddGeneratorWorkers(1)
	defer metrics.AddGeneratorWorkers(-1)

	batch := make([]model.Match, 0, min(task.BatchSize, task.NumMatches))
	for res.Written < task.NumMatches {
		if err := ctx.Err(); err != nil {
			res.Error = err.Error()
			return res, err
		}

		batch = batch[:0]
		for range min(task.BatchSize, task.NumMatches-res.Written) {
			tid := pick(src, task.TournamentIDs)
			batch = append(batch, newMatch(src, tid, task.Calendar[tid], task.PlayerIDs))
		}

		start := time.Now()
		if err := w.InsertMatches(context.WithoutCancel(ctx), batch); err != nil {
			metrics.RecordWorkerError()
			res.Error = err.Error()
			return res, fmt.Errorf("after %d matches: %w", res.Written, err)
		}
		metrics.RecordBatch(string(model.Matches), len(batch), time.Since(start))
		res.Written += len(batch)
		log.Debug(ctx, "batch written", logger.Int("size", len(batch)), logger.Int("written", res.Written))
	}

	res.Success = true
	return res, nil
}
