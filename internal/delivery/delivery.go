// Package delivery splits a run's jobs into batches and ships them to a sink.
package delivery

import (
	"context"
	"log/slog"

	"github.com/amishk599/atsfeed/internal/model"
)

// Partition splits jobs into contiguous batches of at most size jobs. A size
// below 1 is treated as 1.
func Partition(jobs []model.NormalizedJob, size int) [][]model.NormalizedJob {
	if size < 1 {
		size = 1
	}
	if len(jobs) == 0 {
		return nil
	}
	batches := make([][]model.NormalizedJob, 0, (len(jobs)+size-1)/size)
	for start := 0; start < len(jobs); start += size {
		end := min(start+size, len(jobs))
		batches = append(batches, jobs[start:end:end])
	}
	return batches
}

// Result summarizes one delivery.
type Result struct {
	Batches       int
	Sent          int
	FailedBatches int
	FailedJobs    int
}

// Deliverer sends batches to a sink in ascending order.
type Deliverer struct {
	sink      model.JobSink
	batchSize int
	logger    *slog.Logger
}

// NewDeliverer creates a Deliverer.
func NewDeliverer(sink model.JobSink, batchSize int, logger *slog.Logger) *Deliverer {
	return &Deliverer{sink: sink, batchSize: batchSize, logger: logger}
}

// Deliver sends every batch. A failed batch is counted and logged and the next
// batch still goes out. Cancelling ctx stops before the next batch; unsent
// batches count as failed.
func (d *Deliverer) Deliver(ctx context.Context, jobs []model.NormalizedJob) Result {
	batches := Partition(jobs, d.batchSize)
	res := Result{Batches: len(batches)}

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			for _, rest := range batches[i:] {
				res.FailedBatches++
				res.FailedJobs += len(rest)
			}
			d.logger.Warn("delivery cancelled", "remaining_batches", len(batches)-i, "error", err)
			break
		}

		if err := d.sink.Send(ctx, batch); err != nil {
			res.FailedBatches++
			res.FailedJobs += len(batch)
			d.logger.Error("batch delivery failed",
				"batch", i+1,
				"batches", len(batches),
				"size", len(batch),
				"error", err,
			)
			continue
		}
		res.Sent += len(batch)
		d.logger.Info("batch delivered", "batch", i+1, "batches", len(batches), "size", len(batch))
	}

	return res
}
