package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/amishk599/atsfeed/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeJobs(n int) []model.NormalizedJob {
	jobs := make([]model.NormalizedJob, n)
	for i := range jobs {
		jobs[i] = model.NormalizedJob{JobKey: fmt.Sprintf("greenhouse:acme:%d", i)}
	}
	return jobs
}

func TestPartition(t *testing.T) {
	for _, tc := range []struct{ n, size, want int }{
		{0, 3, 0},
		{1, 3, 1},
		{3, 3, 1},
		{7, 3, 3},
		{200, 200, 1},
		{201, 200, 2},
		{5, 0, 5},
	} {
		jobs := makeJobs(tc.n)
		batches := Partition(jobs, tc.size)
		if len(batches) != tc.want {
			t.Errorf("Partition(%d, %d) = %d batches, want %d", tc.n, tc.size, len(batches), tc.want)
			continue
		}

		limit := max(tc.size, 1)
		seen := make(map[string]int)
		for _, b := range batches {
			if len(b) > limit {
				t.Errorf("Partition(%d, %d): batch of %d exceeds size", tc.n, tc.size, len(b))
			}
			for _, j := range b {
				seen[j.JobKey]++
			}
		}
		if len(seen) != tc.n {
			t.Errorf("Partition(%d, %d): %d distinct jobs, want %d", tc.n, tc.size, len(seen), tc.n)
		}
		for k, c := range seen {
			if c != 1 {
				t.Errorf("job %s appears %d times", k, c)
			}
		}
	}
}

// mockSink fails the batches whose 1-based index is in failOn.
type mockSink struct {
	failOn map[int]bool
	calls  int
	sizes  []int
}

func (m *mockSink) Send(_ context.Context, jobs []model.NormalizedJob) error {
	m.calls++
	m.sizes = append(m.sizes, len(jobs))
	if m.failOn[m.calls] {
		return errors.New("sink unavailable")
	}
	return nil
}

func TestDeliver_FailureDoesNotStopLaterBatches(t *testing.T) {
	sink := &mockSink{failOn: map[int]bool{2: true}}
	res := NewDeliverer(sink, 2, discardLogger()).Deliver(context.Background(), makeJobs(5))

	if sink.calls != 3 {
		t.Fatalf("expected 3 sends, got %d", sink.calls)
	}
	want := Result{Batches: 3, Sent: 3, FailedBatches: 1, FailedJobs: 2}
	if res != want {
		t.Errorf("Result = %+v, want %+v", res, want)
	}
	if sink.sizes[2] != 1 {
		t.Errorf("expected last batch of 1, got %d", sink.sizes[2])
	}
}

func TestDeliver_Empty(t *testing.T) {
	sink := &mockSink{}
	res := NewDeliverer(sink, 10, discardLogger()).Deliver(context.Background(), nil)
	if sink.calls != 0 || res != (Result{}) {
		t.Errorf("expected no sends, got %d calls, %+v", sink.calls, res)
	}
}

func TestDeliver_CancelledContextCountsRemaining(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &mockSink{}
	res := NewDeliverer(sink, 2, discardLogger()).Deliver(ctx, makeJobs(3))
	if sink.calls != 0 {
		t.Errorf("expected no sends after cancel, got %d", sink.calls)
	}
	if res.FailedBatches != 2 || res.FailedJobs != 3 {
		t.Errorf("unexpected result %+v", res)
	}
}
