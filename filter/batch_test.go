package filter

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/gogpu/photofx/raster"
)

func TestRunBatch(t *testing.T) {
	src := newTestImage(t, 24, 16, 4, raster.Depth8, gradient(255))
	filters := allFilters(t, src)

	jobs := make([]Job, 0, len(filters)+1)
	for i, f := range filters {
		id := ""
		if i == 0 {
			id = "first"
		}
		jobs = append(jobs, Job{ID: id, Filter: f})
	}
	jobs = append(jobs, Job{ID: "broken"})

	results := RunBatch(context.Background(), jobs, 3)
	if len(results) != len(jobs) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(jobs))
	}

	if results[0].ID != "first" {
		t.Errorf("results[0].ID = %q, want %q", results[0].ID, "first")
	}
	for i, f := range filters {
		r := results[i]
		if r.Kind != f.Kind() {
			t.Errorf("results[%d].Kind = %v, want %v", i, r.Kind, f.Kind())
		}
		if r.Status != StatusSuccess || r.Err != nil {
			t.Errorf("results[%d] = %v (%v), want Success", i, r.Status, r.Err)
		}
		if r.Image == nil {
			t.Errorf("results[%d].Image = nil", i)
		}
		if i > 0 {
			if _, err := uuid.Parse(r.ID); err != nil {
				t.Errorf("results[%d].ID = %q, want a UUID", i, r.ID)
			}
		}
	}

	// Same output as running the filter directly.
	direct, _ := filters[0].Run(context.Background(), nil)
	if !results[0].Image.Equal(direct) {
		t.Error("batch result differs from a direct run")
	}

	last := results[len(results)-1]
	if last.Status != StatusFailed || !errors.Is(last.Err, ErrEmptySource) {
		t.Errorf("job without filter = %v (%v), want Failed with ErrEmptySource", last.Status, last.Err)
	}
}

func TestRunBatchCancelled(t *testing.T) {
	src := newTestImage(t, 16, 16, 3, raster.Depth8, gradient(255))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var jobs []Job
	for _, f := range allFilters(t, src) {
		jobs = append(jobs, Job{Filter: f})
	}
	for i, r := range RunBatch(ctx, jobs, 2) {
		if r.Status != StatusCancelled {
			t.Errorf("results[%d].Status = %v, want Cancelled", i, r.Status)
		}
	}
}

func TestRunBatchEmpty(t *testing.T) {
	if got := RunBatch(context.Background(), nil, 4); len(got) != 0 {
		t.Errorf("RunBatch(nil) = %v, want empty", got)
	}
}
