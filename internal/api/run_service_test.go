package api_test

import (
	"context"
	"testing"
	"time"

	"reelcast/internal/api"
	"reelcast/internal/store"
)

type fakeReader struct {
	runs      []*store.PipelineRun
	videos    []*store.Video
	publishes []*store.PublishRecord
	stats     *store.DashboardStats

	listStatuses []store.RunStatus
	listLimit    int
}

func (f *fakeReader) ListRuns(_ context.Context, limit int, statuses ...store.RunStatus) ([]*store.PipelineRun, error) {
	f.listLimit = limit
	f.listStatuses = statuses
	return f.runs, nil
}

func (f *fakeReader) GetRun(_ context.Context, id string) (*store.PipelineRun, error) {
	for _, run := range f.runs {
		if run.ID == id {
			return run, nil
		}
	}
	return nil, store.ErrRunNotFound
}

func (f *fakeReader) LatestRun(context.Context) (*store.PipelineRun, error) {
	if len(f.runs) == 0 {
		return nil, nil
	}
	return f.runs[0], nil
}

func (f *fakeReader) ListVideos(context.Context, int) ([]*store.Video, error) {
	return f.videos, nil
}

func (f *fakeReader) ListPublishRecords(context.Context, int) ([]*store.PublishRecord, error) {
	return f.publishes, nil
}

func (f *fakeReader) Stats(context.Context) (*store.DashboardStats, error) {
	return f.stats, nil
}

func TestRunServiceListForwardsFilters(t *testing.T) {
	reader := &fakeReader{runs: []*store.PipelineRun{
		{ID: "run-1", Status: store.RunStatusRunning, StartedAt: time.Now().UTC()},
	}}
	svc := api.NewRunService(reader)

	views, err := svc.List(context.Background(), 25, store.RunStatusRunning)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(views) != 1 || views[0].ID != "run-1" {
		t.Fatalf("unexpected views %+v", views)
	}
	if reader.listLimit != 25 {
		t.Fatalf("limit = %d, want 25", reader.listLimit)
	}
	if len(reader.listStatuses) != 1 || reader.listStatuses[0] != store.RunStatusRunning {
		t.Fatalf("unexpected statuses %v", reader.listStatuses)
	}
}

func TestRunServiceLatestNilWhenEmpty(t *testing.T) {
	svc := api.NewRunService(&fakeReader{})
	view, err := svc.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if view != nil {
		t.Fatalf("expected nil view, got %+v", view)
	}
}

func TestRunServiceStats(t *testing.T) {
	svc := api.NewRunService(&fakeReader{stats: &store.DashboardStats{
		TotalVideos: 7,
		TotalViews:  900,
		CategoryMix: map[string]int{"productivity": 4, "health": 3},
	}})
	view, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if view.TotalVideos != 7 || view.CategoryMix["health"] != 3 {
		t.Fatalf("unexpected stats %+v", view)
	}
}

func TestNilServiceIsSafe(t *testing.T) {
	var svc *api.RunService
	if views, err := svc.List(context.Background(), 10); err != nil || views != nil {
		t.Fatalf("nil service List = (%v, %v)", views, err)
	}
}
