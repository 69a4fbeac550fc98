package api

import (
	"context"

	"reelcast/internal/store"
)

// RunReader abstracts the store interactions needed for API queries.
type RunReader interface {
	ListRuns(ctx context.Context, limit int, statuses ...store.RunStatus) ([]*store.PipelineRun, error)
	GetRun(ctx context.Context, id string) (*store.PipelineRun, error)
	LatestRun(ctx context.Context) (*store.PipelineRun, error)
	ListVideos(ctx context.Context, limit int) ([]*store.Video, error)
	ListPublishRecords(ctx context.Context, limit int) ([]*store.PublishRecord, error)
	Stats(ctx context.Context) (*store.DashboardStats, error)
}

// RunService exposes read-only pipeline queries returning API DTOs.
type RunService struct {
	store RunReader
}

// NewRunService constructs a RunService around the provided reader.
func NewRunService(store RunReader) *RunService {
	if store == nil {
		return nil
	}
	return &RunService{store: store}
}

// List returns runs filtered by status, newest first.
func (s *RunService) List(ctx context.Context, limit int, statuses ...store.RunStatus) ([]RunView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	runs, err := s.store.ListRuns(ctx, limit, statuses...)
	if err != nil {
		return nil, err
	}
	return FromRuns(runs), nil
}

// Describe fetches a single run.
func (s *RunService) Describe(ctx context.Context, id string) (*RunView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	run, err := s.store.GetRun(ctx, id)
	if err != nil || run == nil {
		return nil, err
	}
	view := FromRun(run)
	return &view, nil
}

// Latest fetches the most recently started run, or nil when none exist.
func (s *RunService) Latest(ctx context.Context) (*RunView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	run, err := s.store.LatestRun(ctx)
	if err != nil || run == nil {
		return nil, err
	}
	view := FromRun(run)
	return &view, nil
}

// Videos returns the most recently created videos.
func (s *RunService) Videos(ctx context.Context, limit int) ([]VideoView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	videos, err := s.store.ListVideos(ctx, limit)
	if err != nil {
		return nil, err
	}
	return FromVideos(videos), nil
}

// Publishes returns the most recent publish records.
func (s *RunService) Publishes(ctx context.Context, limit int) ([]PublishView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	records, err := s.store.ListPublishRecords(ctx, limit)
	if err != nil {
		return nil, err
	}
	return FromPublishRecords(records), nil
}

// Stats returns dashboard aggregates.
func (s *RunService) Stats(ctx context.Context) (StatsView, error) {
	if s == nil || s.store == nil {
		return StatsView{}, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return StatsView{}, err
	}
	return FromStats(stats), nil
}
