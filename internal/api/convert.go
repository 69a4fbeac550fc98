package api

import (
	"time"

	"reelcast/internal/store"
)

// FromRun converts a stored run into its API view.
func FromRun(run *store.PipelineRun) RunView {
	if run == nil {
		return RunView{}
	}
	view := RunView{
		ID:               run.ID,
		RunDate:          run.RunDate,
		Status:           string(run.Status),
		StartedAt:        formatTime(run.StartedAt),
		TopicsGenerated:  run.IdeasGenerated,
		ScriptsGenerated: run.ScriptsGenerated,
		VideosCreated:    run.VideosCreated,
		VideosUploaded:   run.VideosPublished,
		Errors:           append([]string(nil), run.Errors...),
	}
	if run.CompletedAt != nil {
		view.CompletedAt = formatTime(*run.CompletedAt)
	}
	return view
}

// FromRuns converts a slice of stored runs.
func FromRuns(runs []*store.PipelineRun) []RunView {
	views := make([]RunView, 0, len(runs))
	for _, run := range runs {
		if run == nil {
			continue
		}
		views = append(views, FromRun(run))
	}
	return views
}

// FromVideo converts a stored video into its API view.
func FromVideo(video *store.Video) VideoView {
	if video == nil {
		return VideoView{}
	}
	return VideoView{
		ID:              video.ID,
		RunID:           video.RunID,
		ScriptID:        video.ScriptID,
		Title:           video.Title,
		VideoURL:        video.VideoURL,
		DurationSeconds: video.DurationSeconds,
		Status:          string(video.Status),
		CreatedAt:       formatTime(video.CreatedAt),
	}
}

// FromVideos converts a slice of stored videos.
func FromVideos(videos []*store.Video) []VideoView {
	views := make([]VideoView, 0, len(videos))
	for _, video := range videos {
		if video == nil {
			continue
		}
		views = append(views, FromVideo(video))
	}
	return views
}

// FromPublishRecord converts a stored publish record into its API view.
func FromPublishRecord(record *store.PublishRecord) PublishView {
	if record == nil {
		return PublishView{}
	}
	return PublishView{
		ID:          record.ID,
		RunID:       record.RunID,
		VideoID:     record.VideoID,
		PlatformID:  record.PlatformID,
		PlatformURL: record.PlatformURL,
		Title:       record.Title,
		Tags:        append([]string(nil), record.Tags...),
		Views:       record.Views,
		Likes:       record.Likes,
		Comments:    record.Comments,
		PublishedAt: formatTime(record.PublishedAt),
	}
}

// FromPublishRecords converts a slice of stored publish records.
func FromPublishRecords(records []*store.PublishRecord) []PublishView {
	views := make([]PublishView, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		views = append(views, FromPublishRecord(record))
	}
	return views
}

// FromStats converts dashboard stats into their API view.
func FromStats(stats *store.DashboardStats) StatsView {
	if stats == nil {
		return StatsView{}
	}
	return StatsView{
		TotalVideos:    stats.TotalVideos,
		TotalViews:     stats.TotalViews,
		VideosThisWeek: stats.VideosThisWeek,
		CategoryMix:    stats.CategoryMix,
	}
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(dateTimeFormat)
}
