package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// RunView describes a pipeline run in a transport-friendly format.
type RunView struct {
	ID               string   `json:"id"`
	RunDate          string   `json:"run_date"`
	Status           string   `json:"status"`
	StartedAt        string   `json:"started_at"`
	CompletedAt      string   `json:"completed_at,omitempty"`
	TopicsGenerated  int      `json:"topics_generated"`
	ScriptsGenerated int      `json:"scripts_generated"`
	VideosCreated    int      `json:"videos_created"`
	VideosUploaded   int      `json:"videos_uploaded"`
	Errors           []string `json:"errors,omitempty"`
}

// VideoView describes a synthesized video.
type VideoView struct {
	ID              string  `json:"id"`
	RunID           string  `json:"run_id"`
	ScriptID        string  `json:"script_id"`
	Title           string  `json:"title"`
	VideoURL        string  `json:"video_url,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

// PublishView describes a completed platform upload.
type PublishView struct {
	ID          string   `json:"id"`
	RunID       string   `json:"run_id"`
	VideoID     string   `json:"video_id"`
	PlatformID  string   `json:"platform_id"`
	PlatformURL string   `json:"platform_url"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags,omitempty"`
	Views       int64    `json:"views"`
	Likes       int64    `json:"likes"`
	Comments    int64    `json:"comments"`
	PublishedAt string   `json:"published_at,omitempty"`
}

// StatsView aggregates dashboard counts.
type StatsView struct {
	TotalVideos    int            `json:"total_videos"`
	TotalViews     int64          `json:"total_views"`
	VideosThisWeek int            `json:"videos_this_week"`
	CategoryMix    map[string]int `json:"category_mix,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool     `json:"running"`
	PID          int      `json:"pid"`
	DatabasePath string   `json:"database_path"`
	LockFilePath string   `json:"lock_file_path"`
	LatestRun    *RunView `json:"latest_run,omitempty"`
}

// RunListResponse wraps a collection of runs.
type RunListResponse struct {
	Runs []RunView `json:"runs"`
}

// RunResponse wraps a single run.
type RunResponse struct {
	Run RunView `json:"run"`
}

// VideoListResponse wraps a collection of videos.
type VideoListResponse struct {
	Videos []VideoView `json:"videos"`
}

// PublishListResponse wraps a collection of publish records.
type PublishListResponse struct {
	Publishes []PublishView `json:"publishes"`
}

// TriggerResponse acknowledges a pipeline trigger request.
type TriggerResponse struct {
	Status string `json:"status"`
}

// SweepResponse reports how many stuck runs a sweep closed out.
type SweepResponse struct {
	Reaped int `json:"reaped"`
}

// ErrorResponse carries an API error message.
type ErrorResponse struct {
	Error string `json:"error"`
}
