package store

import (
	"strings"
	"time"
)

// RunStatus represents the lifecycle of a pipeline run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ReapedRunError is the message appended when the reaper closes out a stuck run.
const ReapedRunError = "run timed out or was interrupted"

var runStatusSet = map[RunStatus]struct{}{
	RunStatusRunning:   {},
	RunStatusCompleted: {},
	RunStatusFailed:    {},
}

// ParseRunStatus converts a string into a known RunStatus.
func ParseRunStatus(value string) (RunStatus, bool) {
	normalized := RunStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := runStatusSet[normalized]
	return normalized, ok
}

// Terminal reports whether a status is a sink state.
func (s RunStatus) Terminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// IdeaStatus tracks whether an idea has been consumed by a script.
type IdeaStatus string

const (
	IdeaStatusPending  IdeaStatus = "pending"
	IdeaStatusConsumed IdeaStatus = "consumed"
)

// ScriptStatus tracks whether a script has been rendered into a video.
type ScriptStatus string

const (
	ScriptStatusPending  ScriptStatus = "pending"
	ScriptStatusRendered ScriptStatus = "rendered"
)

// VideoStatus tracks video synthesis progress.
type VideoStatus string

const (
	VideoStatusProcessing VideoStatus = "processing"
	VideoStatusReady      VideoStatus = "ready"
)

// PipelineRun is one end-to-end execution of the content pipeline.
type PipelineRun struct {
	ID               string
	RunDate          string
	Status           RunStatus
	StartedAt        time.Time
	CompletedAt      *time.Time
	IdeasGenerated   int
	ScriptsGenerated int
	VideosCreated    int
	VideosPublished  int
	Errors           []string
}

// CounterDelta carries additive updates to a run's progress counters.
// Zero fields leave the corresponding counter untouched.
type CounterDelta struct {
	Ideas     int
	Scripts   int
	Videos    int
	Published int
}

func (d CounterDelta) empty() bool {
	return d.Ideas == 0 && d.Scripts == 0 && d.Videos == 0 && d.Published == 0
}

// Idea is a generated content idea. Ideas are owned by no run at creation;
// association happens when a script consumes them.
type Idea struct {
	ID        string
	Category  string
	Title     string
	Hook      string
	MainPoint string
	CTA       string
	Language  string
	Status    IdeaStatus
	CreatedAt time.Time
}

// Script is generated narration text for one idea.
type Script struct {
	ID               string
	IdeaID           string
	Title            string
	Body             string
	EstimatedSeconds float64
	Status           ScriptStatus
	CreatedAt        time.Time
}

// Video is a synthesized video derived from a script.
type Video struct {
	ID              string
	RunID           string
	ScriptID        string
	Title           string
	VideoURL        string
	AudioURL        string
	DurationSeconds float64
	Status          VideoStatus
	CreatedAt       time.Time
}

// PublishRecord captures a completed platform upload. Engagement counters are
// refreshed out-of-band and start at zero.
type PublishRecord struct {
	ID          string
	RunID       string
	VideoID     string
	PlatformID  string
	PlatformURL string
	Title       string
	Description string
	Tags        []string
	Views       int64
	Likes       int64
	Comments    int64
	PublishedAt time.Time
}

// StepResult is the memoization record for one executed step. Created once
// per (run, step id) pair, never mutated, deleted only with the owning run.
type StepResult struct {
	RunID        string
	StepID       string
	Output       []byte
	Failed       bool
	ErrorMessage string
	CreatedAt    time.Time
}

// DashboardStats aggregates row-derived counts for the operator dashboard.
type DashboardStats struct {
	TotalVideos    int
	TotalViews     int64
	VideosThisWeek int
	CategoryMix    map[string]int
}
