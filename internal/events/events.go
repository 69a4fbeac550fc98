package events

import (
	"encoding/json"
	"time"
)

// Event names routed between pipeline stages.
const (
	NameVideoGenerate = "video.generate"
	NamePublish       = "youtube.upload"
	NamePipelineTest  = "pipeline.test"
)

// Event is one routed message. Payload is the JSON encoding of one of the
// typed payload structs below.
type Event struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Payload   json.RawMessage `json:"payload"`
	EmittedAt time.Time       `json:"emitted_at"`
}

// Decode unmarshals the event payload into out.
func (e Event) Decode(out any) error {
	return json.Unmarshal(e.Payload, out)
}

// Idea carries the originating idea along with its derived script so
// downstream handlers never re-read it from the store.
type Idea struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Title     string `json:"title"`
	Hook      string `json:"hook"`
	MainPoint string `json:"main_point"`
	CTA       string `json:"cta"`
}

// VideoGenerate asks for a script to be turned into a finished video.
type VideoGenerate struct {
	RunID          string  `json:"run_id"`
	ScriptID       string  `json:"script_id"`
	Idea           Idea    `json:"idea"`
	Title          string  `json:"title"`
	Script         string  `json:"script"`
	TargetDuration float64 `json:"target_duration_seconds"`
	Language       string  `json:"language"`
	UploadAfter    bool    `json:"upload_after"`
	Privacy        string  `json:"privacy,omitempty"`
}

// PublishRequest asks for a finished video to be uploaded. VideoDBID is the
// video row id, distinct from the platform id assigned at upload.
type PublishRequest struct {
	RunID       string   `json:"run_id"`
	VideoDBID   string   `json:"video_db_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	VideoURL    string   `json:"video_url"`
	Privacy     string   `json:"privacy,omitempty"`
}

// PipelineTest asks for a single-idea dry run of the full pipeline.
type PipelineTest struct {
	Topic string `json:"topic"`
}
