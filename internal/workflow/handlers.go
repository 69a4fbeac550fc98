package workflow

import (
	"context"
	"fmt"

	"reelcast/internal/events"
	"reelcast/internal/logging"
	"reelcast/internal/services"
	"reelcast/internal/services/render"
	"reelcast/internal/services/tts"
	"reelcast/internal/services/videogen"
	"reelcast/internal/services/youtube"
	"reelcast/internal/steps"
	"reelcast/internal/store"
)

// HandleVideoGenerate consumes a video.generate event: speech synthesis,
// background video synthesis, final render, video row persistence, optional
// publish handoff. Item failures are appended to the run's error list; the
// handler itself succeeds so the router does not redeliver semantic
// failures.
func (o *Orchestrator) HandleVideoGenerate(ctx context.Context, evt events.Event) error {
	var payload events.VideoGenerate
	if err := evt.Decode(&payload); err != nil {
		return fmt.Errorf("decode video generate payload: %w", err)
	}

	ctx = services.WithRunID(services.WithStage(ctx, "videogen"), payload.RunID)
	logger := logging.WithContext(ctx, o.logger)
	scriptKey := "script:" + payload.ScriptID
	defer o.tracker.complete(payload.RunID, scriptKey)

	speech, err := steps.Do(ctx, o.executor, payload.RunID, "synthesize-speech-"+payload.ScriptID,
		func(ctx context.Context) (tts.Result, error) {
			return o.adapters.Speech.Synthesize(ctx, payload.Script)
		})
	if err != nil {
		o.recordRunError(ctx, payload.RunID, fmt.Sprintf("synthesize speech for %q", payload.Title), err)
		return nil
	}

	background, err := steps.Do(ctx, o.executor, payload.RunID, "synthesize-video-"+payload.ScriptID,
		func(ctx context.Context) (videogen.Result, error) {
			return o.adapters.Video.Generate(ctx, videogen.Request{
				Title:          payload.Title,
				Script:         payload.Script,
				AudioURL:       speech.AudioURL,
				TargetDuration: payload.TargetDuration,
			})
		})
	if err != nil {
		o.recordRunError(ctx, payload.RunID, fmt.Sprintf("synthesize video for %q", payload.Title), err)
		return nil
	}

	final, err := steps.Do(ctx, o.executor, payload.RunID, "render-final-"+payload.ScriptID,
		func(ctx context.Context) (render.Result, error) {
			return o.adapters.Renderer.Render(ctx, render.Request{
				Title:    payload.Title,
				VideoURL: background.VideoURL,
				AudioURL: speech.AudioURL,
				Script:   payload.Script,
			})
		})
	if err != nil {
		o.recordRunError(ctx, payload.RunID, fmt.Sprintf("render %q", payload.Title), err)
		return nil
	}

	// Row creation and counter update live inside a memoized step so a
	// redelivered event cannot double them.
	videoID, err := steps.Do(ctx, o.executor, payload.RunID, "persist-video-"+payload.ScriptID,
		func(ctx context.Context) (string, error) {
			video := &store.Video{
				RunID:    payload.RunID,
				ScriptID: payload.ScriptID,
				Title:    payload.Title,
				AudioURL: speech.AudioURL,
			}
			if err := o.store.CreateVideo(ctx, video); err != nil {
				return "", fmt.Errorf("create video: %w", err)
			}
			if err := o.store.MarkVideoReady(ctx, video.ID, final.VideoURL, final.DurationSeconds); err != nil {
				return "", fmt.Errorf("mark video ready: %w", err)
			}
			if err := o.store.MarkScriptRendered(ctx, payload.ScriptID); err != nil {
				return "", fmt.Errorf("mark script rendered: %w", err)
			}
			if err := o.store.AddRunCounters(ctx, payload.RunID, store.CounterDelta{Videos: 1}); err != nil {
				return "", fmt.Errorf("count video: %w", err)
			}
			return video.ID, nil
		})
	if err != nil {
		o.recordRunError(ctx, payload.RunID, fmt.Sprintf("persist video for %q", payload.Title), err)
		return nil
	}

	logger.Info("video ready",
		logging.String("video_id", videoID),
		logging.String("title", payload.Title))

	if !payload.UploadAfter {
		return nil
	}

	o.tracker.expect(payload.RunID, "publish:"+videoID)
	err = o.router.Emit(ctx, events.NamePublish, events.PublishRequest{
		RunID:       payload.RunID,
		VideoDBID:   videoID,
		Title:       payload.Title,
		Description: buildDescription(payload),
		Tags:        []string{"shorts"},
		VideoURL:    final.VideoURL,
		Privacy:     payload.Privacy,
	})
	if err != nil {
		o.tracker.complete(payload.RunID, "publish:"+videoID)
		o.recordRunError(ctx, payload.RunID, fmt.Sprintf("dispatch publish for %q", payload.Title), err)
	}
	return nil
}

// HandlePublish consumes a youtube.upload event and records the publish.
func (o *Orchestrator) HandlePublish(ctx context.Context, evt events.Event) error {
	var payload events.PublishRequest
	if err := evt.Decode(&payload); err != nil {
		return fmt.Errorf("decode publish payload: %w", err)
	}

	ctx = services.WithRunID(services.WithStage(ctx, "publish"), payload.RunID)
	logger := logging.WithContext(ctx, o.logger)
	defer o.tracker.complete(payload.RunID, "publish:"+payload.VideoDBID)

	result, err := steps.Do(ctx, o.executor, payload.RunID, "publish-"+payload.VideoDBID,
		func(ctx context.Context) (publishOutcome, error) {
			published, err := o.adapters.Publish.Publish(ctx, youtube.Input{
				Title:         payload.Title,
				Description:   payload.Description,
				Tags:          payload.Tags,
				VideoURL:      payload.VideoURL,
				PrivacyStatus: payload.Privacy,
			})
			if err != nil {
				return publishOutcome{}, err
			}

			record := &store.PublishRecord{
				RunID:       payload.RunID,
				VideoID:     payload.VideoDBID,
				PlatformID:  published.PlatformID,
				PlatformURL: published.PlatformURL,
				Title:       payload.Title,
				Description: payload.Description,
				Tags:        payload.Tags,
			}
			if err := o.store.CreatePublishRecord(ctx, record); err != nil {
				return publishOutcome{}, fmt.Errorf("create publish record: %w", err)
			}
			if err := o.store.AddRunCounters(ctx, payload.RunID, store.CounterDelta{Published: 1}); err != nil {
				return publishOutcome{}, fmt.Errorf("count publish: %w", err)
			}
			return publishOutcome{
				PlatformID:  published.PlatformID,
				PlatformURL: published.PlatformURL,
			}, nil
		})
	if err != nil {
		o.recordRunError(ctx, payload.RunID, fmt.Sprintf("publish %q", payload.Title), err)
		return nil
	}

	logger.Info("video published",
		logging.String("platform_id", result.PlatformID),
		logging.String("url", result.PlatformURL))
	o.notify(ctx, "video published", o.notifier.NotifyVideoPublished(ctx, payload.Title, result.PlatformURL))
	return nil
}

// HandlePipelineTest consumes a pipeline.test event by running the
// single-idea test pipeline.
func (o *Orchestrator) HandlePipelineTest(ctx context.Context, evt events.Event) error {
	var payload events.PipelineTest
	if err := evt.Decode(&payload); err != nil {
		return fmt.Errorf("decode pipeline test payload: %w", err)
	}
	_, err := o.RunTest(ctx, payload.Topic)
	return err
}

type publishOutcome struct {
	PlatformID  string `json:"platform_id"`
	PlatformURL string `json:"platform_url"`
}

func buildDescription(payload events.VideoGenerate) string {
	return truncate(payload.Script, 157)
}
