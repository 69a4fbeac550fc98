package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"reelcast/internal/config"
	"reelcast/internal/events"
	"reelcast/internal/logging"
	"reelcast/internal/notifications"
	"reelcast/internal/services"
	"reelcast/internal/services/ideas"
	"reelcast/internal/services/render"
	"reelcast/internal/services/scripts"
	"reelcast/internal/services/tts"
	"reelcast/internal/services/videogen"
	"reelcast/internal/services/youtube"
	"reelcast/internal/steps"
	"reelcast/internal/store"
)

// IdeaGenerator produces content ideas.
type IdeaGenerator interface {
	Generate(ctx context.Context, req ideas.Request) ([]ideas.Draft, error)
}

// ScriptGenerator turns one idea into a narration script.
type ScriptGenerator interface {
	Write(ctx context.Context, input scripts.Input) (scripts.Draft, error)
}

// SpeechSynthesizer turns narration text into hosted audio.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) (tts.Result, error)
}

// VideoSynthesizer produces background video for a script.
type VideoSynthesizer interface {
	Generate(ctx context.Context, req videogen.Request) (videogen.Result, error)
}

// Renderer merges audio and video into the final short.
type Renderer interface {
	Render(ctx context.Context, req render.Request) (render.Result, error)
}

// Publisher uploads a finished video to the platform.
type Publisher interface {
	Publish(ctx context.Context, input youtube.Input) (youtube.Result, error)
}

// Adapters bundles the external collaborators the pipeline drives.
type Adapters struct {
	Ideas    IdeaGenerator
	Scripts  ScriptGenerator
	Speech   SpeechSynthesizer
	Video    VideoSynthesizer
	Renderer Renderer
	Publish  Publisher
}

// Orchestrator owns the pipeline's workflow functions.
type Orchestrator struct {
	cfg      *config.Config
	store    *store.Store
	executor *steps.Executor
	router   *events.Router
	adapters Adapters
	notifier notifications.Service
	logger   *slog.Logger
	tracker  *runTracker
}

// NewOrchestrator wires the workflow functions together.
func NewOrchestrator(cfg *config.Config, st *store.Store, executor *steps.Executor, router *events.Router, adapters Adapters, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:      cfg,
		store:    st,
		executor: executor,
		router:   router,
		adapters: adapters,
		notifier: notifications.NewService(cfg),
		logger:   logger.With(logging.String(logging.FieldComponent, "workflow")),
		tracker:  newRunTracker(),
	}
}

// notify logs a failed push instead of propagating it; notifications never
// affect run outcomes.
func (o *Orchestrator) notify(ctx context.Context, label string, err error) {
	if err != nil {
		logging.WithContext(ctx, o.logger).Warn("notification failed",
			logging.String("notification", label),
			logging.Error(err))
	}
}

// RunDaily executes the scheduled content pipeline at its configured volume.
func (o *Orchestrator) RunDaily(ctx context.Context) (*store.PipelineRun, error) {
	return o.runPipeline(ctx, o.cfg.Pipeline.ShortsPerDay, "", "")
}

// RunTest executes a single-idea pipeline with unlisted publishing, used by
// the trigger endpoint and CLI to verify the whole chain end to end.
func (o *Orchestrator) RunTest(ctx context.Context, topic string) (*store.PipelineRun, error) {
	return o.runPipeline(ctx, 1, topic, "unlisted")
}

func (o *Orchestrator) runPipeline(ctx context.Context, count int, topic, privacy string) (*store.PipelineRun, error) {
	run, err := o.store.CreateRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	o.tracker.track(run.ID)
	defer o.tracker.forget(run.ID)

	runCtx := services.WithRunID(ctx, run.ID)
	logger := logging.WithContext(runCtx, o.logger)
	logger.Info("pipeline run started",
		logging.Int("count", count),
		logging.Bool("test", privacy != ""))
	o.notify(runCtx, "run started", o.notifier.NotifyRunStarted(runCtx, run.ID, count))

	drafts, err := steps.Do(runCtx, o.executor, run.ID, "generate-ideas", func(ctx context.Context) ([]ideas.Draft, error) {
		return o.adapters.Ideas.Generate(ctx, ideas.Request{
			Count:    count,
			Language: o.cfg.Pipeline.Language,
			Topic:    topic,
		})
	})
	if err != nil {
		// Without ideas there is nothing to salvage; the run fails.
		o.recordRunError(runCtx, run.ID, "generate ideas", err)
		if _, finishErr := o.store.FinishRun(runCtx, run.ID, store.RunStatusFailed); finishErr != nil {
			logger.Error("finish failed run", logging.Error(finishErr))
		}
		o.notify(runCtx, "run failed", o.notifier.NotifyRunFailed(runCtx, run.ID, condense(err.Error())))
		return o.store.GetRun(ctx, run.ID)
	}

	if err := o.store.AddRunCounters(runCtx, run.ID, store.CounterDelta{Ideas: len(drafts)}); err != nil {
		logger.Error("count ideas", logging.Error(err))
	}

	dispatched := 0
	for _, draft := range drafts {
		if err := o.dispatchIdea(runCtx, run.ID, draft, privacy); err != nil {
			o.recordRunError(runCtx, run.ID, fmt.Sprintf("idea %q", draft.Title), err)
			continue
		}
		dispatched++
	}

	logger.Info("pipeline dispatch finished",
		logging.Int("ideas", len(drafts)),
		logging.Int("dispatched", dispatched))

	if dispatched > 0 {
		if settled := o.tracker.wait(runCtx, run.ID, o.cfg.SettleWait()); !settled {
			logger.Warn("run closed before all downstream work settled")
		}
	}

	if _, err := o.store.FinishRun(runCtx, run.ID, store.RunStatusCompleted); err != nil {
		logger.Error("finish run", logging.Error(err))
	}

	final, err := o.store.GetRun(ctx, run.ID)
	if err == nil {
		o.notify(runCtx, "run completed", o.notifier.NotifyRunCompleted(runCtx, final))
	}
	return final, err
}

func (o *Orchestrator) dispatchIdea(ctx context.Context, runID string, draft ideas.Draft, privacy string) error {
	idea := &store.Idea{
		Category:  draft.Category,
		Title:     draft.Title,
		Hook:      draft.Hook,
		MainPoint: draft.MainPoint,
		CTA:       draft.CTA,
		Language:  o.cfg.Pipeline.Language,
	}
	if err := o.store.SaveIdea(ctx, idea); err != nil {
		return fmt.Errorf("save idea: %w", err)
	}

	stepID := fmt.Sprintf("generate-script-%s", idea.ID)
	draftScript, err := steps.Do(ctx, o.executor, runID, stepID, func(ctx context.Context) (scripts.Draft, error) {
		return o.adapters.Scripts.Write(ctx, scripts.Input{
			Title:         draft.Title,
			Hook:          draft.Hook,
			MainPoint:     draft.MainPoint,
			CTA:           draft.CTA,
			Language:      o.cfg.Pipeline.Language,
			TargetSeconds: o.cfg.Pipeline.TargetDurationSeconds,
		})
	})
	if err != nil {
		return err
	}

	script := &store.Script{
		IdeaID:           idea.ID,
		Title:            draftScript.Title,
		Body:             draftScript.Body,
		EstimatedSeconds: draftScript.EstimatedSeconds,
	}
	if err := o.store.SaveScript(ctx, script); err != nil {
		return fmt.Errorf("save script: %w", err)
	}
	if err := o.store.MarkIdeaConsumed(ctx, idea.ID); err != nil {
		return fmt.Errorf("mark idea consumed: %w", err)
	}
	if err := o.store.AddRunCounters(ctx, runID, store.CounterDelta{Scripts: 1}); err != nil {
		return fmt.Errorf("count script: %w", err)
	}

	// Register the expectation before emitting; the handler may complete
	// the key before Emit returns.
	o.tracker.expect(runID, "script:"+script.ID)
	err = o.router.Emit(ctx, events.NameVideoGenerate, events.VideoGenerate{
		RunID:    runID,
		ScriptID: script.ID,
		Idea: events.Idea{
			ID:        idea.ID,
			Category:  idea.Category,
			Title:     idea.Title,
			Hook:      idea.Hook,
			MainPoint: idea.MainPoint,
			CTA:       idea.CTA,
		},
		Title:          script.Title,
		Script:         script.Body,
		TargetDuration: script.EstimatedSeconds,
		Language:       o.cfg.Pipeline.Language,
		UploadAfter:    o.cfg.Pipeline.UploadAfter,
		Privacy:        privacy,
	})
	if err != nil {
		o.tracker.complete(runID, "script:"+script.ID)
		return fmt.Errorf("emit video generate: %w", err)
	}
	return nil
}

func (o *Orchestrator) recordRunError(ctx context.Context, runID, detail string, err error) {
	message := fmt.Sprintf("%s: %s", detail, condense(err.Error()))
	logging.WithContext(ctx, o.logger).Warn("pipeline item failed",
		logging.String("detail", detail),
		logging.Error(err))
	if appendErr := o.store.AppendRunError(ctx, runID, message); appendErr != nil {
		logging.WithContext(ctx, o.logger).Error("append run error", logging.Error(appendErr))
	}
}

func condense(message string) string {
	return truncate(strings.Join(strings.Fields(message), " "), 300)
}

// truncate shortens s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
