package main

import (
	"reelcast/internal/config"
	"reelcast/internal/services/ideas"
	"reelcast/internal/services/render"
	"reelcast/internal/services/scripts"
	"reelcast/internal/services/tts"
	"reelcast/internal/services/videogen"
	"reelcast/internal/services/youtube"
	"reelcast/internal/workflow"
)

// buildAdapters wires the production service clients into the workflow.
func buildAdapters(cfg *config.Config) workflow.Adapters {
	return workflow.Adapters{
		Ideas:    ideas.NewGenerator(cfg.Ideas),
		Scripts:  scripts.NewWriter(cfg.Scripts),
		Speech:   tts.NewClient(cfg.TTS),
		Video:    videogen.NewClient(cfg.VideoGen),
		Renderer: render.NewClient(cfg.Render),
		Publish:  youtube.NewPublisher(cfg.YouTube),
	}
}
