package store_test

import (
	"context"
	"testing"

	"reelcast/internal/store"
	"reelcast/internal/testsupport"
)

func seedContent(t *testing.T, st *store.Store, runID string) (*store.Idea, *store.Script, *store.Video) {
	t.Helper()
	ctx := context.Background()

	idea := &store.Idea{
		Category:  "productivity",
		Title:     "Two-minute rule",
		Hook:      "You are wasting your mornings.",
		MainPoint: "Start any habit with a two minute version.",
		CTA:       "Follow for more",
		Language:  "en",
	}
	if err := st.SaveIdea(ctx, idea); err != nil {
		t.Fatalf("SaveIdea: %v", err)
	}

	script := &store.Script{
		IdeaID:           idea.ID,
		Title:            idea.Title,
		Body:             "Here is the thing about habits...",
		EstimatedSeconds: 42,
	}
	if err := st.SaveScript(ctx, script); err != nil {
		t.Fatalf("SaveScript: %v", err)
	}

	video := &store.Video{
		RunID:    runID,
		ScriptID: script.ID,
		Title:    script.Title,
	}
	if err := st.CreateVideo(ctx, video); err != nil {
		t.Fatalf("CreateVideo: %v", err)
	}
	return idea, script, video
}

func TestContentLifecycle(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	run := testsupport.NewRun(t, st)

	idea, script, video := seedContent(t, st, run.ID)

	if err := st.MarkIdeaConsumed(ctx, idea.ID); err != nil {
		t.Fatalf("MarkIdeaConsumed: %v", err)
	}
	if err := st.MarkScriptRendered(ctx, script.ID); err != nil {
		t.Fatalf("MarkScriptRendered: %v", err)
	}
	if err := st.MarkVideoReady(ctx, video.ID, "https://cdn.example.com/v1.mp4", 47.5); err != nil {
		t.Fatalf("MarkVideoReady: %v", err)
	}

	gotScript, err := st.GetScript(ctx, script.ID)
	if err != nil {
		t.Fatalf("GetScript: %v", err)
	}
	if gotScript.Status != store.ScriptStatusRendered {
		t.Fatalf("script status = %s", gotScript.Status)
	}

	gotVideo, err := st.GetVideo(ctx, video.ID)
	if err != nil {
		t.Fatalf("GetVideo: %v", err)
	}
	if gotVideo.Status != store.VideoStatusReady {
		t.Fatalf("video status = %s", gotVideo.Status)
	}
	if gotVideo.VideoURL != "https://cdn.example.com/v1.mp4" {
		t.Fatalf("video url = %q", gotVideo.VideoURL)
	}
	if gotVideo.DurationSeconds != 47.5 {
		t.Fatalf("video duration = %v", gotVideo.DurationSeconds)
	}
}

func TestMarkVideoReadyUnknownID(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))

	err := st.MarkVideoReady(context.Background(), "nope", "https://example.com/v.mp4", 10)
	if err == nil {
		t.Fatal("expected error for unknown video id")
	}
}

func TestPublishRecordRoundTrip(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	run := testsupport.NewRun(t, st)
	_, _, video := seedContent(t, st, run.ID)

	record := &store.PublishRecord{
		RunID:       run.ID,
		VideoID:     video.ID,
		PlatformID:  "yt-abc123",
		PlatformURL: "https://youtube.com/shorts/yt-abc123",
		Title:       "Two-minute rule #shorts",
		Description: "Start small.",
		Tags:        []string{"shorts", "productivity"},
	}
	if err := st.CreatePublishRecord(ctx, record); err != nil {
		t.Fatalf("CreatePublishRecord: %v", err)
	}

	records, err := st.ListPublishRecords(ctx, 10)
	if err != nil {
		t.Fatalf("ListPublishRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.PlatformID != "yt-abc123" {
		t.Fatalf("platform id = %q", got.PlatformID)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "shorts" {
		t.Fatalf("tags = %v", got.Tags)
	}
	if got.Views != 0 || got.Likes != 0 || got.Comments != 0 {
		t.Fatalf("engagement should start at zero: %+v", got)
	}
}

func TestUpdateEngagement(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	run := testsupport.NewRun(t, st)
	_, _, video := seedContent(t, st, run.ID)

	record := &store.PublishRecord{
		RunID:       run.ID,
		VideoID:     video.ID,
		PlatformID:  "yt-xyz",
		PlatformURL: "https://youtube.com/shorts/yt-xyz",
		Title:       video.Title,
	}
	if err := st.CreatePublishRecord(ctx, record); err != nil {
		t.Fatalf("CreatePublishRecord: %v", err)
	}

	if err := st.UpdateEngagement(ctx, record.ID, 1500, 120, 14); err != nil {
		t.Fatalf("UpdateEngagement: %v", err)
	}

	records, err := st.ListPublishRecords(ctx, 1)
	if err != nil {
		t.Fatalf("ListPublishRecords: %v", err)
	}
	if records[0].Views != 1500 || records[0].Likes != 120 || records[0].Comments != 14 {
		t.Fatalf("engagement not updated: %+v", records[0])
	}

	if err := st.UpdateEngagement(ctx, "missing", 1, 1, 1); err == nil {
		t.Fatal("expected error for unknown record id")
	}
}

func TestStatsAggregates(t *testing.T) {
	st := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	run := testsupport.NewRun(t, st)
	_, _, video := seedContent(t, st, run.ID)

	record := &store.PublishRecord{
		RunID:       run.ID,
		VideoID:     video.ID,
		PlatformID:  "yt-stat",
		PlatformURL: "https://youtube.com/shorts/yt-stat",
		Title:       video.Title,
	}
	if err := st.CreatePublishRecord(ctx, record); err != nil {
		t.Fatalf("CreatePublishRecord: %v", err)
	}
	if err := st.UpdateEngagement(ctx, record.ID, 300, 20, 2); err != nil {
		t.Fatalf("UpdateEngagement: %v", err)
	}

	stats, err := st.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalVideos != 1 {
		t.Fatalf("total videos = %d", stats.TotalVideos)
	}
	if stats.TotalViews != 300 {
		t.Fatalf("total views = %d", stats.TotalViews)
	}
	if stats.VideosThisWeek != 1 {
		t.Fatalf("videos this week = %d", stats.VideosThisWeek)
	}
	if stats.CategoryMix["productivity"] != 1 {
		t.Fatalf("category mix = %v", stats.CategoryMix)
	}
}
