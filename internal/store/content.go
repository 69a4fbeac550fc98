package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrVideoNotFound is returned when a video id does not exist.
	ErrVideoNotFound = errors.New("video not found")
	// ErrPublishNotFound is returned when a publish record id does not exist.
	ErrPublishNotFound = errors.New("publish record not found")
)

// SaveIdea persists a generated idea. A missing id is filled in.
func (s *Store) SaveIdea(ctx context.Context, idea *Idea) error {
	if idea.ID == "" {
		idea.ID = uuid.NewString()
	}
	if idea.Status == "" {
		idea.Status = IdeaStatusPending
	}
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO ideas (id, category, title, hook, main_point, cta, language, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		idea.ID,
		idea.Category,
		idea.Title,
		idea.Hook,
		idea.MainPoint,
		idea.CTA,
		idea.Language,
		idea.Status,
		idea.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert idea: %w", err)
	}
	return nil
}

// MarkIdeaConsumed flips an idea to consumed once a script has been written for it.
func (s *Store) MarkIdeaConsumed(ctx context.Context, ideaID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE ideas SET status = ? WHERE id = ?",
		IdeaStatusConsumed, ideaID,
	)
	if err != nil {
		return fmt.Errorf("mark idea consumed: %w", err)
	}
	return nil
}

// SaveScript persists a generated script. A missing id is filled in.
func (s *Store) SaveScript(ctx context.Context, script *Script) error {
	if script.ID == "" {
		script.ID = uuid.NewString()
	}
	if script.Status == "" {
		script.Status = ScriptStatusPending
	}
	if script.CreatedAt.IsZero() {
		script.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO scripts (id, idea_id, title, body, estimated_seconds, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		script.ID,
		nullableString(script.IdeaID),
		script.Title,
		script.Body,
		script.EstimatedSeconds,
		script.Status,
		script.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert script: %w", err)
	}
	return nil
}

// MarkScriptRendered flips a script to rendered once a video exists for it.
func (s *Store) MarkScriptRendered(ctx context.Context, scriptID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE scripts SET status = ? WHERE id = ?",
		ScriptStatusRendered, scriptID,
	)
	if err != nil {
		return fmt.Errorf("mark script rendered: %w", err)
	}
	return nil
}

// GetScript loads a single script.
func (s *Store) GetScript(ctx context.Context, id string) (*Script, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, idea_id, title, body, estimated_seconds, status, created_at
        FROM scripts WHERE id = ?`, id)

	var (
		script    Script
		ideaID    sql.NullString
		statusRaw string
		createdAt string
	)
	err := row.Scan(&script.ID, &ideaID, &script.Title, &script.Body,
		&script.EstimatedSeconds, &statusRaw, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("script not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get script: %w", err)
	}

	script.IdeaID = ideaID.String
	script.Status = ScriptStatus(statusRaw)
	if t, err := parseTimeString(createdAt); err == nil {
		script.CreatedAt = t
	}
	return &script, nil
}

// CreateVideo records a video entering synthesis.
func (s *Store) CreateVideo(ctx context.Context, video *Video) error {
	if video.ID == "" {
		video.ID = uuid.NewString()
	}
	if video.Status == "" {
		video.Status = VideoStatusProcessing
	}
	if video.CreatedAt.IsZero() {
		video.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO videos (id, run_id, script_id, title, video_url, audio_url, duration_seconds, status, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID,
		nullableString(video.RunID),
		video.ScriptID,
		video.Title,
		nullableString(video.VideoURL),
		nullableString(video.AudioURL),
		video.DurationSeconds,
		video.Status,
		video.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

// MarkVideoReady stamps the final asset URL and duration on a video.
func (s *Store) MarkVideoReady(ctx context.Context, videoID, videoURL string, durationSeconds float64) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE videos SET status = ?, video_url = ?, duration_seconds = ?
        WHERE id = ?`,
		VideoStatusReady, videoURL, durationSeconds, videoID,
	)
	if err != nil {
		return fmt.Errorf("mark video ready: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark video ready rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrVideoNotFound, videoID)
	}
	return nil
}

// GetVideo loads a single video.
func (s *Store) GetVideo(ctx context.Context, id string) (*Video, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, run_id, script_id, title, video_url, audio_url, duration_seconds, status, created_at
        FROM videos WHERE id = ?`, id)

	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrVideoNotFound, id)
	}
	return video, err
}

// ListVideos returns videos newest first. A limit of zero or less means no limit.
func (s *Store) ListVideos(ctx context.Context, limit int) ([]*Video, error) {
	query := `
        SELECT id, run_id, script_id, title, video_url, audio_url, duration_seconds, status, created_at
        FROM videos ORDER BY created_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	var videos []*Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}
	return videos, nil
}

// CountVideosForRun returns the number of video rows owned by a run.
func (s *Store) CountVideosForRun(ctx context.Context, runID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM videos WHERE run_id = ?", runID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count videos for run: %w", err)
	}
	return count, nil
}

// CountPublishesForRun returns the number of publish rows owned by a run.
func (s *Store) CountPublishesForRun(ctx context.Context, runID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM publish_records WHERE run_id = ?", runID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count publishes for run: %w", err)
	}
	return count, nil
}

// CreatePublishRecord records a completed platform upload.
func (s *Store) CreatePublishRecord(ctx context.Context, record *PublishRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.PublishedAt.IsZero() {
		record.PublishedAt = time.Now().UTC()
	}

	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshal publish tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO publish_records (
            id, run_id, video_id, platform_id, platform_url,
            title, description, tags, published_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		nullableString(record.RunID),
		record.VideoID,
		record.PlatformID,
		record.PlatformURL,
		record.Title,
		record.Description,
		string(tagsJSON),
		record.PublishedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert publish record: %w", err)
	}
	return nil
}

// ListPublishRecords returns publish records newest first.
// A limit of zero or less means no limit.
func (s *Store) ListPublishRecords(ctx context.Context, limit int) ([]*PublishRecord, error) {
	query := `
        SELECT id, run_id, video_id, platform_id, platform_url,
               title, description, tags, views, likes, comments, published_at
        FROM publish_records ORDER BY published_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list publish records: %w", err)
	}
	defer rows.Close()

	var records []*PublishRecord
	for rows.Next() {
		record, err := scanPublishRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate publish records: %w", err)
	}
	return records, nil
}

// UpdateEngagement refreshes view, like, and comment counts on a publish record.
func (s *Store) UpdateEngagement(ctx context.Context, recordID string, views, likes, comments int64) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE publish_records SET views = ?, likes = ?, comments = ? WHERE id = ?",
		views, likes, comments, recordID,
	)
	if err != nil {
		return fmt.Errorf("update engagement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update engagement rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrPublishNotFound, recordID)
	}
	return nil
}

func scanVideo(scanner interface{ Scan(dest ...any) error }) (*Video, error) {
	var (
		video     Video
		runID     sql.NullString
		videoURL  sql.NullString
		audioURL  sql.NullString
		duration  sql.NullFloat64
		statusRaw string
		createdAt string
	)

	err := scanner.Scan(
		&video.ID,
		&runID,
		&video.ScriptID,
		&video.Title,
		&videoURL,
		&audioURL,
		&duration,
		&statusRaw,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	video.RunID = runID.String
	video.VideoURL = videoURL.String
	video.AudioURL = audioURL.String
	video.DurationSeconds = duration.Float64
	video.Status = VideoStatus(statusRaw)
	if t, err := parseTimeString(createdAt); err == nil {
		video.CreatedAt = t
	}
	return &video, nil
}

func scanPublishRecord(scanner interface{ Scan(dest ...any) error }) (*PublishRecord, error) {
	var (
		record      PublishRecord
		runID       sql.NullString
		tagsJSON    string
		publishedAt string
	)

	err := scanner.Scan(
		&record.ID,
		&runID,
		&record.VideoID,
		&record.PlatformID,
		&record.PlatformURL,
		&record.Title,
		&record.Description,
		&tagsJSON,
		&record.Views,
		&record.Likes,
		&record.Comments,
		&publishedAt,
	)
	if err != nil {
		return nil, err
	}

	record.RunID = runID.String
	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &record.Tags); err != nil {
			return nil, fmt.Errorf("unmarshal publish tags: %w", err)
		}
	}
	if t, err := parseTimeString(publishedAt); err == nil {
		record.PublishedAt = t
	}
	return &record, nil
}
