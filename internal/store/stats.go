package store

import (
	"context"
	"fmt"
	"time"
)

// Stats aggregates dashboard counts across all published content.
func (s *Store) Stats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{CategoryMix: make(map[string]int)}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), COALESCE(SUM(views), 0) FROM publish_records",
	).Scan(&stats.TotalVideos, &stats.TotalViews)
	if err != nil {
		return nil, fmt.Errorf("count publishes: %w", err)
	}

	weekAgo := time.Now().UTC().AddDate(0, 0, -7).Format(time.RFC3339Nano)
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM publish_records WHERE published_at >= ?", weekAgo,
	).Scan(&stats.VideosThisWeek)
	if err != nil {
		return nil, fmt.Errorf("count weekly publishes: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT i.category, COUNT(1)
        FROM publish_records p
        JOIN videos v ON v.id = p.video_id
        JOIN scripts sc ON sc.id = v.script_id
        JOIN ideas i ON i.id = sc.idea_id
        GROUP BY i.category`)
	if err != nil {
		return nil, fmt.Errorf("category mix: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan category mix: %w", err)
		}
		stats.CategoryMix[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category mix: %w", err)
	}
	return stats, nil
}
