package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/khanglvm/workflow-hub/internal/storage"
)

// RecordSearch records a search query for analytics. Failures are logged only.
func (s *Store) RecordSearch(search storage.SearchRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := s.db.Exec(ctx, `
		INSERT INTO search_history (search_id, query_hash, intent, timestamp, results_count)
		VALUES ($1, $2, $3, $4, $5)`,
		search.SearchID,
		search.QueryHash,
		search.Intent,
		search.Timestamp,
		search.ResultsCount,
	)
	if err != nil {
		s.logger.Warn().Err(err).Str("search_id", search.SearchID).Msg("failed to record search")
	}
	return nil
}

// Cleanup removes search history older than retention.
func (s *Store) Cleanup(retention time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tag, err := s.db.Exec(ctx, `DELETE FROM search_history WHERE timestamp < $1`, time.Now().Add(-retention))
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to cleanup search_history")
		return nil
	}
	s.logger.Info().Int64("deleted", tag.RowsAffected()).Msg("search history cleaned up")
	return nil
}

// GetSearchStats aggregates search history recorded since the given time.
func (s *Store) GetSearchStats(since time.Time) (storage.SearchStats, error) {
	stats := storage.SearchStats{ByIntent: map[string]int{}}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, `
		SELECT intent, COUNT(*), COUNT(*) FILTER (WHERE results_count = 0)
		FROM search_history
		WHERE timestamp >= $1
		GROUP BY intent`, since)
	if err != nil {
		return stats, fmt.Errorf("failed to query search stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			intent      string
			count, zero int
		)
		if err := rows.Scan(&intent, &count, &zero); err != nil {
			return stats, err
		}
		stats.ByIntent[intent] = count
		stats.Total += count
		stats.ZeroResults += zero
	}
	return stats, rows.Err()
}
