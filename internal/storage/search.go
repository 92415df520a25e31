package storage

import (
	"time"
)

// RecordSearch records a search query for analytics.
//
// Failures are logged and swallowed: analytics must never fail a search.
func (s *SQLiteStorage) RecordSearch(search SearchRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	query := `
		INSERT INTO search_history (search_id, query_hash, intent, timestamp, results_count)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		search.SearchID,
		search.QueryHash,
		search.Intent,
		search.Timestamp.UTC().Format(timeLayout),
		search.ResultsCount,
	)

	if err != nil {
		s.logger.Warn().Err(err).Str("search_id", search.SearchID).Msg("failed to record search")
	}

	return nil
}

// SearchStats summarizes recorded search history.
type SearchStats struct {
	Total       int
	ZeroResults int
	ByIntent    map[string]int
}

// GetSearchStats aggregates search history recorded since the given time.
func (s *SQLiteStorage) GetSearchStats(since time.Time) (SearchStats, error) {
	stats := SearchStats{ByIntent: map[string]int{}}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return stats, err
	}

	rows, err := s.db.Query(`
		SELECT intent, COUNT(*), SUM(CASE WHEN results_count = 0 THEN 1 ELSE 0 END)
		FROM search_history
		WHERE timestamp >= ?
		GROUP BY intent
	`, since.UTC().Format(timeLayout))
	if err != nil {
		return stats, err
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

// Cleanup removes old search history based on retention policy.
func (s *SQLiteStorage) Cleanup(retention time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || s.db == nil {
		return nil
	}

	cutoff := time.Now().Add(-retention).UTC().Format(timeLayout)

	if _, err := s.db.Exec("DELETE FROM search_history WHERE timestamp < ?", cutoff); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cleanup search_history")
	}

	// Vacuum to reclaim space
	if _, err := s.db.Exec("VACUUM"); err != nil {
		s.logger.Warn().Err(err).Msg("failed to vacuum database")
	}

	return nil
}
