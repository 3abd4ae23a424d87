package store

import "fmt"

// ListRuns returns every distinct run id recorded in history, most recent
// first, for the inspector's GET /runs endpoint.
func (s *Store) ListRuns() ([]string, error) {
	rows, err := s.reader.Query(`
		SELECT run_id FROM history
		GROUP BY run_id
		ORDER BY MAX(id) DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: list runs: scan: %w", err)
		}
		runIDs = append(runIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list runs: iterate: %w", err)
	}
	return runIDs, nil
}

// Stats is an aggregate snapshot of the Metadata Store's contents, for the
// inspector's GET /stats endpoint.
type Stats struct {
	Nodes   int64
	Runs    int64
	Entries int64
	Hits    int64
	Misses  int64
}

// Stats computes aggregate counters across the nodes, history, and
// cache_metadata tables.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	if err := s.reader.QueryRow("SELECT COUNT(*) FROM nodes").Scan(&st.Nodes); err != nil {
		return Stats{}, fmt.Errorf("store: stats: nodes: %w", err)
	}
	if err := s.reader.QueryRow("SELECT COUNT(DISTINCT run_id) FROM history").Scan(&st.Runs); err != nil {
		return Stats{}, fmt.Errorf("store: stats: runs: %w", err)
	}
	if err := s.reader.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(hits), 0), COALESCE(SUM(misses), 0) FROM cache_metadata",
	).Scan(&st.Entries, &st.Hits, &st.Misses); err != nil {
		return Stats{}, fmt.Errorf("store: stats: cache_metadata: %w", err)
	}
	return st, nil
}
