package evolution

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"creatures-server/internal/shared/database"
)

// Repository is the postgres-backed History. One row per entry,
// insert-only; the evolution_history table has no update path.
type Repository struct {
	db *database.DB
}

// NewRepository builds the postgres history log.
func NewRepository(db *database.DB) *Repository {
	logger := slog.With("component", "evolution_repository", "operation", "init")
	logger.Debug("Initializing evolution history repository")
	return &Repository{db: db}
}

// Entries loads a creature's history in append order.
func (r *Repository) Entries(ctx context.Context, creatureID string) ([]Entry, error) {
	logger := slog.With(
		"component", "evolution_repository",
		"operation", "entries",
		"creature_id", creatureID,
	)
	logger.Debug("Loading evolution history")

	query := `
		SELECT creature_id, block_number, confirmations, milestone, mutations, is_guaranteed, created_at
		FROM evolution_history
		WHERE creature_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, creatureID)
	if err != nil {
		logger.Error("Failed to query evolution history", "error", err)
		return nil, fmt.Errorf("failed to query evolution history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var mutationsJSON []byte
		if err := rows.Scan(
			&entry.CreatureID,
			&entry.BlockNumber,
			&entry.Confirmations,
			&entry.Milestone,
			&mutationsJSON,
			&entry.Guaranteed,
			&entry.Timestamp,
		); err != nil {
			logger.Error("Failed to scan evolution entry", "error", err)
			return nil, fmt.Errorf("failed to scan evolution entry: %w", err)
		}
		if len(mutationsJSON) > 0 {
			if err := json.Unmarshal(mutationsJSON, &entry.Mutations); err != nil {
				logger.Error("Failed to decode stored mutations", "error", err)
				return nil, fmt.Errorf("failed to decode stored mutations: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		logger.Error("Row iteration error", "error", err)
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	logger.Debug("Evolution history loaded", "entry_count", len(entries))
	return entries, nil
}

// Append inserts one immutable entry.
func (r *Repository) Append(ctx context.Context, entry Entry) error {
	logger := slog.With(
		"component", "evolution_repository",
		"operation", "append",
		"creature_id", entry.CreatureID,
		"block_number", entry.BlockNumber,
	)
	logger.Debug("Appending evolution entry")

	mutationsJSON, err := json.Marshal(entry.Mutations)
	if err != nil {
		return fmt.Errorf("failed to encode mutations: %w", err)
	}

	query := `
		INSERT INTO evolution_history (creature_id, block_number, confirmations, milestone, mutations, is_guaranteed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if _, err := r.db.ExecContext(ctx, query,
		entry.CreatureID,
		entry.BlockNumber,
		entry.Confirmations,
		entry.Milestone,
		mutationsJSON,
		entry.Guaranteed,
		entry.Timestamp,
	); err != nil {
		logger.Error("Failed to insert evolution entry", "error", err)
		return fmt.Errorf("failed to insert evolution entry: %w", err)
	}

	logger.Info("Evolution entry appended",
		"mutation_count", len(entry.Mutations),
		"milestone", entry.Milestone,
		"guaranteed", entry.Guaranteed,
	)
	return nil
}

// CountEvents returns the total number of recorded evolution events.
func (r *Repository) CountEvents(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evolution_history`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count evolution events: %w", err)
	}
	return count, nil
}
