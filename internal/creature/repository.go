package creature

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"creatures-server/internal/particle"
	"creatures-server/internal/rarity"
	"creatures-server/internal/shared/database"
	"creatures-server/internal/shared/errors"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	logger := slog.With("component", "creature_repository", "operation", "init")
	logger.Debug("Initializing creature repository")
	return &Repository{db: db}
}

// Create inserts the creature and its groups in one transaction.
func (r *Repository) Create(ctx context.Context, c *Creature) error {
	logger := slog.With(
		"component", "creature_repository",
		"operation", "create",
		"owner_id", c.OwnerID,
		"block_height", c.BlockHeight,
	)
	logger.Debug("Creating creature")

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return errors.WrapInternal("failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		INSERT INTO creatures (owner_id, name, block_height, block_hash, seed, total_particles, tier, rarity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRowContext(ctx, query,
		c.OwnerID,
		c.Name,
		c.BlockHeight,
		c.BlockHash,
		c.Seed,
		c.TotalParticles,
		int(c.Tier),
		string(c.Rarity),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		logger.Error("Failed to insert creature", "error", err)
		return errors.WrapInternal("failed to insert creature", err)
	}

	groupQuery := `
		INSERT INTO creature_groups (creature_id, role, particle_count, attribute, attribute_value, rarity, traits)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, g := range c.Groups {
		traitsJSON, err := json.Marshal(g.Traits)
		if err != nil {
			return errors.WrapInternal("failed to encode group traits", err)
		}
		if _, err := tx.ExecContext(ctx, groupQuery,
			c.ID,
			string(g.Role),
			g.Count,
			string(g.Attribute),
			g.Value,
			string(g.Rarity),
			traitsJSON,
		); err != nil {
			logger.Error("Failed to insert creature group", "role", g.Role, "error", err)
			return errors.WrapInternal("failed to insert creature group", err)
		}
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Failed to commit creature creation", "error", err)
		return errors.WrapInternal("failed to commit creature creation", err)
	}

	logger.Info("Creature created", "creature_id", c.ID, "tier", int(c.Tier), "rarity", c.Rarity)
	return nil
}

// GetByID loads a creature with its groups.
func (r *Repository) GetByID(ctx context.Context, id string) (*Creature, error) {
	logger := slog.With(
		"component", "creature_repository",
		"operation", "get_by_id",
		"creature_id", id,
	)
	logger.Debug("Getting creature by ID")

	query := `
		SELECT id, owner_id, name, block_height, block_hash, seed, total_particles, tier, rarity, created_at, updated_at
		FROM creatures
		WHERE id = $1
	`

	var c Creature
	var tier int
	var rarityStr string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.BlockHeight,
		&c.BlockHash,
		&c.Seed,
		&c.TotalParticles,
		&tier,
		&rarityStr,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFoundf("creature not found with id: %s", id)
		}
		logger.Error("Failed to get creature", "error", err)
		return nil, errors.WrapInternal("failed to get creature", err)
	}
	c.Tier = rarity.Tier(tier)
	c.Rarity = rarity.Rarity(rarityStr)

	groups, err := r.getGroups(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Groups = groups

	return &c, nil
}

// ListByOwner loads all of a player's creatures, newest first, without
// their groups.
func (r *Repository) ListByOwner(ctx context.Context, ownerID int) ([]Creature, error) {
	logger := slog.With(
		"component", "creature_repository",
		"operation", "list_by_owner",
		"owner_id", ownerID,
	)
	logger.Debug("Listing creatures by owner")

	query := `
		SELECT id, owner_id, name, block_height, block_hash, seed, total_particles, tier, rarity, created_at, updated_at
		FROM creatures
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		logger.Error("Failed to query creatures", "error", err)
		return nil, errors.WrapInternal("failed to query creatures", err)
	}
	defer rows.Close()

	var creatures []Creature
	for rows.Next() {
		var c Creature
		var tier int
		var rarityStr string
		if err := rows.Scan(
			&c.ID,
			&c.OwnerID,
			&c.Name,
			&c.BlockHeight,
			&c.BlockHash,
			&c.Seed,
			&c.TotalParticles,
			&tier,
			&rarityStr,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			logger.Error("Failed to scan creature row", "error", err)
			return nil, errors.WrapInternal("failed to scan creature", err)
		}
		c.Tier = rarity.Tier(tier)
		c.Rarity = rarity.Rarity(rarityStr)
		creatures = append(creatures, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapInternal("error iterating creatures", err)
	}

	logger.Debug("Creatures listed", "count", len(creatures))
	return creatures, nil
}

// UpdateGroupValues persists evolved attribute values.
func (r *Repository) UpdateGroupValues(ctx context.Context, creatureID string, groups []Group) error {
	logger := slog.With(
		"component", "creature_repository",
		"operation", "update_group_values",
		"creature_id", creatureID,
	)
	logger.Debug("Updating creature group values")

	tx, err := r.db.BeginTxContext(ctx)
	if err != nil {
		return errors.WrapInternal("failed to begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
		UPDATE creature_groups
		SET attribute_value = $1
		WHERE creature_id = $2 AND role = $3
	`
	for _, g := range groups {
		if _, err := tx.ExecContext(ctx, query, g.Value, creatureID, string(g.Role)); err != nil {
			logger.Error("Failed to update group value", "role", g.Role, "error", err)
			return errors.WrapInternal("failed to update group value", err)
		}
	}

	touch := `UPDATE creatures SET updated_at = NOW() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, touch, creatureID); err != nil {
		return errors.WrapInternal("failed to touch creature", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapInternal("failed to commit group update", err)
	}

	return nil
}

// ExistsByOwnerAndBlock reports whether the owner already generated a
// creature from the given block.
func (r *Repository) ExistsByOwnerAndBlock(ctx context.Context, ownerID int, blockHeight int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM creatures WHERE owner_id = $1 AND block_height = $2)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, ownerID, blockHeight).Scan(&exists)
	if err != nil {
		return false, errors.WrapInternal("failed to check creature existence", err)
	}
	return exists, nil
}

// Delete removes a creature. Groups and history rows follow via ON
// DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id string) error {
	logger := slog.With(
		"component", "creature_repository",
		"operation", "delete",
		"creature_id", id,
	)

	result, err := r.db.ExecContext(ctx, `DELETE FROM creatures WHERE id = $1`, id)
	if err != nil {
		logger.Error("Failed to delete creature", "error", err)
		return errors.WrapInternal("failed to delete creature", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return errors.NotFoundf("creature not found with id: %s", id)
	}

	logger.Info("Creature deleted")
	return nil
}

// Count returns the total number of creatures, for the status endpoint.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM creatures`).Scan(&count)
	if err != nil {
		return 0, errors.WrapInternal("failed to count creatures", err)
	}
	return count, nil
}

func (r *Repository) getGroups(ctx context.Context, creatureID string) ([]Group, error) {
	query := `
		SELECT role, particle_count, attribute, attribute_value, rarity, traits
		FROM creature_groups
		WHERE creature_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, creatureID)
	if err != nil {
		return nil, errors.WrapInternal("failed to query creature groups", err)
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		var g Group
		var role, attribute, rarityStr string
		var traitsJSON []byte
		if err := rows.Scan(&role, &g.Count, &attribute, &g.Value, &rarityStr, &traitsJSON); err != nil {
			return nil, errors.WrapInternal("failed to scan creature group", err)
		}
		g.Role = particle.Role(role)
		g.Attribute = particle.Attribute(attribute)
		g.Rarity = rarity.Rarity(rarityStr)
		if len(traitsJSON) > 0 {
			if err := json.Unmarshal(traitsJSON, &g.Traits); err != nil {
				return nil, errors.WrapInternal("failed to decode group traits", err)
			}
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.WrapInternal("error iterating creature groups", err)
	}

	return groups, nil
}
