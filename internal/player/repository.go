package player

import (
	"context"
	"database/sql"
	"log/slog"

	"creatures-server/internal/shared/database"
	"creatures-server/internal/shared/errors"
)

type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	logger := slog.With("component", "player_repository", "operation", "init")
	logger.Debug("Initializing player repository")
	return &Repository{db: db}
}

func (r *Repository) GetPlayerCount(ctx context.Context) (int, error) {
	logger := slog.With("component", "player_repository", "operation", "get_count")
	logger.Debug("Getting total player count")

	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM players").Scan(&count)
	if err != nil {
		logger.Error("Failed to get player count", "error", err)
		return 0, errors.WrapInternal("failed to get player count", err)
	}

	logger.Debug("Player count retrieved", "count", count)
	return count, nil
}

func (r *Repository) GetAllPlayers(ctx context.Context) ([]Player, error) {
	logger := slog.With("component", "player_repository", "operation", "get_all")
	logger.Debug("Retrieving all players")

	query := `
		SELECT id, username, email, display_name, avatar_url, role, created_at, updated_at
		FROM players
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		logger.Error("Failed to query players", "error", err)
		return nil, errors.WrapInternal("failed to query players", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var player Player
		var role string
		err := rows.Scan(
			&player.ID,
			&player.Username,
			&player.Email,
			&player.DisplayName,
			&player.AvatarURL,
			&role,
			&player.CreatedAt,
			&player.UpdatedAt,
		)
		if err != nil {
			logger.Error("Failed to scan player row", "error", err)
			return nil, errors.WrapInternal("failed to scan player", err)
		}
		player.Role = ParsePlayerRole(role)
		players = append(players, player)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Error during rows iteration", "error", err)
		return nil, errors.WrapInternal("error iterating players", err)
	}

	logger.Debug("Players retrieved successfully", "count", len(players))
	return players, nil
}

func (r *Repository) CreatePlayer(ctx context.Context, username, email, displayName string, avatarURL *string) (*Player, error) {
	logger := slog.With(
		"component", "player_repository",
		"operation", "create",
		"username", username,
		"email", email,
	)
	logger.Info("Creating new player")

	query := `
		INSERT INTO players (username, email, display_name, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING id, username, email, display_name, avatar_url, role, created_at, updated_at
	`

	player, err := r.scanPlayer(r.db.QueryRowContext(ctx, query, username, email, displayName, avatarURL))
	if err != nil {
		logger.Error("Failed to create player", "error", err)
		return nil, errors.WrapInternal("failed to create player", err)
	}

	logger.Info("Player created successfully", "player_id", player.ID, "username", player.Username)
	return player, nil
}

func (r *Repository) FindPlayerByEmail(ctx context.Context, email string) (*Player, error) {
	logger := slog.With(
		"component", "player_repository",
		"operation", "find_by_email",
		"email", email,
	)
	logger.Debug("Finding player by email")

	query := `
		SELECT id, username, email, display_name, avatar_url, role, created_at, updated_at
		FROM players
		WHERE email = $1
	`

	player, err := r.scanPlayer(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No player found with email")
			return nil, errors.NotFoundf("player not found with email: %s", email)
		}
		logger.Error("Database error finding player by email", "error", err)
		return nil, errors.WrapInternal("failed to find player by email", err)
	}

	logger.Debug("Found player by email", "player_id", player.ID)
	return player, nil
}

func (r *Repository) GetPlayerByID(ctx context.Context, id int) (*Player, error) {
	logger := slog.With(
		"component", "player_repository",
		"operation", "get_by_id",
		"player_id", id,
	)
	logger.Debug("Getting player by ID")

	query := `
		SELECT id, username, email, display_name, avatar_url, role, created_at, updated_at
		FROM players
		WHERE id = $1
	`

	player, err := r.scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			logger.Debug("No player found with ID")
			return nil, errors.NotFoundf("player not found with id: %d", id)
		}
		logger.Error("Database error getting player by ID", "error", err)
		return nil, errors.WrapInternal("failed to get player by id", err)
	}

	logger.Debug("Found player by ID", "username", player.Username)
	return player, nil
}

func (r *Repository) UpdatePlayerRole(ctx context.Context, playerID int, role PlayerRole) error {
	logger := slog.With(
		"component", "player_repository",
		"operation", "update_role",
		"player_id", playerID,
		"role", role,
	)
	logger.Info("Updating player role")

	query := `UPDATE players SET role = $1, updated_at = NOW() WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, role.String(), playerID)
	if err != nil {
		logger.Error("Failed to update player role", "error", err)
		return errors.WrapInternal("failed to update player role", err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return errors.NotFoundf("player not found with id: %d", playerID)
	}

	return nil
}

func (r *Repository) scanPlayer(row *sql.Row) (*Player, error) {
	var player Player
	var role string
	err := row.Scan(
		&player.ID,
		&player.Username,
		&player.Email,
		&player.DisplayName,
		&player.AvatarURL,
		&role,
		&player.CreatedAt,
		&player.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	player.Role = ParsePlayerRole(role)
	return &player, nil
}
