package middleware

import (
	"log/slog"
	"net/http"

	"creatures-server/internal/shared/database"
	"creatures-server/internal/shared/errors"
	"creatures-server/internal/shared/response"
)

type OwnershipMiddleware struct {
	db *database.DB
}

func NewOwnershipMiddleware(db *database.DB) *OwnershipMiddleware {
	return &OwnershipMiddleware{db: db}
}

// Require gates a creature route on ownership of the creature named by
// the {id} path value. Admins pass regardless of owner.
func (m *OwnershipMiddleware) Require(next http.Handler) http.Handler {
	return JWTMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "ownership",
			"method", r.Method,
			"path", r.URL.Path,
		)

		claims := GetUserFromContext(r)
		if claims == nil {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		if claims.Role == "admin" {
			next.ServeHTTP(w, r)
			return
		}

		creatureID := r.PathValue("id")
		if creatureID == "" {
			response.Error(w, r, logger, errors.Validation("creature ID is required"))
			return
		}

		var ownerID int
		err := m.db.QueryRowContext(r.Context(),
			`SELECT owner_id FROM creatures WHERE id = $1`, creatureID,
		).Scan(&ownerID)
		if err != nil {
			response.Error(w, r, logger, errors.NotFoundf("creature not found with id: %s", creatureID))
			return
		}

		if ownerID != claims.PlayerID {
			logger.Warn("Player attempted to access creature they do not own",
				"player_id", claims.PlayerID,
				"creature_id", creatureID,
				"owner_id", ownerID)
			response.Error(w, r, logger, errors.Forbidden("creature access required"))
			return
		}

		next.ServeHTTP(w, r)
	}))
}
