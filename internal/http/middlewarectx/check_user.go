package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/mwalimuclement/theory-access/internal/http/response"
	"github.com/mwalimuclement/theory-access/internal/lib/sl"
	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/services/access"
)

// UserProvider определяет чтение пользователя по идентификатору.
type UserProvider interface {
	Profile(ctx context.Context, userID string) (*models.User, error)
}

// AccessWindowMiddleware создает middleware, который проверяет, что окно
// доступа пользователя ещё открыто. Просроченное окно даёт 403.
func AccessWindowMiddleware(log *slog.Logger, users UserProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := r.Context().Value(UserID).(string)
			if !ok || userID == "" {
				log.Error("user identification missing")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("user identification missing"))
				return
			}

			user, err := users.Profile(r.Context(), userID)
			if err != nil {
				log.Error("failed to get user", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal service error"))
				return
			}

			if !access.CheckUserAccess(user, time.Now()) {
				log.Info("access window expired, access denied")
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("access expired, access denied"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
