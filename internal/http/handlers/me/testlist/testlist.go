// Package testlist реализует HTTP-обработчик истории попыток теста
// текущего пользователя.
package testlist

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/mwalimuclement/theory-access/internal/http/middlewarectx"
	"github.com/mwalimuclement/theory-access/internal/http/response"
	"github.com/mwalimuclement/theory-access/internal/lib/sl"
	"github.com/mwalimuclement/theory-access/internal/models"
)

// Service описывает интерфейс чтения истории попыток.
type Service interface {
	History(ctx context.Context, userID string) ([]*models.TestSession, error)
}

// Handler обрабатывает HTTP-запросы истории попыток.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История попыток теста
// @Description Возвращает попытки теста текущего пользователя, свежие первыми.
// @Tags Me
// @Produce  json
// @Success 200 {object} response.Response "Список попыток"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /me/tests [get]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.me.testlist"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := r.Context().Value(middlewarectx.UserID).(string)
	if !ok || userID == "" {
		log.Error("user id not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	history, err := h.service.History(r.Context(), userID)
	if err != nil {
		log.Error("failed to list test sessions", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("test sessions listed", slog.Int("count", len(history)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"list_count": len(history),
		"tests":      history,
	}))
}
