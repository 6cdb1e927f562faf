// Package health реализует HTTP-обработчик проверки живости сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mwalimuclement/theory-access/internal/http/response"
	"github.com/mwalimuclement/theory-access/internal/lib/sl"
)

// Checker проверяет готовность хранилища отвечать на запросы.
type Checker interface {
	Ready(ctx context.Context) error
}

// Handler обрабатывает HTTP-запросы проверки здоровья. db может быть
// nil, тогда проверяется только сам процесс.
type Handler struct {
	log *slog.Logger
	db  Checker
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, db Checker) *Handler {
	return &Handler{
		log: log,
		db:  db,
	}
}

// ServeHTTP godoc
// @Summary Проверить здоровье сервиса
// @Description Возвращает ok, когда процесс жив и хранилище доступно.
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response "Сервис работает"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if h.db != nil {
		if err := h.db.Ready(r.Context()); err != nil {
			h.log.Error("storage is not ready", slog.String("op", op), sl.Err(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("storage unavailable"))
			return
		}
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
