// Package finish реализует HTTP-обработчик завершения попытки теста.
// Чужая попытка неотличима от несуществующей.
package finish

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/mwalimuclement/theory-access/internal/http/middlewarectx"
	"github.com/mwalimuclement/theory-access/internal/http/response"
	"github.com/mwalimuclement/theory-access/internal/lib/sl"
	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/storage"
)

// Request — структура входных данных для завершения попытки.
type Request struct {
	Score          int `json:"score" validate:"min=0,max=100"`
	TotalQuestions int `json:"total_questions" validate:"required,min=1"`
	CorrectAnswers int `json:"correct_answers" validate:"min=0"`
}

// Service описывает интерфейс бизнес-логики попыток теста.
type Service interface {
	Finish(ctx context.Context, userID, sessionID string, score, totalQuestions, correctAnswers int) (*models.TestSession, error)
}

// Handler обрабатывает HTTP-запросы завершения попытки.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Завершить попытку теста
// @Description Сохраняет результат попытки теста текущего пользователя.
// @Tags Tests
// @Accept  json
// @Produce  json
// @Param id path string true "Идентификатор попытки"
// @Param request body Request true "Результат попытки"
// @Success 200 {object} response.Response "Результат сохранён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Попытка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /tests/{id} [put]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.testsession.finish"

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

	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("session id is required"))
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	session, err := h.service.Finish(r.Context(), userID, sessionID,
		req.Score, req.TotalQuestions, req.CorrectAnswers)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("test session not found", slog.String("session_id", sessionID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("test session not found"))
			return
		}
		log.Error("failed to finish test session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("test session finished", slog.String("session_id", session.ID))
	render.JSON(w, r, response.StatusOKWithData(session))
}
