// Package login реализует HTTP-обработчик входа по коду доступа.
//
// Код гасится при первом успешном входе. Причина отказа клиенту не
// раскрывается: неизвестный, использованный и просроченный код дают
// одинаковый ответ.
package login

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/mwalimuclement/theory-access/internal/http/response"
	"github.com/mwalimuclement/theory-access/internal/lib/sl"
	"github.com/mwalimuclement/theory-access/internal/models"
	"github.com/mwalimuclement/theory-access/internal/services/access"
)

// Request — структура входных данных для входа по коду.
type Request struct {
	AccessCode string `json:"access_code" validate:"required,min=8"`
}

// Service описывает интерфейс бизнес-логики входа.
type Service interface {
	LoginWithCode(ctx context.Context, rawCode string) (*models.User, string, error)
}

// Handler обрабатывает HTTP-запросы входа по коду доступа.
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
// @Summary Вход по коду доступа
// @Description Гасит одноразовый код доступа и возвращает токен сессии. Сессия живёт до конца окна кода.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Код доступа"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Код не принят"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

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

	user, token, err := h.service.LoginWithCode(r.Context(), req.AccessCode)
	if err != nil {
		if errors.Is(err, access.ErrAuthenticationFailed) {
			log.Info("access code rejected")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("authentication failed"))
			return
		}
		log.Error("login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("login success", slog.String("user_id", user.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
		"user":  user,
	}))
}
