// Package initiate реализует HTTP-обработчик создания платежа.
//
// Запрос проверяется и валидируется, платёж создаётся в статусе pending,
// ответ возвращается сразу, не дожидаясь исхода у провайдера.
package initiate

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
	"github.com/mwalimuclement/theory-access/internal/services/payment"
)

// Request — структура входных данных для создания платежа.
type Request struct {
	Phone            string `json:"phone" validate:"required"`
	SubscriptionType string `json:"subscription_type" validate:"required,oneof=single daily weekly monthly"`
	PaymentMethod    string `json:"payment_method" validate:"required,oneof=MTN AIRTEL"`
}

// Service описывает интерфейс бизнес-логики платежей.
type Service interface {
	Initiate(ctx context.Context, rawPhone string, planType models.PlanType, method models.PaymentMethod) (*models.Payment, error)
}

// Handler обрабатывает HTTP-запросы на создание платежа.
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
// @Summary Создать платёж
// @Description Создает платёж mobile money за выбранный тариф. Платёж урегулируется асинхронно, статус нужно опрашивать отдельно.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные для создания платежа"
// @Success 202 {object} response.Response "Платёж создан в статусе pending"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или номер телефона"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /payments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.initiate"

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
	log.Info("request body decoded", slog.String("plan", req.SubscriptionType))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	p, err := h.service.Initiate(r.Context(),
		req.Phone,
		models.PlanType(req.SubscriptionType),
		models.PaymentMethod(req.PaymentMethod))
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrInvalidPhone),
			errors.Is(err, payment.ErrInvalidPlan),
			errors.Is(err, payment.ErrInvalidPaymentMethod):
			log.Error("invalid payment request", sl.Err(err))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error(err.Error()))
		default:
			log.Error("failed to initiate payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("payment initiated", slog.String("payment_id", p.ID))
	w.WriteHeader(http.StatusAccepted)
	render.JSON(w, r, response.StatusOKWithData(p))
}
