// Package planlist реализует HTTP-обработчик каталога тарифов.
package planlist

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mwalimuclement/theory-access/internal/http/response"
	"github.com/mwalimuclement/theory-access/internal/plans"
)

// Handler отдаёт статический каталог тарифов.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Список тарифов
// @Description Возвращает каталог тарифов с ценами и длительностью доступа.
// @Tags Plans
// @Produce  json
// @Success 200 {object} response.Response "Каталог тарифов"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, response.StatusOKWithData(plans.Catalog))
}
