package get_day_appointments

import (
	"errors"
	"net/http"
	"time"

	"github.com/simaclinic/booking-service/internal/api/handlers"
	"github.com/simaclinic/booking-service/internal/api/middleware"
	"github.com/simaclinic/booking-service/internal/domain"
	appointmentsService "github.com/simaclinic/booking-service/internal/service/appointments"
)

const (
	msgMissingDate = "дата обязательна"
	msgInvalidDate = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgStaffOnly   = "операция доступна только персоналу"
)

type Handler struct {
	service AppointmentsService
	logger  Logger
}

func NewHandler(service AppointmentsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments/day
// Query params: date (required, YYYY-MM-DD) - дневная сетка ресепшена
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	date, err := time.Parse(domain.DateFormat, dateStr)
	if err != nil {
		h.logger.Warn("GET /appointments/day - Invalid date %q: %v", dateStr, err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	actor, ok := middleware.Actor(r.Context(), nil)
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, "требуется аутентификация")
		return
	}

	result, err := h.service.ListForDay(r.Context(), date, actor)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrStaffOnly):
			handlers.RespondForbidden(w, msgStaffOnly)

		default:
			h.logger.Error("GET /appointments/day - Failed for %s: %v", dateStr, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
