package track_appointment

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/simaclinic/booking-service/internal/api/handlers"
	appointmentsService "github.com/simaclinic/booking-service/internal/service/appointments"
)

const (
	msgMissingTrackingCode = "требуется код отслеживания"
	msgAppointmentNotFound = "запись с таким кодом не найдена"
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

// Handle GET /api/v1/appointments/track/{trackingCode}
// Публичный роут: код отслеживания и есть секрет гостя
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["trackingCode"]
	if code == "" {
		handlers.RespondBadRequest(w, msgMissingTrackingCode)
		return
	}

	result, err := h.service.GetByTrackingCode(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrAppointmentNotFound):
			h.logger.Warn("GET /appointments/track/{code} - Not found")
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, appointmentsService.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgMissingTrackingCode)

		default:
			h.logger.Error("GET /appointments/track/{code} - Failed: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
