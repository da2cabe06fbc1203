package get_patient_appointments

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/simaclinic/booking-service/internal/api/handlers"
	"github.com/simaclinic/booking-service/internal/api/middleware"
	appointmentsService "github.com/simaclinic/booking-service/internal/service/appointments"
	"github.com/simaclinic/booking-service/internal/service/appointments/models"
)

const (
	msgInvalidPatientID = "некорректный ID пациента"
	msgInvalidStatus    = "некорректный статус записи"
	msgAccessDenied     = "нет доступа к записям этого пациента"
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

// Handle GET /api/v1/patients/{patientId}/appointments
// Query params: status (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	patientID, err := strconv.ParseInt(mux.Vars(r)["patientId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /patients/{id}/appointments - Invalid patient ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPatientID)
		return
	}

	actor, ok := middleware.Actor(r.Context(), nil)
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, "требуется аутентификация")
		return
	}

	var status *string
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status = &statusStr
	}

	result, err := h.service.ListPatientAppointments(r.Context(), &models.ListPatientAppointmentsRequest{
		PatientID: patientID,
		Actor:     actor,
		Status:    status,
	})
	if err != nil {
		switch {
		case errors.Is(err, appointmentsService.ErrAccessDenied):
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, appointmentsService.ErrInvalidStatus):
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /patients/{id}/appointments - Failed: patient=%d, error=%v", patientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
