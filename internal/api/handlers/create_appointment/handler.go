package create_appointment

import (
	"errors"
	"net/http"

	"github.com/simaclinic/booking-service/internal/api/handlers"
	"github.com/simaclinic/booking-service/internal/api/middleware"
	"github.com/simaclinic/booking-service/internal/domain"
	createBooking "github.com/simaclinic/booking-service/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgInvalidStartTime      = "некорректный формат времени начала, ожидается ISO-8601"
	msgSlotTaken             = "выбранный временной слот уже занят, выберите другое время"
	msgServiceNotFound       = "услуга не найдена"
	msgPatientNotFound       = "пациент не найден"
	msgMixedGroups           = "все услуги одной записи должны быть из одной группы"
	msgMultipleNotAllowed    = "эта группа услуг не допускает выбор нескольких услуг"
	msgDeviceRequired        = "для этой группы услуг требуется выбрать аппарат"
	msgDeviceNotAllowed      = "выбранный аппарат недоступен для этой группы услуг"
	msgPastStartTime         = "время начала записи должно быть в будущем"
	msgInsufficientPoints    = "недостаточно бонусных баллов"
	msgDiscountCodeNotFound  = "код скидки не найден"
	msgDiscountNotApplicable = "код скидки недействителен или уже использован"
)

type Handler struct {
	useCase CreateBookingUseCase
	metrics Metrics
	logger  Logger
}

// NewHandler создает handler создания записи; metrics может быть nil
func NewHandler(useCase CreateBookingUseCase, metrics Metrics, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		metrics: metrics,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	actor, ok := middleware.Actor(r.Context(), req.PatientID)
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, "требуется аутентификация")
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actor)
	if err != nil {
		h.logger.Warn("POST /appointments - Invalid start time %q: %v", req.StartTime, err)
		handlers.RespondBadRequest(w, msgInvalidStartTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotTaken):
			h.logger.Warn("POST /appointments - Slot taken: patient=%d", actor.EffectivePatientID)
			if h.metrics != nil {
				h.metrics.IncSlotConflict(resourceLabel(req.DeviceID))
			}
			handlers.RespondError(w, http.StatusConflict, msgSlotTaken)

		case errors.Is(err, createBooking.ErrServiceNotFound):
			handlers.RespondNotFound(w, msgServiceNotFound)

		case errors.Is(err, createBooking.ErrPatientNotFound):
			handlers.RespondNotFound(w, msgPatientNotFound)

		case errors.Is(err, createBooking.ErrMixedServiceGroups):
			handlers.RespondBadRequest(w, msgMixedGroups)

		case errors.Is(err, createBooking.ErrMultipleServicesNotAllowed):
			handlers.RespondBadRequest(w, msgMultipleNotAllowed)

		case errors.Is(err, createBooking.ErrDeviceRequired):
			handlers.RespondBadRequest(w, msgDeviceRequired)

		case errors.Is(err, createBooking.ErrDeviceNotAllowed):
			handlers.RespondBadRequest(w, msgDeviceNotAllowed)

		case errors.Is(err, createBooking.ErrPastStartTime):
			handlers.RespondBadRequest(w, msgPastStartTime)

		case errors.Is(err, createBooking.ErrInsufficientPoints):
			handlers.RespondBadRequest(w, msgInsufficientPoints)

		case errors.Is(err, createBooking.ErrDiscountCodeNotFound):
			handlers.RespondNotFound(w, msgDiscountCodeNotFound)

		case errors.Is(err, createBooking.ErrDiscountCodeNotApplicable):
			handlers.RespondBadRequest(w, msgDiscountNotApplicable)

		case errors.Is(err, createBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: patient=%d, error=%v",
				actor.EffectivePatientID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	if h.metrics != nil {
		h.metrics.IncAppointmentsCreated(result.Status)
	}

	h.logger.Info("POST /appointments - Appointment created: id=%d, patient=%d, status=%s",
		result.ID, result.PatientID, result.Status)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

func resourceLabel(deviceID *int64) string {
	if deviceID == nil {
		return domain.NoDeviceResource().String()
	}
	return domain.DeviceResource(*deviceID).String()
}
