package start_payment

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/simaclinic/booking-service/internal/api/handlers"
	"github.com/simaclinic/booking-service/internal/api/middleware"
	processPayment "github.com/simaclinic/booking-service/internal/usecase/process_payment"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgAppointmentNotFound  = "запись не найдена"
	msgAccessDenied         = "нет доступа к этой записи"
	msgNotPayable           = "запись не ожидает оплаты"
	msgGatewayUnavailable   = "платежный шлюз временно недоступен, попробуйте позже"
)

type Handler struct {
	useCase ProcessPaymentUseCase
	logger  Logger
}

func NewHandler(useCase ProcessPaymentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments/{appointmentId}/payment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := strconv.ParseInt(mux.Vars(r)["appointmentId"], 10, 64)
	if err != nil {
		h.logger.Warn("POST /appointments/{id}/payment - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	actor, ok := middleware.Actor(r.Context(), nil)
	if !ok {
		handlers.RespondError(w, http.StatusUnauthorized, "требуется аутентификация")
		return
	}

	result, err := h.useCase.Start(r.Context(), &processPayment.StartRequest{
		Actor:         actor,
		AppointmentID: appointmentID,
	})
	if err != nil {
		switch {
		case errors.Is(err, processPayment.ErrAppointmentNotFound):
			h.logger.Warn("POST /appointments/{id}/payment - Not found: id=%d", appointmentID)
			handlers.RespondNotFound(w, msgAppointmentNotFound)

		case errors.Is(err, processPayment.ErrAccessDenied):
			handlers.RespondForbidden(w, msgAccessDenied)

		case errors.Is(err, processPayment.ErrNotPayable):
			handlers.RespondError(w, http.StatusConflict, msgNotPayable)

		case errors.Is(err, processPayment.ErrGatewayUnavailable):
			h.logger.Error("POST /appointments/{id}/payment - Gateway unavailable: id=%d, error=%v", appointmentID, err)
			handlers.RespondError(w, http.StatusBadGateway, msgGatewayUnavailable)

		case errors.Is(err, processPayment.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidAppointmentID)

		default:
			h.logger.Error("POST /appointments/{id}/payment - Failed: id=%d, error=%v", appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments/{id}/payment - Payment started: id=%d, amount=%d",
		appointmentID, result.Amount)
	handlers.RespondJSON(w, http.StatusOK, result)
}
