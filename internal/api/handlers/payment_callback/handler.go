package payment_callback

import (
	"errors"
	"net/http"

	"github.com/simaclinic/booking-service/internal/api/handlers"
	processPayment "github.com/simaclinic/booking-service/internal/usecase/process_payment"
)

const (
	msgMissingAuthority = "требуется параметр Authority"
	msgPaymentNotFound  = "платеж не найден"
)

// Статус, который шлюз передает в callback при успешной оплате
const gatewayStatusOK = "OK"

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

// Handle GET /api/v1/payments/callback
// Query params: Authority, Status - формат callback-а платежного шлюза
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	authority := query.Get("Authority")
	if authority == "" {
		h.logger.Warn("GET /payments/callback - Missing authority")
		handlers.RespondBadRequest(w, msgMissingAuthority)
		return
	}

	result, err := h.useCase.HandleCallback(r.Context(), &processPayment.CallbackRequest{
		Authority: authority,
		GatewayOK: query.Get("Status") == gatewayStatusOK,
	})
	if err != nil {
		switch {
		case errors.Is(err, processPayment.ErrPaymentNotFound):
			h.logger.Warn("GET /payments/callback - Payment not found")
			handlers.RespondNotFound(w, msgPaymentNotFound)

		case errors.Is(err, processPayment.ErrAppointmentNotFound):
			handlers.RespondNotFound(w, msgPaymentNotFound)

		case errors.Is(err, processPayment.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgMissingAuthority)

		default:
			h.logger.Error("GET /payments/callback - Failed: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /payments/callback - Settled: appointment=%d, success=%t",
		result.AppointmentID, result.Success)
	handlers.RespondJSON(w, http.StatusOK, result)
}
