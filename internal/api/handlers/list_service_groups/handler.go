package list_service_groups

import (
	"net/http"

	"github.com/simaclinic/booking-service/internal/api/handlers"
)

type Handler struct {
	service CatalogService
	logger  Logger
}

func NewHandler(service CatalogService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/service-groups
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListGroups(r.Context())
	if err != nil {
		h.logger.Error("GET /service-groups - Failed: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
