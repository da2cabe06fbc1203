package get_group_detail

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/simaclinic/booking-service/internal/api/handlers"
	catalogService "github.com/simaclinic/booking-service/internal/service/catalog"
)

const (
	msgInvalidGroupID = "некорректный ID группы услуг"
	msgGroupNotFound  = "группа услуг не найдена"
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

// Handle GET /api/v1/service-groups/{groupId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	groupID, err := strconv.ParseInt(mux.Vars(r)["groupId"], 10, 64)
	if err != nil {
		h.logger.Warn("GET /service-groups/{id} - Invalid group ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidGroupID)
		return
	}

	result, err := h.service.GetGroupDetail(r.Context(), groupID)
	if err != nil {
		switch {
		case errors.Is(err, catalogService.ErrGroupNotFound):
			h.logger.Warn("GET /service-groups/{id} - Not found: id=%d", groupID)
			handlers.RespondNotFound(w, msgGroupNotFound)

		case errors.Is(err, catalogService.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidGroupID)

		default:
			h.logger.Error("GET /service-groups/{id} - Failed: id=%d, error=%v", groupID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
