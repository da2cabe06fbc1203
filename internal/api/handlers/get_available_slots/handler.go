package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/simaclinic/booking-service/internal/api/handlers"
	"github.com/simaclinic/booking-service/internal/api/middleware"
	"github.com/simaclinic/booking-service/internal/domain"
	getAvailableSlots "github.com/simaclinic/booking-service/internal/usecase/get_available_slots"
)

const (
	msgMissingServiceIDs = "требуется хотя бы один ID услуги"
	msgInvalidServiceIDs = "некорректный список ID услуг"
	msgInvalidDeviceID   = "некорректный ID аппарата"
	msgInvalidDate       = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidDateRange  = "некорректный диапазон дат"
)

type Handler struct {
	useCase     GetAvailableSlotsUseCase
	patientRepo PatientRepository
	logger      Logger

	// rangeDays горизонт выдачи, если конец диапазона не передан
	rangeDays int
}

func NewHandler(useCase GetAvailableSlotsUseCase, patientRepo PatientRepository, rangeDays int, logger Logger) *Handler {
	return &Handler{
		useCase:     useCase,
		patientRepo: patientRepo,
		logger:      logger,
		rangeDays:   rangeDays,
	}
}

// Handle GET /api/v1/slots
// Query params: service_ids (required, через запятую), device_id,
// start_date (YYYY-MM-DD, по умолчанию сегодня), end_date
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	serviceIDsStr := query.Get("service_ids")
	if serviceIDsStr == "" {
		h.logger.Warn("GET /slots - Missing service ids")
		handlers.RespondBadRequest(w, msgMissingServiceIDs)
		return
	}

	serviceIDs, err := parseServiceIDs(serviceIDsStr)
	if err != nil {
		h.logger.Warn("GET /slots - Invalid service ids %q: %v", serviceIDsStr, err)
		handlers.RespondBadRequest(w, msgInvalidServiceIDs)
		return
	}

	var deviceID *int64
	if deviceIDStr := query.Get("device_id"); deviceIDStr != "" {
		id, err := strconv.ParseInt(deviceIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /slots - Invalid device id %q: %v", deviceIDStr, err)
			handlers.RespondBadRequest(w, msgInvalidDeviceID)
			return
		}
		deviceID = &id
	}

	startDate := time.Now()
	if startDateStr := query.Get("start_date"); startDateStr != "" {
		startDate, err = time.Parse(domain.DateFormat, startDateStr)
		if err != nil {
			h.logger.Warn("GET /slots - Invalid start date %q: %v", startDateStr, err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
	}

	endDate := startDate.AddDate(0, 0, h.rangeDays-1)
	if endDateStr := query.Get("end_date"); endDateStr != "" {
		endDate, err = time.Parse(domain.DateFormat, endDateStr)
		if err != nil {
			h.logger.Warn("GET /slots - Invalid end date %q: %v", endDateStr, err)
			handlers.RespondBadRequest(w, msgInvalidDate)
			return
		}
	}

	// Роут публичный: пол берем у авторизованного пациента, гость
	// остается без пола. Сбой определения пола не роняет запрос -
	// пациент в этом случае видит только общие интервалы
	var patientID *int64
	var gender *domain.Gender
	if userIDStr := r.Header.Get(middleware.HeaderUserID); userIDStr != "" {
		if userID, err := strconv.ParseInt(userIDStr, 10, 64); err == nil && userID > 0 {
			patientID = &userID
			patient, err := h.patientRepo.GetByID(r.Context(), userID)
			if err != nil {
				h.logger.Warn("GET /slots - Failed to resolve patient id=%d gender: %v", userID, err)
			} else {
				gender = patient.Gender
			}
		}
	}

	result, err := h.useCase.Execute(r.Context(), &getAvailableSlots.Request{
		PatientID:  patientID,
		Gender:     gender,
		ServiceIDs: serviceIDs,
		DeviceID:   deviceID,
		StartDate:  startDate,
		EndDate:    endDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrInvalidDateRange):
			h.logger.Warn("GET /slots - Invalid date range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidDateRange)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidServiceIDs)

		default:
			h.logger.Error("GET /slots - Failed to get slots: services=%v, error=%v", serviceIDs, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}

// parseServiceIDs парсит список ID услуг через запятую ("1,2,3")
func parseServiceIDs(raw string) ([]int64, error) {
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
