package list_service_groups

import (
	"context"

	"github.com/simaclinic/booking-service/internal/service/catalog/models"
)

type CatalogService interface {
	ListGroups(ctx context.Context) (*models.GroupListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
