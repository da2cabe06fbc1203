package get_group_detail

import (
	"context"

	"github.com/simaclinic/booking-service/internal/service/catalog/models"
)

type CatalogService interface {
	GetGroupDetail(ctx context.Context, groupID int64) (*models.GroupDetailResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
