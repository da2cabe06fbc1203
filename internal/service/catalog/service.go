package catalog

import (
	"context"
	"errors"
	"fmt"

	catalogRepo "github.com/simaclinic/booking-service/internal/infra/storage/catalog"
	"github.com/simaclinic/booking-service/internal/service/catalog/models"
)

// Service read-only сервис каталога услуг
type Service struct {
	catalogRepo CatalogRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса каталога
func NewService(catalogRepo CatalogRepository, logger Logger) *Service {
	return &Service{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// ListGroups получает список групп услуг
func (s *Service) ListGroups(ctx context.Context) (*models.GroupListResponse, error) {
	groups, err := s.catalogRepo.ListGroups(ctx)
	if err != nil {
		s.logger.Error("ListGroups: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListGroups - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainGroupList(groups), nil
}

// GetGroupDetail получает группу вместе с её услугами и аппаратами
func (s *Service) GetGroupDetail(ctx context.Context, groupID int64) (*models.GroupDetailResponse, error) {
	if groupID <= 0 {
		return nil, fmt.Errorf("%w: groupID must be positive", ErrInvalidInput)
	}

	group, err := s.catalogRepo.GetGroupByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, catalogRepo.ErrGroupNotFound) {
			s.logger.Warn("GetGroupDetail: group id=%d not found", groupID)
			return nil, ErrGroupNotFound
		}
		s.logger.Error("GetGroupDetail: repository error for group id=%d: %v", groupID, err)
		return nil, fmt.Errorf("%w: GetGroupDetail - repository error: %v", ErrInternal, err)
	}

	services, err := s.catalogRepo.ListServicesByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("GetGroupDetail: failed to list services for group id=%d: %v", groupID, err)
		return nil, fmt.Errorf("%w: GetGroupDetail - repository error: %v", ErrInternal, err)
	}

	devices := make([]*models.DeviceResponse, 0)
	if group.HasDevices && len(group.AvailableDeviceIDs) > 0 {
		domainDevices, err := s.catalogRepo.GetDevicesByIDs(ctx, group.AvailableDeviceIDs)
		if err != nil {
			s.logger.Error("GetGroupDetail: failed to list devices for group id=%d: %v", groupID, err)
			return nil, fmt.Errorf("%w: GetGroupDetail - repository error: %v", ErrInternal, err)
		}
		devices = models.FromDomainDevices(domainDevices)
	}

	return &models.GroupDetailResponse{
		Group:    models.FromDomainGroup(group),
		Services: models.FromDomainServices(services),
		Devices:  devices,
	}, nil
}
