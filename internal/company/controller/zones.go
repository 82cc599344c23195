package controller

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/fleet/internal/company/errors"
	"github.com/gartstein/fleet/internal/company/models"
	"go.uber.org/zap"
)

// CreateZone adds a service zone or community area.
func (s *CompanyService) CreateZone(ctx context.Context, zone *models.Zone) (*models.Zone, error) {
	if err := s.check(zone); err != nil {
		return nil, err
	}
	if err := s.repo.CreateZone(ctx, zone); err != nil {
		return nil, fmt.Errorf("failed to create zone: %w", err)
	}
	return zone, nil
}

// ListZones lists zones matching filter, ordered by name.
func (s *CompanyService) ListZones(ctx context.Context, filter models.ZoneFilter) ([]models.Zone, error) {
	zones, err := s.repo.ListZones(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list zones: %w", err)
	}
	return zones, nil
}

// DeleteZone removes a zone. A zone still referenced by a company is kept and
// ErrForeignKeyViolation is returned; companies are never modified.
func (s *CompanyService) DeleteZone(ctx context.Context, id int32) error {
	err := s.repo.DeleteZone(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, e.ErrNotFound):
		return err
	case errors.Is(err, e.ErrForeignKeyViolation):
		s.logger.Warn("Refusing to delete referenced zone", zap.Int32("zone_id", id))
		return fmt.Errorf("zone %d is still referenced: %w", id, err)
	default:
		return fmt.Errorf("failed to delete zone: %w", err)
	}
}
