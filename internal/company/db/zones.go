package db

import (
	"context"
	"errors"

	entities "github.com/gartstein/fleet/internal/company/db/models"
	e "github.com/gartstein/fleet/internal/company/errors"
	"github.com/gartstein/fleet/internal/company/models"
	"gorm.io/gorm"
)

// CreateZone inserts zone. A zero id is assigned by the store.
func (r *Repository) CreateZone(ctx context.Context, zone *models.Zone) error {
	row := toZoneEntity(zone)
	if err := r.insert(ctx, row, zone.ID != 0); err != nil {
		return err
	}
	zone.ID = row.ID
	return nil
}

func (r *Repository) GetZone(ctx context.Context, id int32) (*models.Zone, error) {
	var zone entities.Zone
	result := r.db.WithContext(ctx).First(&zone, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return fromZoneEntity(&zone), nil
}

// ListZones returns zones ordered by name.
func (r *Repository) ListZones(ctx context.Context, filter models.ZoneFilter) ([]models.Zone, error) {
	query := r.db.WithContext(ctx).Model(&entities.Zone{}).Order("name").Order("id")
	if filter.IsCommunity != nil {
		query = query.Where("is_community = ?", *filter.IsCommunity)
	}

	var rows []entities.Zone
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	zones := make([]models.Zone, 0, len(rows))
	for i := range rows {
		zones = append(zones, *fromZoneEntity(&rows[i]))
	}
	return zones, nil
}

// DeleteZone removes a zone. Zones still referenced by a company are rejected
// by the store with ErrForeignKeyViolation and left in place.
func (r *Repository) DeleteZone(ctx context.Context, id int32) error {
	result := r.db.WithContext(ctx).Delete(&entities.Zone{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return e.ErrNotFound
	}
	return nil
}

// SeedZones inserts every zone whose id is not yet present, in one transaction.
// It returns the number of zones inserted.
func (r *Repository) SeedZones(ctx context.Context, zones []models.Zone) (int, error) {
	inserted := 0
	err := r.WithTransaction(ctx, func(tx *Repository) error {
		for i := range zones {
			if zones[i].ID != 0 {
				_, err := tx.GetZone(ctx, zones[i].ID)
				if err == nil {
					continue
				}
				if !errors.Is(err, e.ErrNotFound) {
					return err
				}
			}
			if err := tx.CreateZone(ctx, &zones[i]); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
