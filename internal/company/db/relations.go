package db

import (
	"context"
	"errors"

	entities "github.com/gartstein/fleet/internal/company/db/models"
	e "github.com/gartstein/fleet/internal/company/errors"
	"github.com/gartstein/fleet/internal/company/models"
	"gorm.io/gorm"
)

// ListCompanyUsers returns the users whose company column equals id.
func (r *Repository) ListCompanyUsers(ctx context.Context, id int32) ([]models.User, error) {
	company, err := r.companyRow(ctx, id)
	if err != nil {
		return nil, err
	}
	var rows []entities.User
	if err := r.db.WithContext(ctx).Model(company).Order("id").Association("Users").Find(&rows); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(rows))
	for i := range rows {
		users = append(users, *fromUserEntity(&rows[i]))
	}
	return users, nil
}

// ListCompanyVehicles returns the vehicles whose company column equals id.
func (r *Repository) ListCompanyVehicles(ctx context.Context, id int32) ([]models.Vehicle, error) {
	company, err := r.companyRow(ctx, id)
	if err != nil {
		return nil, err
	}
	var rows []entities.Vehicle
	if err := r.db.WithContext(ctx).Model(company).Order("id").Association("Vehicles").Find(&rows); err != nil {
		return nil, err
	}
	vehicles := make([]models.Vehicle, 0, len(rows))
	for i := range rows {
		vehicles = append(vehicles, *fromVehicleEntity(&rows[i]))
	}
	return vehicles, nil
}

// GetCompanyZone follows the zone column of a company.
func (r *Repository) GetCompanyZone(ctx context.Context, id int32) (*models.Zone, error) {
	return r.companyZoneByRole(ctx, id, "Zone")
}

// GetCompanyCommunityArea follows the community_area column of a company.
func (r *Repository) GetCompanyCommunityArea(ctx context.Context, id int32) (*models.Zone, error) {
	return r.companyZoneByRole(ctx, id, "CommunityArea")
}

func (r *Repository) companyZoneByRole(ctx context.Context, id int32, relation string) (*models.Zone, error) {
	var company entities.Company
	result := r.db.WithContext(ctx).Preload(relation).First(&company, "id = ?", id)
	if result.Error != nil {
		return nil, translateError(result.Error)
	}

	zone := company.Zone
	if relation == "CommunityArea" {
		zone = company.CommunityArea
	}
	if zone == nil {
		// Only reachable when foreign keys are not enforced by the store.
		return nil, e.ErrNotFound
	}
	return fromZoneEntity(zone), nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	row := toUserEntity(user)
	if err := r.insert(ctx, row, user.ID != 0); err != nil {
		return err
	}
	user.ID = row.ID
	return nil
}

func (r *Repository) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	row := toVehicleEntity(vehicle)
	if err := r.insert(ctx, row, vehicle.ID != 0); err != nil {
		return err
	}
	vehicle.ID = row.ID
	return nil
}

func (r *Repository) companyRow(ctx context.Context, id int32) (*entities.Company, error) {
	var company entities.Company
	result := r.db.WithContext(ctx).Select("id").First(&company, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, e.ErrNotFound
		}
		return nil, result.Error
	}
	return &company, nil
}
