package controller

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/fleet/internal/company/errors"
	"github.com/gartstein/fleet/internal/company/models"
	"go.uber.org/zap"
)

// ListCompanyUsers returns the users employed by a company.
func (s *CompanyService) ListCompanyUsers(ctx context.Context, id int32) ([]models.User, error) {
	users, err := s.repo.ListCompanyUsers(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "failed to list company users")
	}
	return users, nil
}

// ListCompanyVehicles returns the vehicles operated by a company.
func (s *CompanyService) ListCompanyVehicles(ctx context.Context, id int32) ([]models.Vehicle, error) {
	vehicles, err := s.repo.ListCompanyVehicles(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "failed to list company vehicles")
	}
	return vehicles, nil
}

// GetCompanyZone returns the service zone of a company.
func (s *CompanyService) GetCompanyZone(ctx context.Context, id int32) (*models.Zone, error) {
	zone, err := s.repo.GetCompanyZone(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "failed to get company zone")
	}
	return zone, nil
}

// GetCompanyCommunityArea returns the community area of a company.
func (s *CompanyService) GetCompanyCommunityArea(ctx context.Context, id int32) (*models.Zone, error) {
	zone, err := s.repo.GetCompanyCommunityArea(ctx, id)
	if err != nil {
		return nil, wrapLookup(err, "failed to get company community area")
	}
	return zone, nil
}

// AddUser creates a user, optionally attached to a company.
func (s *CompanyService) AddUser(ctx context.Context, user *models.User) (*models.User, error) {
	if err := s.check(user); err != nil {
		return nil, err
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	s.logger.Info("User added", zap.Int32("user_id", user.ID))
	return user, nil
}

// AddVehicle registers a vehicle for a company.
func (s *CompanyService) AddVehicle(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := s.check(vehicle); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCompany(ctx, vehicle.CompanyID); err != nil {
		return nil, wrapLookup(err, "failed to get company for vehicle")
	}
	if err := s.repo.CreateVehicle(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}
	s.logger.Info("Vehicle added",
		zap.Int32("vehicle_id", vehicle.ID),
		zap.Int32("company_id", vehicle.CompanyID),
	)
	return vehicle, nil
}

func wrapLookup(err error, msg string) error {
	if errors.Is(err, e.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}
