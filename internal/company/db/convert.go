package db

import (
	entities "github.com/gartstein/fleet/internal/company/db/models"
	"github.com/gartstein/fleet/internal/company/models"
)

func toCompanyEntity(c *models.Company) *entities.Company {
	return &entities.Company{
		ID:              c.ID,
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
		DisplayName:     c.DisplayName,
		Email:           c.Email,
		ZoneID:          c.ZoneID,
		CommunityAreaID: c.CommunityAreaID,
	}
}

func fromCompanyEntity(c *entities.Company) *models.Company {
	return &models.Company{
		ID:              c.ID,
		Latitude:        c.Latitude,
		Longitude:       c.Longitude,
		DisplayName:     c.DisplayName,
		Email:           c.Email,
		ZoneID:          c.ZoneID,
		CommunityAreaID: c.CommunityAreaID,
	}
}

// companyUpdateColumns keys the set fields of u by column name.
func companyUpdateColumns(u *models.CompanyUpdate) map[string]interface{} {
	cols := make(map[string]interface{})
	if u.Latitude != nil {
		cols["latitude"] = *u.Latitude
	}
	if u.Longitude != nil {
		cols["longitude"] = *u.Longitude
	}
	if u.DisplayName != nil {
		cols["display_name"] = *u.DisplayName
	}
	if u.Email != nil {
		cols["email"] = *u.Email
	}
	if u.ZoneID != nil {
		cols["zone"] = *u.ZoneID
	}
	if u.CommunityAreaID != nil {
		cols["community_area"] = *u.CommunityAreaID
	}
	return cols
}

func toZoneEntity(z *models.Zone) *entities.Zone {
	return &entities.Zone{ID: z.ID, Name: z.Name, IsCommunity: z.IsCommunity}
}

func fromZoneEntity(z *entities.Zone) *models.Zone {
	return &models.Zone{ID: z.ID, Name: z.Name, IsCommunity: z.IsCommunity}
}

func toUserEntity(u *models.User) *entities.User {
	return &entities.User{ID: u.ID, Name: u.Name, Email: u.Email, CompanyID: u.CompanyID}
}

func fromUserEntity(u *entities.User) *models.User {
	return &models.User{ID: u.ID, Name: u.Name, Email: u.Email, CompanyID: u.CompanyID}
}

func toVehicleEntity(v *models.Vehicle) *entities.Vehicle {
	return &entities.Vehicle{
		ID:           v.ID,
		LicensePlate: v.LicensePlate,
		Passengers:   v.Passengers,
		Wheelchairs:  v.Wheelchairs,
		Bikes:        v.Bikes,
		Luggage:      v.Luggage,
		CompanyID:    v.CompanyID,
	}
}

func fromVehicleEntity(v *entities.Vehicle) *models.Vehicle {
	return &models.Vehicle{
		ID:           v.ID,
		LicensePlate: v.LicensePlate,
		Passengers:   v.Passengers,
		Wheelchairs:  v.Wheelchairs,
		Bikes:        v.Bikes,
		Luggage:      v.Luggage,
		CompanyID:    v.CompanyID,
	}
}
