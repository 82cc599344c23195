// Package models defines the core domain models of the fleet service:
// companies, the zones they operate in, and their users and vehicles.
package models

// Company defines the domain model for a company entity.
type Company struct {
	// ID is the unique identifier for the company. Zero means "assign on insert".
	ID int32 `json:"id" validate:"gte=0"`
	// Latitude of the company's depot.
	Latitude float32 `json:"latitude" validate:"gte=-90,lte=90"`
	// Longitude of the company's depot.
	Longitude float32 `json:"longitude" validate:"gte=-180,lte=180"`
	// DisplayName is the human-readable company name.
	DisplayName string `json:"display_name" validate:"required,min=2,max=255"`
	// Email is the company's contact address, unique across companies.
	Email string `json:"email" validate:"required,email"`
	// ZoneID references the zone the company is obliged to serve.
	ZoneID int32 `json:"zone" validate:"gt=0"`
	// CommunityAreaID references the community area the company is registered in.
	CommunityAreaID int32 `json:"community_area" validate:"gt=0"`
}

// CompanyUpdate represents the fields that can be updated for a Company.
// Pointer types are used to allow partial updates.
type CompanyUpdate struct {
	// ID is the unique identifier for the company to update.
	ID              int32    `validate:"gt=0"`
	Latitude        *float32 `validate:"omitempty,gte=-90,lte=90"`
	Longitude       *float32 `validate:"omitempty,gte=-180,lte=180"`
	DisplayName     *string  `validate:"omitempty,min=2,max=255"`
	Email           *string  `validate:"omitempty,email"`
	ZoneID          *int32   `validate:"omitempty,gt=0"`
	CommunityAreaID *int32   `validate:"omitempty,gt=0"`
}

// Empty reports whether the update carries no field changes.
func (u *CompanyUpdate) Empty() bool {
	return u.Latitude == nil && u.Longitude == nil && u.DisplayName == nil &&
		u.Email == nil && u.ZoneID == nil && u.CommunityAreaID == nil
}
