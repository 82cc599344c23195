package models

// User is an account, optionally employed by a company.
type User struct {
	ID        int32  `json:"id" validate:"gte=0"`
	Name      string `json:"name" validate:"required,max=255"`
	Email     string `json:"email" validate:"required,email"`
	CompanyID *int32 `json:"company,omitempty" validate:"omitempty,gt=0"`
}

// Vehicle is a car operated by a company, with its transport capacities.
type Vehicle struct {
	ID           int32  `json:"id" validate:"gte=0"`
	LicensePlate string `json:"license_plate" validate:"required,max=32"`
	Passengers   int32  `json:"passengers" validate:"gte=1"`
	Wheelchairs  int32  `json:"wheelchairs" validate:"gte=0"`
	Bikes        int32  `json:"bikes" validate:"gte=0"`
	Luggage      int32  `json:"luggage" validate:"gte=0"`
	CompanyID    int32  `json:"company" validate:"gt=0"`
}
