package models

// Vehicle is a car operated by a company.
type Vehicle struct {
	ID           int32  `gorm:"primaryKey"`
	LicensePlate string `gorm:"type:text;unique;not null"`
	Passengers   int32  `gorm:"not null"`
	Wheelchairs  int32  `gorm:"not null;default:0"`
	Bikes        int32  `gorm:"not null;default:0"`
	Luggage      int32  `gorm:"not null;default:0"`
	CompanyID    int32  `gorm:"column:company;not null;index"`
}

func (Vehicle) TableName() string {
	return "vehicle"
}
