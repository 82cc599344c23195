// Package models contains the storage entities of the fleet schema,
// configured to work using GORM as the ORM.
package models

// Company is a transport operator. A company belongs to a service zone and to a
// community area, both rows of the zone table, and owns users and vehicles.
// Updates and deletes of a referenced zone take no action on the company row.
type Company struct {
	ID              int32   `gorm:"primaryKey"`
	Latitude        float32 `gorm:"type:real;not null"`
	Longitude       float32 `gorm:"type:real;not null"`
	DisplayName     string  `gorm:"type:text;not null"`
	Email           string  `gorm:"type:text;unique;not null"`
	ZoneID          int32   `gorm:"column:zone;not null"`
	CommunityAreaID int32   `gorm:"column:community_area;not null"`

	Users         []User    `gorm:"foreignKey:CompanyID;references:ID"`
	Vehicles      []Vehicle `gorm:"foreignKey:CompanyID;references:ID"`
	Zone          *Zone     `gorm:"foreignKey:ZoneID;references:ID;constraint:OnUpdate:NO ACTION,OnDelete:NO ACTION"`
	CommunityArea *Zone     `gorm:"foreignKey:CommunityAreaID;references:ID;constraint:OnUpdate:NO ACTION,OnDelete:NO ACTION"`
}

func (Company) TableName() string {
	return "company"
}
