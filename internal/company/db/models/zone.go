package models

// Zone is a geographic area. Regular zones define where a company is obliged to
// operate; community areas are the municipalities a company is registered in.
type Zone struct {
	ID          int32  `gorm:"primaryKey"`
	Name        string `gorm:"type:text;not null"`
	IsCommunity bool   `gorm:"not null;default:false"`
}

func (Zone) TableName() string {
	return "zone"
}
