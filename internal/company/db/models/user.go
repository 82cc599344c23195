package models

// User is an account that may be employed by a company.
type User struct {
	ID        int32  `gorm:"primaryKey"`
	Name      string `gorm:"type:text;not null"`
	Email     string `gorm:"type:text;unique;not null"`
	CompanyID *int32 `gorm:"column:company;index"`
}

func (User) TableName() string {
	return "user"
}
