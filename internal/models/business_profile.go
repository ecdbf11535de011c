package models

import "time"

type BusinessProfile struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OwnerID uint `gorm:"not null;uniqueIndex" json:"owner_id"`

	BusinessName string `gorm:"size:100" json:"business_name"`
	ContactEmail string `gorm:"size:100" json:"contact_email"`
	StartTime    string `gorm:"size:5" json:"start_time"`
	EndTime      string `gorm:"size:5" json:"end_time"`
	LogoURL      string `gorm:"size:255" json:"logo_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (BusinessProfile) TableName() string { return "business_profiles" }
