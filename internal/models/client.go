package models

import "time"

// Client is a customer record owned by one business user.
type Client struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OwnerID uint `gorm:"not null;index" json:"owner_id"`

	Name  string `gorm:"size:100;not null" json:"name"`
	Email string `gorm:"size:100" json:"email"`
	Phone string `gorm:"size:20" json:"phone"`
	Notes string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Client) TableName() string { return "clients" }
