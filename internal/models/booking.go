package models

import "time"

// Booking keeps the client name as a snapshot taken when the booking is
// saved. It is not linked to Client.
type Booking struct {
	ID      uint `gorm:"primaryKey" json:"id"`
	OwnerID uint `gorm:"not null;index:idx_bookings_owner_date" json:"owner_id"`

	ClientName string `gorm:"size:100" json:"client_name"`
	Service    string `gorm:"size:100" json:"service"`
	Date       string `gorm:"size:10;index:idx_bookings_owner_date" json:"date"` // YYYY-MM-DD
	Time       string `gorm:"size:5" json:"time"`                                // HH:MM
	Notes      string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Booking) TableName() string { return "client_bookings" }
