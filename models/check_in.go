package models

import "time"

type CheckIn struct {
	Base
	EngineerID   string     `gorm:"type:varchar(36);not null;index" json:"engineerId"`
	CheckInTime  time.Time  `gorm:"not null" json:"checkInTime"`
	CheckOutTime *time.Time `json:"checkOutTime,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	LocationName *string    `gorm:"type:varchar(255)" json:"locationName,omitempty"`
	Date         string     `gorm:"type:varchar(10);not null;index" json:"date"`
}

// Open reports whether the engineer has not checked out yet.
func (c *CheckIn) Open() bool {
	return c.CheckOutTime == nil
}

type CheckInView struct {
	CheckIn
	EngineerName string `json:"engineerName"`
}
