package models

type Assignment struct {
	Base
	EngineerID   string  `gorm:"type:varchar(36);not null;index" json:"engineerId"`
	ClientID     string  `gorm:"type:varchar(36);not null;index" json:"clientId"`
	SiteID       *string `gorm:"type:varchar(36);index" json:"siteId,omitempty"`
	Active       bool    `gorm:"not null;index" json:"active"`
	AssignedDate string  `gorm:"type:varchar(10);not null" json:"assignedDate"`
}

type AssignmentView struct {
	Assignment
	EngineerName string  `json:"engineerName"`
	ClientName   string  `json:"clientName"`
	SiteName     *string `json:"siteName,omitempty"`
}
