package models

type DailyReport struct {
	Base
	EngineerID string  `gorm:"type:varchar(36);not null;index" json:"engineerId"`
	ClientID   string  `gorm:"type:varchar(36);not null;index" json:"clientId"`
	SiteID     *string `gorm:"type:varchar(36);index" json:"siteId,omitempty"`
	WorkDone   string  `gorm:"type:text;not null" json:"workDone"`
	Issues     *string `gorm:"type:text" json:"issues,omitempty"`
	ReportDate string  `gorm:"type:varchar(10);not null;index" json:"reportDate"`
}

type ReportView struct {
	DailyReport
	EngineerName string  `json:"engineerName"`
	ClientName   string  `json:"clientName"`
	SiteName     *string `json:"siteName,omitempty"`
}
