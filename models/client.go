package models

type Client struct {
	Base
	Name          string  `gorm:"type:varchar(255);not null" json:"name"`
	ContactPerson string  `gorm:"type:varchar(255)" json:"contactPerson"`
	ContactEmail  string  `gorm:"type:varchar(255)" json:"contactEmail"`
	ProfileID     *string `gorm:"type:varchar(36);uniqueIndex" json:"profileId,omitempty"`
}

type Site struct {
	Base
	ClientID string `gorm:"type:varchar(36);not null;index" json:"clientId"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	Location string `gorm:"type:varchar(255)" json:"location"`
}

// SiteView is a Site with its client's display name resolved at read time.
type SiteView struct {
	Site
	ClientName string `json:"clientName"`
}
