package models

import "time"

// CompanyProfileID is the fixed key of the singleton branding record.
const CompanyProfileID = "company"

type CompanyProfile struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Address   string    `gorm:"type:varchar(500)" json:"address"`
	Phone     string    `gorm:"type:varchar(50)" json:"phone"`
	Email     string    `gorm:"type:varchar(255)" json:"email"`
	Website   string    `gorm:"type:varchar(255)" json:"website"`
	LogoURL   string    `gorm:"type:varchar(500)" json:"logoUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// All lists every persisted model, in migration order.
func All() []interface{} {
	return []interface{}{
		&Profile{},
		&Client{},
		&Site{},
		&Assignment{},
		&CheckIn{},
		&DailyReport{},
		&LeaveRequest{},
		&CompanyProfile{},
	}
}
