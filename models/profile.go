package models

type Profile struct {
	Base
	Email        string  `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName     string  `gorm:"type:varchar(255);not null" json:"fullName"`
	Role         Role    `gorm:"type:varchar(20);not null;index" json:"role"`
	PasswordHash string  `gorm:"type:varchar(255);not null" json:"-"`
	Phone        *string `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Designation  *string `gorm:"type:varchar(100)" json:"designation,omitempty"`
	ClientID     *string `gorm:"type:varchar(36);index" json:"clientId,omitempty"`
}
