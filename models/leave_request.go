package models

import "time"

type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

func (s LeaveStatus) Valid() bool {
	switch s {
	case LeaveStatusPending, LeaveStatusApproved, LeaveStatusRejected:
		return true
	}
	return false
}

type LeaveType string

const (
	LeaveTypeAnnual    LeaveType = "annual"
	LeaveTypeSick      LeaveType = "sick"
	LeaveTypeEmergency LeaveType = "emergency"
)

func (t LeaveType) Valid() bool {
	switch t {
	case LeaveTypeAnnual, LeaveTypeSick, LeaveTypeEmergency:
		return true
	}
	return false
}

type LeaveRequest struct {
	Base
	EngineerID       string      `gorm:"type:varchar(36);not null;index" json:"engineerId"`
	LeaveType        LeaveType   `gorm:"type:varchar(20);not null" json:"leaveType"`
	StartDate        string      `gorm:"type:varchar(10);not null" json:"startDate"`
	EndDate          string      `gorm:"type:varchar(10);not null" json:"endDate"`
	Days             int         `gorm:"not null" json:"days"`
	Reason           string      `gorm:"type:text;not null" json:"reason"`
	Status           LeaveStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ApproverID       *string     `gorm:"type:varchar(36)" json:"approverId,omitempty"`
	BackupEngineerID *string     `gorm:"type:varchar(36)" json:"backupEngineerId,omitempty"`
	DecidedAt        *time.Time  `json:"decidedAt,omitempty"`
	RejectReason     *string     `gorm:"type:text" json:"rejectReason,omitempty"`
}

// LeaveDecision is the patch applied when a pending request is approved or rejected.
type LeaveDecision struct {
	Status           LeaveStatus
	ApproverID       string
	BackupEngineerID *string
	RejectReason     *string
	DecidedAt        time.Time
}

type LeaveView struct {
	LeaveRequest
	EngineerName       string  `json:"engineerName"`
	ApproverName       *string `json:"approverName,omitempty"`
	BackupEngineerName *string `json:"backupEngineerName,omitempty"`
}
