package models

import "gorm.io/gorm"

// OpenCheckInIndex lets each engineer hold at most one check-in without a check-out time.
const OpenCheckInIndex = "idx_check_ins_one_open"

// CreateIndexes adds the constraints AutoMigrate cannot express from struct tags.
// MySQL has no partial indexes; there the check-in service's row lock is the only guard.
func CreateIndexes(db *gorm.DB) error {
	if db.Dialector.Name() == "mysql" {
		return nil
	}
	return db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS " + OpenCheckInIndex +
		" ON check_ins (engineer_id) WHERE check_out_time IS NULL").Error
}
