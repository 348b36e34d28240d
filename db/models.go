package db

import (
	"gorm.io/gorm"
)

// DeploymentState tracks one deployed file: which profile put it there,
// which mod it belongs to, and the content fingerprint it had when copied.
// The set of rows for a profile is the ground truth future deployments
// diff against.
type DeploymentState struct {
	gorm.Model
	ProfileName string `gorm:"uniqueIndex:idx_profile_file"`
	FilePath    string `gorm:"uniqueIndex:idx_profile_file"` // Absolute destination path
	FileHash    string // Content fingerprint at deploy time
	ModID       string // author-name id of the owning mod
}

// DeploymentLog records one completed engine operation per row, for
// history and troubleshooting.
type DeploymentLog struct {
	gorm.Model
	ProfileName string `gorm:"index"`
	Action      string // "deploy", "rollback", "clear"
	Added       int
	Updated     int
	Removed     int
}
