package deploy

// FileState is what the engine remembers about one deployed file.
type FileState struct {
	Hash  string `json:"hash"`   // Content fingerprint at deploy time
	ModID string `json:"mod_id"` // author-name id of the owning mod
}

// StateStore is the durable deployment-state backend the engine deploys
// against. Implementations must make each call crash-consistent: a call
// either fully applies or not at all.
type StateStore interface {
	// GetDeploymentState returns every tracked file for a profile, keyed
	// by absolute deployed path.
	GetDeploymentState(profileName string) (map[string]FileState, error)
	// SaveDeploymentState upserts the tracked state for one file.
	SaveDeploymentState(filePath, fileHash, modID, profileName string) error
	// RemoveDeploymentState drops the tracked state for one file.
	RemoveDeploymentState(filePath, profileName string) error
	// ClearDeploymentState drops every tracked file for a profile.
	ClearDeploymentState(profileName string) error
	// LogDeployment records one completed engine operation.
	LogDeployment(profileName, action string, added, updated, removed int) error
}

// ProgressFunc receives a progress report after every discrete deployment
// operation. It is invoked synchronously on the deploying goroutine.
type ProgressFunc func(current, total int, message string)
