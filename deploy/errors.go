package deploy

import "fmt"

// GamePathInvalidError reports a target directory that cannot be deployed
// into: it is missing, or no recognized game executable lives there.
type GamePathInvalidError struct {
	Path   string
	Reason string
}

func (e *GamePathInvalidError) Error() string {
	return fmt.Sprintf("invalid game path %q: %s", e.Path, e.Reason)
}

// DeploymentFailedError wraps the failure that aborted a deployment. When
// a checkpoint was active the filesystem has already been rolled back by
// the time this error surfaces.
type DeploymentFailedError struct {
	ProfileName string
	Err         error
}

func (e *DeploymentFailedError) Error() string {
	return fmt.Sprintf("deployment of profile %q failed: %v", e.ProfileName, e.Err)
}

func (e *DeploymentFailedError) Unwrap() error { return e.Err }

// RollbackError reports that restoring the pre-deployment state could not
// complete. This is fatal: the target directory must be assumed
// inconsistent, and the error must never be swallowed.
type RollbackError struct {
	ProfileName string
	Err         error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("rollback of profile %q failed: %v", e.ProfileName, e.Err)
}

func (e *RollbackError) Unwrap() error { return e.Err }
