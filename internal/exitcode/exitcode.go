// Package exitcode defines the process exit codes of taskview.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError covers bad arguments, failed validation and unknown task ids.
	UserError = 1

	// AuthError indicates a missing, rejected or unreadable API token.
	AuthError = 2

	// BackendError indicates the API or the network failed.
	BackendError = 3
)
