// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, bad date, out of range).
	UserError = 1

	// StorageError indicates the storage could not be read or connected.
	StorageError = 2

	// BackendError indicates a suggestion service or network error.
	BackendError = 3
)
