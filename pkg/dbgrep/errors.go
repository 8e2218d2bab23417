package dbgrep

import "errors"

// Sentinel errors. Callers wrap them with fmt.Errorf("...: %w", ...) and
// ExitCodeForError classifies them with errors.Is.
var (
	// ErrConnection indicates the database file is missing or could not be opened.
	ErrConnection = errors.New("connection failed")

	// ErrScan indicates a failure during introspection, row iteration,
	// pattern compilation or report output.
	ErrScan = errors.New("scan failed")
)

// ExitCodeForError returns the process exit code for err.
// nil maps to ExitSuccess, ErrConnection to ExitConnectionError and
// everything else to ExitScanError.
func ExitCodeForError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrConnection):
		return ExitConnectionError
	default:
		return ExitScanError
	}
}
