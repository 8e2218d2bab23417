package dbgrep

// Version is reported by --version.
const Version = "1.0.0"

// Exit codes. The taxonomy is flat: anything that is not a connection
// failure is a scan failure.
const (
	ExitSuccess         = 0   // Scan completed, with or without matches
	ExitScanError       = 10  // Any failure after the database was opened
	ExitConnectionError = 127 // Database missing or could not be opened
)
