package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, invalid paths, bad flags)
	ExitDataError   = 3 // Data error (malformed input, orphaned pairs)
)
