package main

// Exit codes
const (
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no site found, invalid pubsite.yml, bibliography not found)
	ExitDataError   = 3 // Data error (bibliography could not be loaded, malformed page)
)
