package shared

import "fmt"

var (
	// Database errors
	ErrCorruptDatabase = fmt.Errorf("corrupt database")
	ErrSaveFailed      = fmt.Errorf("failed to save database")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")

	// Fetch errors
	ErrFetchFailed = fmt.Errorf("fetch failed")
	ErrNoFetcher   = fmt.Errorf("fetcher not initialized")

	// Playlist errors
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
