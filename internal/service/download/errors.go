package download

import "errors"

// Static error definitions for better error handling.
var (
	// ErrEmptyTrackID indicates that a track submission has no track identifier.
	ErrEmptyTrackID = errors.New("track ID cannot be empty")
	// ErrEmptyAlbumID indicates that an album submission has no album identifier.
	ErrEmptyAlbumID = errors.New("album ID cannot be empty")
	// ErrEngineClosed indicates that the engine no longer accepts jobs.
	ErrEngineClosed = errors.New("download engine is closed")
	// ErrStreamResolutionFailed indicates that no playable URL could be obtained for a track.
	ErrStreamResolutionFailed = errors.New("stream resolution failed")
	// ErrTempIOFailure indicates a disk error while staging or placing files.
	ErrTempIOFailure = errors.New("temporary storage I/O failure")
	// ErrIncompleteDownload indicates that the downloaded size doesn't match the announced size.
	ErrIncompleteDownload = errors.New("incomplete download")
	// ErrMoveFailed indicates that a staged album could be neither moved nor copied into the library.
	ErrMoveFailed = errors.New("album promotion failed")
	// ErrFallbackCopyFailed indicates that tagging failed and the raw copy failed too.
	ErrFallbackCopyFailed = errors.New("fallback copy failed")
	// ErrEmptyAlbum indicates that the catalog returned an album without tracks.
	ErrEmptyAlbum = errors.New("album has no tracks")
	// ErrAllTracksFailed indicates that no track of an album could be downloaded.
	ErrAllTracksFailed = errors.New("all album tracks failed")
)
