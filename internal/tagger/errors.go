package tagger

import "errors"

// Static error definitions for better error handling.
var (
	// ErrTaggingFailed indicates that the tagging backend could not produce the output file.
	ErrTaggingFailed = errors.New("tagging failed")
	// ErrTaggingTimeout indicates that the tagging backend exceeded its time limit and was stopped.
	ErrTaggingTimeout = errors.New("tagging timed out")
	// ErrEmptyInputPath indicates that the input file path is empty.
	ErrEmptyInputPath = errors.New("input path cannot be empty")
	// ErrEmptyOutputPath indicates that the output file path is empty.
	ErrEmptyOutputPath = errors.New("output path cannot be empty")
	// ErrSamePaths indicates that input and output point to the same file.
	ErrSamePaths = errors.New("input and output paths must differ")
)
