// Package history keeps the capped, newest-first list of finished download jobs
// and persists it as a JSON array.
package history
