// Package formatter derives sanitized file and folder names from catalog metadata.
// Every function is pure: the same input always yields the same name, which keeps
// re-runs idempotent and lets a download land on the path a previous run used.
package formatter
