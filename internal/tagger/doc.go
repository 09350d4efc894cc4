// Package tagger writes container-level metadata and cover art into downloaded audio files.
package tagger
