// Package model defines the value types shared by the catalog client, the tagger,
// the job engine and the transport layers: tracks, albums, the quality enumeration
// and job snapshots.
package model
