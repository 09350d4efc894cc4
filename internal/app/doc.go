// Package app wires the catalog client, tagger, history store, notifier hub and
// download engine together and implements the CLI commands on top of them.
package app
