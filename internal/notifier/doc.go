// Package notifier fans out job state changes to every subscribed listener.
package notifier
