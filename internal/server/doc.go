// Package server exposes the download engine over HTTP.
//
// The REST surface lives under /api, realtime job events are streamed over a
// WebSocket at /ws, and Prometheus metrics are served at /metrics.
package server
