// Package notify runs external notifier hooks when a monitoring minute closes
// under the blink target. Notifiers are small executables discovered from a
// directory of manifests; each invocation sends the minute summary as JSON on
// stdin and expects a JSON result on stdout.
package notify

import "encoding/json"

// Manifest describes a notifier's metadata.
type Manifest struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	Executable  string `json:"executable"`
}

// Event is the payload sent to a notifier when a minute closes under target.
type Event struct {
	Minute    int    `json:"minute"`
	Blinks    int    `json:"blinks"`
	Target    int    `json:"target"`
	Timestamp string `json:"timestamp"`
}

// Response is the result a notifier reports back.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Notifier is a discovered notifier with its manifest and location.
type Notifier struct {
	Manifest   Manifest
	Path       string
	Executable string
}
