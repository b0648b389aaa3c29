// Package main provides a desktop notification notifier.
// It pops a native notification when a monitoring minute closes under the
// blink target, using osascript on macOS and notify-send elsewhere.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Event represents the input from the notifier dispatcher.
type Event struct {
	Minute    int    `json:"minute"`
	Blinks    int    `json:"blinks"`
	Target    int    `json:"target"`
	Timestamp string `json:"timestamp"`
}

// Response represents the output to the notifier dispatcher.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func main() {
	var event Event
	if err := json.NewDecoder(os.Stdin).Decode(&event); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to decode event: %v", err)})
		return
	}

	message := fmt.Sprintf("Only %d of %d blinks in minute %d. Blink!",
		event.Blinks, event.Target, event.Minute+1)

	if err := show("Blinkwell", message); err != nil {
		writeResponse(Response{Error: fmt.Sprintf("failed to show notification: %v", err)})
		return
	}

	writeResponse(Response{Success: true})
}

// show displays a desktop notification with the platform's native mechanism.
func show(title, message string) error {
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf(`display notification %q with title %q`,
			sanitize(message), sanitize(title))
		return exec.Command("osascript", "-e", script).Run()
	default:
		return exec.Command("notify-send", title, message).Run()
	}
}

// sanitize strips quote characters that would break the AppleScript literal.
func sanitize(s string) string {
	return strings.NewReplacer(`"`, "", `\`, "").Replace(s)
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
