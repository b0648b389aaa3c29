package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"time"
)

// Dispatcher executes notifier hooks with a per-invocation timeout.
type Dispatcher struct {
	manager *Manager
	timeout time.Duration
}

// NewDispatcher creates a Dispatcher over the given manager. Executions that
// exceed timeout are killed.
func NewDispatcher(manager *Manager, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		manager: manager,
		timeout: timeout,
	}
}

// Dispatch sends the event to every discovered notifier. Individual notifier
// failures are logged and do not affect the others or the caller.
func (d *Dispatcher) Dispatch(event Event) {
	for _, n := range d.manager.List() {
		if _, err := d.Execute(n, event); err != nil {
			log.Printf("notifier %s failed: %v", n.Manifest.Name, err)
		}
	}
}

// Execute runs one notifier with the given event and returns its response.
// The event is marshaled to JSON and sent on stdin; stdout is parsed as a
// Response.
func (d *Dispatcher) Execute(n *Notifier, event Event) (*Response, error) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, n.Executable)
	cmd.Dir = n.Path

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	cmd.Stdin = bytes.NewReader(eventJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("notifier execution timeout after %s", d.timeout)
	}

	if err != nil {
		if msg := stderr.String(); msg != "" {
			return nil, fmt.Errorf("notifier execution failed: %w, stderr: %s", err, msg)
		}
		return nil, fmt.Errorf("notifier execution failed: %w", err)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to parse notifier response: %w, stdout: %s", err, stdout.String())
	}

	return &response, nil
}
