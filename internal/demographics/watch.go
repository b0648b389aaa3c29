package demographics

import (
	"context"
	"log"

	"github.com/fsnotify/fsnotify"
)

// Watch monitors the catalog file and reloads it each time the file is
// written, so dropdown data can be updated without restarting the server.
// It runs until ctx is cancelled.
//
// If a reload fails (e.g. the file is mid-write or malformed), the error is
// logged and the previous catalog remains active.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(c.path); err != nil {
		return err
	}

	log.Printf("watching demographics catalog: %s", c.path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			// Editors often replace the file via rename (atomic save), so
			// catch Create as well as Write.
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			if err := c.Reload(); err != nil {
				log.Printf("demographics reload failed, keeping previous catalog: %v", err)
				continue
			}
			log.Printf("demographics catalog reloaded: %d rows", c.Len())

			// Re-add the file in case an atomic save replaced the inode.
			_ = watcher.Add(c.path)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("demographics watcher error: %v", err)
		}
	}
}
