package config

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the global configuration whenever the config file changes.
// It blocks until ctx is cancelled, so run it in its own goroutine. Missing
// config directories are not an error; the watcher simply never fires.
func Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	dir := filepath.Dir(Get().ConfigFilePath())
	if err := watcher.Add(dir); err != nil {
		// Nothing to watch; tunables stay at their startup values.
		log.Printf("config watch disabled: %v", err)
		<-ctx.Done()
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != ConfigFileName {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := Reload(); err != nil {
				log.Printf("config reload failed: %v", err)
				continue
			}
			log.Printf("configuration reloaded from %s", event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("config watch error: %v", err)
		}
	}
}
