package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the configuration at path whenever it is written and
// sends the result on configs. Read errors go to errs. Watching stops when
// done is closed.
func Watch(path string, configs chan<- *Config, errs chan<- error, done <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("can't create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("can't watch %s: %w", path, err)
	}
	go func() {
		// ignore close error
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// editors often rename over the file instead of writing it
				if event.Op&(fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if event.Op&fsnotify.Rename != 0 {
					// the watch was on the old inode
					_ = watcher.Add(path)
				}
				c, err := load(path)
				if err != nil {
					select {
					case errs <- err:
					case <-done:
						return
					}
					continue
				}
				select {
				case configs <- c:
				case <-done:
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				case <-done:
					return
				}
			case <-done:
				return
			}
		}
	}()
	return nil
}
