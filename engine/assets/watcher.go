package assets

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/lumen/engine/core"
)

// ShaderWatcher observes the compiled shader directory and remembers which
// modules changed since the renderer last asked. The render loop polls
// TakeChanged once per frame and rebuilds the affected pipelines.
type ShaderWatcher struct {
	fsnotify *fsnotify.Watcher
	done     chan struct{}

	mutex   sync.Mutex
	changed map[string]struct{}
}

func NewShaderWatcher(dir string) (*ShaderWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &ShaderWatcher{
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		changed:  make(map[string]struct{}),
	}
	if err := w.addRecursive(dir); err != nil {
		fsWatch.Close()
		return nil, err
	}
	go w.start()
	return w, nil
}

func (w *ShaderWatcher) Shutdown() error {
	close(w.done)
	return nil
}

// TakeChanged returns the shader files modified since the previous call and
// resets the changed set.
func (w *ShaderWatcher) TakeChanged() []string {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if len(w.changed) == 0 {
		return nil
	}
	out := make([]string, 0, len(w.changed))
	for p := range w.changed {
		out = append(out, p)
	}
	w.changed = make(map[string]struct{})
	return out
}

func (w *ShaderWatcher) start() {
	for {
		select {
		case e := <-w.fsnotify.Events:
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					w.addRecursive(e.Name)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && filepath.Ext(e.Name) == ".spv" {
				core.LogInfo("shader %s changed on disk", e.Name)
				w.mutex.Lock()
				w.changed[e.Name] = struct{}{}
				w.mutex.Unlock()
			}

		case e := <-w.fsnotify.Errors:
			core.LogError(e.Error())

		case <-w.done:
			w.fsnotify.Close()
			return
		}
	}
}

func (w *ShaderWatcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}
