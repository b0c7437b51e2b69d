package preview

import (
	"log/slog"
	"os"
	"time"
)

const defaultPollInterval = 250 * time.Millisecond

// watcher polls a file's mtime and hands changed content to onChange.
// Polling keeps the dependency surface flat and works on every
// filesystem an editor might save to.
type watcher struct {
	path     string
	interval time.Duration
	onChange func(content string)
	stop     chan struct{}
	done     chan struct{}
}

func newWatcher(path string, interval time.Duration, onChange func(string)) *watcher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &watcher{
		path:     path,
		interval: interval,
		onChange: onChange,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// run polls until stopped. The first read fires immediately so the
// preview is populated on startup.
func (w *watcher) run() {
	defer close(w.done)

	var lastMod time.Time
	read := func() {
		info, err := os.Stat(w.path)
		if err != nil {
			slog.Warn("cannot stat watched file", "path", w.path, "error", err)
			return
		}
		if !info.ModTime().After(lastMod) {
			return
		}
		lastMod = info.ModTime()

		data, err := os.ReadFile(w.path)
		if err != nil {
			slog.Warn("cannot read watched file", "path", w.path, "error", err)
			return
		}
		w.onChange(string(data))
	}

	read()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			read()
		case <-w.stop:
			return
		}
	}
}

func (w *watcher) close() {
	close(w.stop)
	<-w.done
}
