package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/PixPMusic/gopher-soundboard/internal/config"
)

// settleDelay lets an editor finish writing before the bank is re-read
var settleDelay = 250 * time.Millisecond

// WatchBank re-reads the sound bank at path whenever it is rewritten and
// passes the new config to onChange. Banks that fail to load or validate are
// logged and skipped. WatchBank blocks until ctx is done.
func WatchBank(ctx context.Context, path string, log *zap.Logger, onChange func(*config.SoundConfig)) error {
	if log == nil {
		log = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Watch the directory: editors often replace the file instead of writing it
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			settle = time.After(settleDelay)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("bank watcher error", zap.Error(err))

		case <-settle:
			settle = nil
			cfg, err := config.LoadSoundConfig(abs)
			if err != nil {
				log.Warn("ignoring sound bank change", zap.String("file", abs), zap.Error(err))
				continue
			}
			log.Info("sound bank changed", zap.String("file", abs))
			onChange(cfg)
		}
	}
}
