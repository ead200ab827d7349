package flags

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/lewisedginton/genai_gateway/pkg/logger"
)

// EnableGeminiEnv overrides the file value on every reload, matching startup precedence.
const EnableGeminiEnv = "ENABLE_GEMINI"

// errNoFlag covers an empty document or a missing key, as seen mid-save
// when an editor truncates the file before writing it.
var errNoFlag = errors.New("enable_gemini not set in file")

type fileFlags struct {
	EnableGemini *bool `yaml:"enable_gemini"`
}

// Watcher re-reads the config file when it changes and applies the switch to a Store.
type Watcher struct {
	path  string
	store *Store
	log   logger.Logger
	fsw   *fsnotify.Watcher
}

// NewWatcher watches the directory containing path so editors that replace
// the file via rename are still observed.
func NewWatcher(path string, store *Store, log logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return &Watcher{
		path:  filepath.Clean(path),
		store: store,
		log:   log.WithFields(logger.StringField("component", "flag_watcher"), logger.StringField("path", path)),
		fsw:   fsw,
	}, nil
}

// Run processes file events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	w.log.Info("Watching config file for flag changes")

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := w.Reload(); err != nil {
				w.log.Error("Failed to reload flags, keeping previous values", logger.ErrorField(err))
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("File watcher error", logger.ErrorField(err))
		}
	}
}

// Reload reads the file once and applies the result.
func (w *Watcher) Reload() error {
	enabled, err := readEnableGemini(w.path)
	if err != nil {
		return err
	}
	if w.store.Set(enabled) {
		w.log.Info("Feature flag changed", logger.BoolField("enable_gemini", enabled))
	}
	return nil
}

func readEnableGemini(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var ff fileFlags
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &ff); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}

	if raw := os.Getenv(EnableGeminiEnv); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return false, fmt.Errorf("%s: %w", EnableGeminiEnv, err)
		}
		return v, nil
	}
	if ff.EnableGemini == nil {
		return false, fmt.Errorf("%s: %w", path, errNoFlag)
	}
	return *ff.EnableGemini, nil
}
