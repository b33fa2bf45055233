// Package settings provides the billing settings file with validation,
// hot reload and atomic persistence.
package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/aculich/gcp-billing-watcher/internal/logger"
)

// EventType defines the type of settings event.
type EventType int

const (
	EventLoaded EventType = iota
	EventChanged
	EventError
)

// Event represents a settings service event.
type Event struct {
	Type     EventType
	Settings Settings
	Error    error
}

const (
	eventChanSize    = 100
	debounceInterval = 100 * time.Millisecond
)

// Service owns the settings file and watches it for external edits.
type Service struct {
	mu            sync.RWMutex
	stored        Settings
	current       Settings
	filePath      string
	watcher       *fsnotify.Watcher
	eventChan     chan Event
	stopChan      chan struct{}
	debounceTimer *time.Timer
}

// New loads the settings file, creating it with defaults when missing,
// and starts watching it.
func New(filePath string) (*Service, error) {
	if filePath == "" {
		return nil, fmt.Errorf("settings path is empty")
	}

	s := &Service{
		filePath:  filePath,
		eventChan: make(chan Event, eventChanSize),
		stopChan:  make(chan struct{}),
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create settings directory: %w", err)
	}

	stored, err := readFile(filePath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		stored = Defaults()
		if err := writeFile(filePath, stored); err != nil {
			return nil, fmt.Errorf("failed to create settings file: %w", err)
		}
	}
	s.stored = stored
	s.current = stored.withEnv()
	if err := s.current.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	if err := s.startWatcher(); err != nil {
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}

	s.sendEvent(Event{Type: EventLoaded, Settings: s.current})
	return s, nil
}

// Events returns the event channel for subscribing to settings changes.
func (s *Service) Events() <-chan Event {
	return s.eventChan
}

// Current returns the effective settings, environment overrides applied.
func (s *Service) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path returns the settings file path.
func (s *Service) Path() string {
	return s.filePath
}

// SetProjectID validates id and persists it to the settings file.
func (s *Service) SetProjectID(id string) error {
	id = strings.TrimSpace(id)
	if err := ValidateProjectID(id); err != nil {
		return err
	}

	s.mu.Lock()
	next := s.stored
	next.ProjectID = id
	if err := writeFile(s.filePath, next); err != nil {
		s.mu.Unlock()
		return err
	}
	changed := s.apply(next)
	current := s.current
	s.mu.Unlock()

	logger.Info("project id saved", "project", id, "path", s.filePath)
	if changed {
		s.sendEvent(Event{Type: EventChanged, Settings: current})
	}
	return nil
}

// apply stores next and reports whether the effective settings changed.
// Caller must hold the lock.
func (s *Service) apply(next Settings) bool {
	s.stored = next
	effective := next.withEnv()
	if effective == s.current {
		return false
	}
	s.current = effective
	return true
}

func readFile(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	return parse(data)
}

// parse decodes YAML over the defaults so omitted keys keep their default.
func parse(data []byte) (Settings, error) {
	out := Defaults()
	if len(strings.TrimSpace(string(data))) == 0 {
		return out, nil
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return out, nil
}

// writeFile writes the settings to a temp file first, then renames it.
func writeFile(path string, st Settings) error {
	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	tmpFile := path + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		if removeErr := os.Remove(tmpFile); removeErr != nil {
			logger.Error("failed to remove temp file", "error", removeErr)
		}
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// startWatcher watches the settings directory so renames onto the file
// are seen as well as in-place writes.
func (s *Service) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	s.watcher = watcher

	if err := watcher.Add(filepath.Dir(s.filePath)); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return err
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Service) watchLoop() {
	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(s.filePath) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			s.mu.Lock()
			if s.debounceTimer != nil {
				s.debounceTimer.Stop()
			}
			s.debounceTimer = time.AfterFunc(debounceInterval, s.handleFileChange)
			s.mu.Unlock()

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// handleFileChange reloads settings after an external change. Invalid
// content is reported and the previous settings stay in effect.
func (s *Service) handleFileChange() {
	next, err := readFile(s.filePath)
	if err == nil {
		err = next.withEnv().Validate()
	}
	if err != nil {
		logger.Warn("settings reload rejected", "path", s.filePath, "error", err)
		s.sendEvent(Event{Type: EventError, Error: err})
		return
	}

	s.mu.Lock()
	changed := s.apply(next)
	current := s.current
	s.mu.Unlock()

	if changed {
		s.sendEvent(Event{Type: EventChanged, Settings: current})
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Service) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Service) Close() error {
	close(s.stopChan)

	s.mu.Lock()
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.mu.Unlock()

	if s.watcher != nil {
		return s.watcher.Close()
	}
	return nil
}
