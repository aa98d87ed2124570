package conversation

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"resumechat/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// KeywordSource supplies the keyword table currently in effect
type KeywordSource interface {
	Table() *KeywordTable
}

// StaticKeywords is a KeywordSource that never changes
type StaticKeywords struct {
	table *KeywordTable
}

// NewStaticKeywords wraps a fixed table; nil means the defaults
func NewStaticKeywords(table *KeywordTable) *StaticKeywords {
	if table == nil {
		table = DefaultKeywordTable()
	}
	return &StaticKeywords{table: table}
}

// Table implements KeywordSource
func (s *StaticKeywords) Table() *KeywordTable {
	return s.table
}

// KeywordWatcher watches a keyword table file and swaps in the new table on change.
// A file that fails to parse leaves the previous table in place.
type KeywordWatcher struct {
	mu sync.Mutex

	path    string
	current atomic.Pointer[KeywordTable]
	lastMod time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	onReload func(*KeywordTable)
	logger   *errors.Logger
	running  bool
}

// NewKeywordWatcher loads path once and prepares a watcher for it
func NewKeywordWatcher(path string, debounceDelay time.Duration, logger *errors.Logger) (*KeywordWatcher, error) {
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	table, err := LoadKeywordTable(path)
	if err != nil {
		return nil, err
	}

	kw := &KeywordWatcher{
		path:          path,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		logger:        logger,
	}
	kw.current.Store(table)
	if stat, err := os.Stat(path); err == nil {
		kw.lastMod = stat.ModTime()
	}
	return kw, nil
}

// Table implements KeywordSource
func (kw *KeywordWatcher) Table() *KeywordTable {
	return kw.current.Load()
}

// OnReload registers a callback run after each successful reload
func (kw *KeywordWatcher) OnReload(fn func(*KeywordTable)) {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	kw.onReload = fn
}

// Start begins watching the keyword file
func (kw *KeywordWatcher) Start() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()

	if kw.running {
		return fmt.Errorf("keyword watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	kw.fsWatcher = watcher

	// Watch the directory so editors that replace the file by rename are caught
	dir := filepath.Dir(kw.path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	kw.running = true
	go kw.watchLoop()

	kw.logger.Info("Keyword table watcher started",
		"file", kw.path,
		"debounce_delay", kw.debounceDelay)
	return nil
}

// Stop stops the watcher
func (kw *KeywordWatcher) Stop() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()

	if !kw.running {
		return nil
	}

	close(kw.stopChan)
	if kw.debounceTimer != nil {
		kw.debounceTimer.Stop()
	}
	kw.running = false

	if err := kw.fsWatcher.Close(); err != nil {
		kw.logger.LogError(err, "Failed to close file system watcher")
		return err
	}

	kw.logger.Info("Keyword table watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is currently running
func (kw *KeywordWatcher) IsRunning() bool {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	return kw.running
}

func (kw *KeywordWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-kw.fsWatcher.Events:
			if !ok {
				return
			}
			if kw.shouldProcessEvent(event) {
				kw.scheduleReload()
			}

		case err, ok := <-kw.fsWatcher.Errors:
			if !ok {
				return
			}
			kw.logger.LogError(err, "File watcher error")

		case <-kw.reloadChan:
			if kw.hasFileChanged() {
				kw.reload()
			}

		case <-kw.stopChan:
			return
		}
	}
}

func (kw *KeywordWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(kw.path) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (kw *KeywordWatcher) hasFileChanged() bool {
	stat, err := os.Stat(kw.path)
	if err != nil {
		return false
	}
	if stat.ModTime().After(kw.lastMod) {
		kw.lastMod = stat.ModTime()
		return true
	}
	return false
}

// reload parses the file and swaps the table in on success
func (kw *KeywordWatcher) reload() {
	table, err := LoadKeywordTable(kw.path)
	if err != nil {
		kw.logger.LogError(err, "Keyword table reload failed, keeping previous table", "file", kw.path)
		return
	}

	kw.current.Store(table)
	kw.logger.Info("Keyword table reloaded",
		"file", kw.path,
		"role_titles", len(table.RoleTitles))

	kw.mu.Lock()
	callback := kw.onReload
	kw.mu.Unlock()
	if callback != nil {
		callback(table)
	}
}

// scheduleReload schedules a debounced reload
func (kw *KeywordWatcher) scheduleReload() {
	kw.mu.Lock()
	defer kw.mu.Unlock()

	if kw.debounceTimer != nil {
		kw.debounceTimer.Stop()
	}

	kw.debounceTimer = time.AfterFunc(kw.debounceDelay, func() {
		select {
		case kw.reloadChan <- struct{}{}:
		default:
			// reload already scheduled
		}
	})
}
