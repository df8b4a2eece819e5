package config

import (
	"sync"
	"time"
)

// Section names as they appear in the YAML file.
const (
	SectionAnalysis = "analysis"
	SectionLog      = "log"
	SectionServer   = "server"
)

// reloadable lists the sections a running server can apply without restart.
// The listen address and body cap are fixed once the server is up.
var reloadable = map[string]bool{
	SectionAnalysis: true,
	SectionLog:      true,
	SectionServer:   false,
}

// ReloadResult represents the result of a reload for a single section.
type ReloadResult struct {
	Section     string
	CanReload   bool
	WasReloaded bool
}

// ReloadManager re-reads the settings file on request and keeps the last
// good configuration when the new one fails to load.
type ReloadManager struct {
	mu sync.RWMutex

	currentConfig Config
	configPath    string

	// debounceTime is how long after a reload further requests are ignored
	debounceTime time.Duration
	lastReload   time.Time

	onReloadComplete func(cfg Config, results []ReloadResult)
}

// NewReloadManager creates a new reload manager.
func NewReloadManager(cfg Config, path string) *ReloadManager {
	return &ReloadManager{
		currentConfig: cfg,
		configPath:    path,
		debounceTime:  100 * time.Millisecond,
	}
}

// SetDebounceTime sets how long to ignore requests after a reload.
func (rm *ReloadManager) SetDebounceTime(d time.Duration) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.debounceTime = d
}

// OnReloadComplete sets the callback run after a reload changed something.
// It is called with the new config while the manager's lock is held, so it
// must not call back into the manager.
func (rm *ReloadManager) OnReloadComplete(fn func(cfg Config, results []ReloadResult)) {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.onReloadComplete = fn
}

// DetectChanges returns the sections of newConfig that differ from the
// current config.
func (rm *ReloadManager) DetectChanges(newConfig Config) []string {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return detectChanges(rm.currentConfig, newConfig)
}

func detectChanges(old, cur Config) []string {
	var changed []string
	if old.Analysis != cur.Analysis {
		changed = append(changed, SectionAnalysis)
	}
	if old.Log != cur.Log {
		changed = append(changed, SectionLog)
	}
	if old.Server != cur.Server {
		changed = append(changed, SectionServer)
	}
	return changed
}

// ReloadFromFile loads the settings file again and applies it. A nil result
// with nil error means the request fell inside the debounce window or the
// manager has no file to read.
func (rm *ReloadManager) ReloadFromFile() ([]ReloadResult, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.configPath == "" || time.Since(rm.lastReload) < rm.debounceTime {
		return nil, nil
	}

	newConfig, err := Load(rm.configPath)
	if err != nil {
		return nil, err
	}
	return rm.reloadWithConfigLocked(newConfig), nil
}

// ReloadWithConfig applies a provided config (useful for testing).
func (rm *ReloadManager) ReloadWithConfig(newConfig Config) ([]ReloadResult, error) {
	if err := newConfig.Validate(); err != nil {
		return nil, err
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return rm.reloadWithConfigLocked(newConfig), nil
}

// reloadWithConfigLocked applies reloadable sections (must hold lock).
// Sections that cannot be reloaded keep their current values.
func (rm *ReloadManager) reloadWithConfigLocked(newConfig Config) []ReloadResult {
	changed := detectChanges(rm.currentConfig, newConfig)
	rm.lastReload = time.Now()
	if len(changed) == 0 {
		return nil
	}

	next := rm.currentConfig
	results := make([]ReloadResult, 0, len(changed))
	for _, section := range changed {
		result := ReloadResult{Section: section, CanReload: reloadable[section]}
		if result.CanReload {
			switch section {
			case SectionAnalysis:
				next.Analysis = newConfig.Analysis
			case SectionLog:
				next.Log = newConfig.Log
			}
			result.WasReloaded = true
		}
		results = append(results, result)
	}
	rm.currentConfig = next

	if rm.onReloadComplete != nil {
		rm.onReloadComplete(next, results)
	}
	return results
}

// GetCurrentConfig returns the current configuration.
func (rm *ReloadManager) GetCurrentConfig() Config {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.currentConfig
}

// GetConfigPath returns the config file path.
func (rm *ReloadManager) GetConfigPath() string {
	return rm.configPath
}

// NonReloadable filters results down to sections that changed on disk but
// need a restart to take effect.
func NonReloadable(results []ReloadResult) []string {
	var out []string
	for _, r := range results {
		if !r.CanReload {
			out = append(out, r.Section)
		}
	}
	return out
}
