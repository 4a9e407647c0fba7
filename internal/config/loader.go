package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const (
	gatewayFile = "gateway.yaml"
	modelsFile  = "models.yaml"
)

// reloadDelay coalesces the burst of events editors emit for a single save.
const reloadDelay = 200 * time.Millisecond

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:default}. A set but empty variable
// wins over the default.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		if val, ok := os.LookupEnv(m[1]); ok {
			return val
		}
		return m[2]
	})
}

// LoadFile reads a YAML file, expands env vars, and unmarshals into dest.
// Fields absent from the file keep whatever dest already holds.
func LoadFile(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), dest); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Loader owns the live gateway and model configuration. Readers always see a
// complete, validated snapshot; a reload that fails to parse or validate
// leaves the previous snapshot in place.
type Loader struct {
	configDir string
	logger    *slog.Logger

	mu     sync.RWMutex
	cfg    *Config
	models *ModelsConfig
	hooks  []func()
}

func NewLoader(configDir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{configDir: configDir, logger: logger}
}

// Load reads gateway.yaml (required) and models.yaml (optional, overlays the
// built-in model defaults).
func (l *Loader) Load() error {
	cfg := DefaultConfig()
	if err := LoadFile(filepath.Join(l.configDir, gatewayFile), cfg); err != nil {
		return fmt.Errorf("load gateway config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate gateway config: %w", err)
	}

	models := DefaultModels()
	if err := LoadFile(filepath.Join(l.configDir, modelsFile), models); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load models config: %w", err)
	}

	l.mu.Lock()
	l.cfg = cfg
	l.models = models
	l.mu.Unlock()

	l.logger.Info("configuration loaded",
		"dir", l.configDir,
		"environment", cfg.Server.Environment,
		"cache_backend", cfg.Cache.Backend,
		"has_api_key", cfg.Gemini.APIKey != "",
	)
	return nil
}

func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

func (l *Loader) Models() *ModelsConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.models
}

// OnReload registers fn to run after every successful reload.
func (l *Loader) OnReload(fn func()) {
	l.mu.Lock()
	l.hooks = append(l.hooks, fn)
	l.mu.Unlock()
}

// Watch reloads on changes to YAML files in the config directory and to Rego
// files in the policy bundle directory, until ctx is done.
func (l *Loader) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(l.configDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir %s: %w", l.configDir, err)
	}
	if dir := l.policyDir(); dir != "" {
		if err := watcher.Add(dir); err != nil {
			l.logger.Warn("not watching policy bundle", "dir", dir, "error", err)
		}
	}

	go l.watch(ctx, watcher)
	return nil
}

func (l *Loader) watch(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	timer := time.NewTimer(reloadDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !relevant(event) {
				continue
			}
			l.logger.Debug("config file changed", "file", event.Name, "op", event.Op.String())
			timer.Reset(reloadDelay)
		case <-timer.C:
			l.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			l.logger.Error("config watcher error", "error", err)
		}
	}
}

func (l *Loader) reload() {
	if err := l.Load(); err != nil {
		l.logger.Error("config reload failed, keeping previous configuration", "error", err)
		return
	}
	l.mu.RLock()
	hooks := append([]func(){}, l.hooks...)
	l.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}
}

// policyDir resolves the policy bundle path relative to the working directory,
// matching how the policy evaluator opens it.
func (l *Loader) policyDir() string {
	cfg := l.Config()
	if cfg == nil || !cfg.Filter.Policy.Enabled || cfg.Filter.Policy.BundlePath == "" {
		return ""
	}
	if info, err := os.Stat(cfg.Filter.Policy.BundlePath); err != nil || !info.IsDir() {
		return ""
	}
	return cfg.Filter.Policy.BundlePath
}

func relevant(e fsnotify.Event) bool {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) && !e.Has(fsnotify.Rename) {
		return false
	}
	switch filepath.Ext(e.Name) {
	case ".yaml", ".yml", ".rego":
		return true
	}
	return false
}
