// Package config resolves leadconsole settings from defaults, JSONC config files, a .env file,
// and LEADCONSOLE_* environment variables (highest wins, in that order). CLI flags are applied
// on top by the caller.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tailscale/hujson"

	"leadconsole/internal/store"
)

const (
	// ProjectFileName is looked up in the working directory.
	ProjectFileName = ".leadconsole.json"
	EnvFileName     = ".env"
	envPrefix       = "LEADCONSOLE_"
)

var (
	errConfigInvalid      = errors.New("invalid config")
	errConfigFileNotFound = errors.New("config file not found")
)

type Config struct {
	DataDir              string `json:"data_dir"`
	Backend              string `json:"backend"`
	RedisURL             string `json:"redis_url,omitempty"`
	LogFile              string `json:"log_file,omitempty"`
	DebounceMS           int    `json:"debounce_ms"`
	LatencyMinMS         int    `json:"latency_min_ms"`
	LatencyMaxMS         int    `json:"latency_max_ms"`
	LeadsPerPage         int    `json:"leads_per_page"`
	OpportunitiesPerPage int    `json:"opportunities_per_page"`
}

// fileConfig uses pointers so a file can set a value to zero explicitly.
type fileConfig struct {
	DataDir              *string `json:"data_dir"`
	Backend              *string `json:"backend"`
	RedisURL             *string `json:"redis_url"`
	LogFile              *string `json:"log_file"`
	DebounceMS           *int    `json:"debounce_ms"`
	LatencyMinMS         *int    `json:"latency_min_ms"`
	LatencyMaxMS         *int    `json:"latency_max_ms"`
	LeadsPerPage         *int    `json:"leads_per_page"`
	OpportunitiesPerPage *int    `json:"opportunities_per_page"`
}

// Sources records which files contributed to a Config.
type Sources struct {
	Global  string
	Project string
	DotEnv  string
}

func Default() Config {
	return Config{
		Backend:              string(store.BackendSQLite),
		DebounceMS:           750,
		LatencyMinMS:         500,
		LatencyMaxMS:         1000,
		LeadsPerPage:         10,
		OpportunitiesPerPage: 10,
	}
}

func (c Config) Debounce() time.Duration { return time.Duration(c.DebounceMS) * time.Millisecond }

func (c Config) Latency() (time.Duration, time.Duration) {
	return time.Duration(c.LatencyMinMS) * time.Millisecond, time.Duration(c.LatencyMaxMS) * time.Millisecond
}

type LoadOptions struct {
	WorkDir string
	// ConfigPath is an explicit config file; it must exist when set.
	ConfigPath string
	// Env is the process environment (os.Environ() in production).
	Env []string
}

func lookupEnv(env []string, key string) (string, bool) {
	// Last assignment wins, like the process environment.
	val, found := "", false
	for _, e := range env {
		if after, ok := strings.CutPrefix(e, key+"="); ok {
			val, found = after, true
		}
	}
	return val, found
}

// globalConfigPath is $XDG_CONFIG_HOME/leadconsole/config.json, else ~/.config/leadconsole/config.json.
func globalConfigPath(env []string) string {
	if xdg, ok := lookupEnv(env, "XDG_CONFIG_HOME"); ok && xdg != "" {
		return filepath.Join(xdg, "leadconsole", "config.json")
	}
	if home, ok := lookupEnv(env, "HOME"); ok && home != "" {
		return filepath.Join(home, ".config", "leadconsole", "config.json")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "leadconsole", "config.json")
	}
	return ""
}

func defaultDataDir(env []string) string {
	if home, ok := lookupEnv(env, "HOME"); ok && home != "" {
		return filepath.Join(home, ".leadconsole")
	}
	if dir, err := store.DefaultDir(); err == nil {
		return dir
	}
	return ".leadconsole"
}

// Load resolves the configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config
// 3. Project config (.leadconsole.json) or the explicit ConfigPath
// 4. .env in WorkDir
// 5. LEADCONSOLE_* variables in Env
func Load(opts LoadOptions) (Config, Sources, error) {
	cfg := Default()
	var sources Sources

	if p := globalConfigPath(opts.Env); p != "" {
		fc, loaded, err := loadFile(p, false)
		if err != nil {
			return Config{}, Sources{}, err
		}
		if loaded {
			sources.Global = p
			cfg = merge(cfg, fc)
		}
	}

	projectPath := filepath.Join(opts.WorkDir, ProjectFileName)
	mustExist := false
	if opts.ConfigPath != "" {
		projectPath = opts.ConfigPath
		if !filepath.IsAbs(projectPath) {
			projectPath = filepath.Join(opts.WorkDir, projectPath)
		}
		mustExist = true
	}
	fc, loaded, err := loadFile(projectPath, mustExist)
	if err != nil {
		return Config{}, Sources{}, err
	}
	if loaded {
		sources.Project = projectPath
		cfg = merge(cfg, fc)
	}

	dotEnvPath := filepath.Join(opts.WorkDir, EnvFileName)
	if vars, err := godotenv.Read(dotEnvPath); err == nil {
		sources.DotEnv = dotEnvPath
		if cfg, err = applyEnv(cfg, vars); err != nil {
			return Config{}, Sources{}, fmt.Errorf("%w %s: %w", errConfigInvalid, dotEnvPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, Sources{}, fmt.Errorf("%w %s: %w", errConfigInvalid, dotEnvPath, err)
	}

	vars := map[string]string{}
	for _, e := range opts.Env {
		if k, v, ok := strings.Cut(e, "="); ok && strings.HasPrefix(k, envPrefix) {
			vars[k] = v
		}
	}
	if cfg, err = applyEnv(cfg, vars); err != nil {
		return Config{}, Sources{}, fmt.Errorf("%w (environment): %w", errConfigInvalid, err)
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = defaultDataDir(opts.Env)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, Sources{}, err
	}
	return cfg, sources, nil
}

func loadFile(path string, mustExist bool) (fileConfig, bool, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is intentionally user-controlled
	if err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return fileConfig{}, false, fmt.Errorf("%w: %s", errConfigFileNotFound, path)
			}
			return fileConfig{}, false, nil
		}
		return fileConfig{}, false, err
	}
	fc, err := parse(data)
	if err != nil {
		return fileConfig{}, false, fmt.Errorf("%w %s: %w", errConfigInvalid, path, err)
	}
	return fc, true, nil
}

func parse(data []byte) (fileConfig, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSONC: %w", err)
	}
	var fc fileConfig
	if err := json.Unmarshal(standardized, &fc); err != nil {
		return fileConfig{}, fmt.Errorf("invalid JSON: %w", err)
	}
	return fc, nil
}

func merge(base Config, o fileConfig) Config {
	if o.DataDir != nil {
		base.DataDir = *o.DataDir
	}
	if o.Backend != nil {
		base.Backend = *o.Backend
	}
	if o.RedisURL != nil {
		base.RedisURL = *o.RedisURL
	}
	if o.LogFile != nil {
		base.LogFile = *o.LogFile
	}
	if o.DebounceMS != nil {
		base.DebounceMS = *o.DebounceMS
	}
	if o.LatencyMinMS != nil {
		base.LatencyMinMS = *o.LatencyMinMS
	}
	if o.LatencyMaxMS != nil {
		base.LatencyMaxMS = *o.LatencyMaxMS
	}
	if o.LeadsPerPage != nil {
		base.LeadsPerPage = *o.LeadsPerPage
	}
	if o.OpportunitiesPerPage != nil {
		base.OpportunitiesPerPage = *o.OpportunitiesPerPage
	}
	return base
}

func applyEnv(cfg Config, vars map[string]string) (Config, error) {
	strs := map[string]*string{
		envPrefix + "DATA_DIR":  &cfg.DataDir,
		envPrefix + "BACKEND":   &cfg.Backend,
		envPrefix + "REDIS_URL": &cfg.RedisURL,
		envPrefix + "LOG":       &cfg.LogFile,
	}
	ints := map[string]*int{
		envPrefix + "DEBOUNCE_MS":            &cfg.DebounceMS,
		envPrefix + "LATENCY_MIN_MS":         &cfg.LatencyMinMS,
		envPrefix + "LATENCY_MAX_MS":         &cfg.LatencyMaxMS,
		envPrefix + "LEADS_PER_PAGE":         &cfg.LeadsPerPage,
		envPrefix + "OPPORTUNITIES_PER_PAGE": &cfg.OpportunitiesPerPage,
	}
	for k, v := range vars {
		if p, ok := strs[k]; ok {
			*p = v
			continue
		}
		if p, ok := ints[k]; ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return Config{}, fmt.Errorf("%s: expected an integer, got %q", k, v)
			}
			*p = n
		}
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := store.ParseBackend(c.Backend); err != nil {
		return fmt.Errorf("%w: %w", errConfigInvalid, err)
	}
	if c.DebounceMS < 0 {
		return fmt.Errorf("%w: debounce_ms must not be negative", errConfigInvalid)
	}
	if c.LatencyMinMS < 0 || c.LatencyMaxMS < c.LatencyMinMS {
		return fmt.Errorf("%w: need 0 <= latency_min_ms <= latency_max_ms", errConfigInvalid)
	}
	if c.LeadsPerPage <= 0 || c.OpportunitiesPerPage <= 0 {
		return fmt.Errorf("%w: page sizes must be positive", errConfigInvalid)
	}
	return nil
}

// Format returns the config as indented JSON.
func Format(c Config) (string, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to format config: %w", err)
	}
	return string(b), nil
}
