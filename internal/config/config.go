package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"signalbox/internal/models"
	"signalbox/internal/utils"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

/**
 * Server configuration parameters
 * @property {string} address - TCP listening address (e.g. ":8081")
 * @property {string} socket - Unix socket path used by the CLI, empty disables it
 * @property {string} mode - gin mode (debug/release/test)
 */
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Socket  string `mapstructure:"socket"`
	Mode    string `mapstructure:"mode"`
}

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log file path, "console" or empty logs to stdout
 * @property {int} maxSize - Rotate the log file after this many megabytes
 */
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type StateConfig struct {
	Path string `mapstructure:"path"`
}

/**
 * Backend connection settings
 * @property {time.Duration} timeout - Upper bound for one systemd or docker call
 * @property {string} dockerHost - Docker engine endpoint
 * @property {bool} userBus - Talk to the per-user systemd instead of the system one
 */
type BackendConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	DockerHost string        `mapstructure:"docker_host"`
	UserBus    bool          `mapstructure:"user_bus"`
}

/**
 * External monitor settings
 * @property {string} service - Service id of the monitor; enrichment only runs while it is running
 * @property {string} url - Base URL of the monitor REST API
 * @property {string} label - Prefix put in front of the usage text
 */
type MonitorConfig struct {
	Service string        `mapstructure:"service"`
	URL     string        `mapstructure:"url"`
	Label   string        `mapstructure:"label"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// KnownID is one dongle model. Rtl marks a model driven by librtlsdr that is
// missing from its built-in table, so it is counted in receiver indexes.
type KnownID struct {
	Vendor  uint16 `mapstructure:"vendor"`
	Product uint16 `mapstructure:"product"`
	Name    string `mapstructure:"name"`
	Rtl     bool   `mapstructure:"rtl"`
}

type SdrConfig struct {
	KnownIDs []KnownID `mapstructure:"known_ids"`
}

/**
 * One configured service
 * @property {string} type - Backend kind: systemd, docker or cli
 * @property {string} systemCtlName - Unit name (systemd)
 * @property {string} containerName - Container name (docker)
 * @property {string} cmdLine - Command template with <name> placeholders (cli)
 * @property {map} params - Placeholder values (cli); viper lowercases keys, so placeholder
 *   names and service ids must be lowercase
 */
type ServiceConfig struct {
	Type          string                 `mapstructure:"type"`
	Description   string                 `mapstructure:"description"`
	Link          string                 `mapstructure:"link"`
	RequireSdr    bool                   `mapstructure:"require_sdr"`
	DefaultSdr    string                 `mapstructure:"default_sdr"`
	Autostart     bool                   `mapstructure:"autostart"`
	SystemCtlName string                 `mapstructure:"system_ctl_name"`
	ContainerName string                 `mapstructure:"container_name"`
	CmdLine       string                 `mapstructure:"cmd_line"`
	WorkingDir    string                 `mapstructure:"working_dir"`
	StopTimeout   *time.Duration         `mapstructure:"stop_timeout"`
	Params        map[string]interface{} `mapstructure:"params"`
}

type ActionConfig struct {
	Text    string   `mapstructure:"text"`
	Command []string `mapstructure:"command"`
}

type AppConfig struct {
	Server      ServerConfig             `mapstructure:"server"`
	Log         LogConfig                `mapstructure:"log"`
	State       StateConfig              `mapstructure:"state"`
	Backend     BackendConfig            `mapstructure:"backend"`
	Monitor     MonitorConfig            `mapstructure:"monitor"`
	Credentials string                   `mapstructure:"credentials"`
	Sdr         SdrConfig                `mapstructure:"sdr"`
	Services    map[string]ServiceConfig `mapstructure:"services"`
	Actions     map[string]ActionConfig  `mapstructure:"actions"`
	Links       []models.Link            `mapstructure:"links"`

	// Dir is the directory of the file the configuration was read from.
	Dir string `mapstructure:"-"`
}

// DefaultStopTimeout applies to cli services without stop_timeout.
const DefaultStopTimeout = 5 * time.Second

// ConfigError reports a malformed or incomplete configuration entry.
type ConfigError struct {
	Service string
	Field   string
	Reason  string
}

func (e *ConfigError) Error() string {
	if e.Service == "" {
		return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("config: service %q: %s: %s", e.Service, e.Field, e.Reason)
}

var ErrNoServices = errors.New("config: no services configured")

var placeholderPattern = regexp.MustCompile(`<([^<>\s]+)>`)

// DefaultKnownIDs is the dongle table used when sdr.known_ids is empty.
var DefaultKnownIDs = []KnownID{
	{Vendor: 0x0bda, Product: 0x8176, Name: "RTL2832U (generic RTL-SDR)"},
	{Vendor: 0x0bda, Product: 0x8177, Name: "RTL2832U (generic RTL-SDR)"},
	{Vendor: 0x1d50, Product: 0x6067, Name: "CubicSDR (Cubic Research)"},
	{Vendor: 0x1d50, Product: 0x6079, Name: "CubicSDR (Cubic Research) newer firmware"},
	{Vendor: 0x054c, Product: 0x06e5, Name: "Xunlong (RTL-SDR) USB-3.0 adapter"},
	{Vendor: 0x0bda, Product: 0x2832, Name: "RTL2832U Generic"},
	{Vendor: 0x0403, Product: 0x601f, Name: "LimeSDR Mini"},
	{Vendor: 0x0bda, Product: 0x2838, Name: "RTLSDRBlog v4"},
}

var Config AppConfig

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8081")
	v.SetDefault("server.socket", "/run/signalbox/signalbox.sock")
	v.SetDefault("server.mode", "release")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "console")
	v.SetDefault("log.max_size", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age", 28)
	v.SetDefault("state.path", "/var/lib/signalbox/state.json")
	v.SetDefault("backend.timeout", "10s")
	v.SetDefault("backend.docker_host", "unix:///var/run/docker.sock")
	v.SetDefault("monitor.url", "http://127.0.0.1:2501")
	v.SetDefault("monitor.label", "Kismet")
	v.SetDefault("monitor.timeout", "3s")
	v.SetDefault("credentials", "creds.yml")
}

/**
 * Build a viper instance bound to the config file
 * @param {string} path - Explicit config file, empty searches ".", "/etc/signalbox"
 * @returns {*viper.Viper} Returns the configured viper instance
 */
func newViper(path string) *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("SIGNALBOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/signalbox")
	}
	return v
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", v.ConfigFileUsed(), err)
	}
	if len(cfg.Sdr.KnownIDs) == 0 {
		cfg.Sdr.KnownIDs = DefaultKnownIDs
	}
	if used := v.ConfigFileUsed(); used != "" {
		cfg.Dir = filepath.Dir(used)
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

/**
 * Load application configuration from YAML file
 * @param {string} path - Config file path, empty uses the search path
 * @returns {*AppConfig} Returns decoded and validated configuration
 * @returns {error} Returns read, decode or validation errors
 * @description
 * - Reads the file with viper, applies defaults and SIGNALBOX_* env overrides
 * - Falls back to the built-in dongle table when sdr.known_ids is empty
 * - Validates every service entry; errors are *ConfigError
 */
func LoadConfig(path string) (*AppConfig, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read: %w", err)
	}
	return decode(v)
}

/**
 * Load configuration into the package-level Config and keep watching the file
 * @param {string} path - Config file path
 * @param {func(*AppConfig)} onChange - Called with the new configuration after a valid edit, may be nil
 * @returns {error} Returns the initial load error
 * @description
 * - Invalid edits are reported through onError and leave the running configuration untouched
 */
func Watch(path string, onChange func(*AppConfig), onError func(error)) error {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: read: %w", err)
	}
	cfg, err := decode(v)
	if err != nil {
		return err
	}
	Config = *cfg
	if onChange == nil {
		return nil
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := decode(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		Config = *cfg
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

/**
 * Validate configuration
 * @param {*AppConfig} cfg - Decoded configuration
 * @returns {error} Returns the first *ConfigError found, nil when valid
 * @description
 * - Every service needs a known type and a description
 * - Exactly the locator of its kind must be present
 * - cli command templates must tokenize
 */
func Validate(cfg *AppConfig) error {
	if len(cfg.Services) == 0 {
		return ErrNoServices
	}
	for _, id := range ServiceIDs(cfg) {
		svc := cfg.Services[id]
		kind, err := models.ParseBackendKind(svc.Type)
		if err != nil {
			return &ConfigError{Service: id, Field: "type", Reason: err.Error()}
		}
		if strings.TrimSpace(svc.Description) == "" {
			return &ConfigError{Service: id, Field: "description", Reason: "required"}
		}
		switch kind {
		case models.KindSystemd:
			if svc.SystemCtlName == "" {
				return &ConfigError{Service: id, Field: "system_ctl_name", Reason: "required for systemd services"}
			}
		case models.KindDocker:
			if svc.ContainerName == "" {
				return &ConfigError{Service: id, Field: "container_name", Reason: "required for docker services"}
			}
		case models.KindCLI:
			if svc.CmdLine == "" {
				return &ConfigError{Service: id, Field: "cmd_line", Reason: "required for cli services"}
			}
			if _, err := utils.ParseCommand(svc.CmdLine); err != nil {
				return &ConfigError{Service: id, Field: "cmd_line", Reason: err.Error()}
			}
			for _, m := range placeholderPattern.FindAllStringSubmatch(svc.CmdLine, -1) {
				if m[1] != strings.ToLower(m[1]) {
					return &ConfigError{Service: id, Field: "cmd_line",
						Reason: fmt.Sprintf("placeholder <%s> must be lowercase, params keys are lowercased on load", m[1])}
				}
			}
		}
		if svc.Autostart && kind != models.KindCLI {
			return &ConfigError{Service: id, Field: "autostart", Reason: "only supported for cli services"}
		}
	}
	for i, k := range cfg.Sdr.KnownIDs {
		if k.Vendor == 0 || k.Product == 0 {
			return &ConfigError{Field: fmt.Sprintf("sdr.known_ids[%d]", i), Reason: "vendor and product must be non-zero"}
		}
	}
	for name, act := range cfg.Actions {
		if len(act.Command) == 0 {
			return &ConfigError{Field: "actions." + name, Reason: "command is empty"}
		}
	}
	return nil
}

// ServiceIDs returns the configured service ids in a stable order.
func ServiceIDs(cfg *AppConfig) []string {
	ids := make([]string, 0, len(cfg.Services))
	for id := range cfg.Services {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// StopTimeoutOf resolves the cli stop timeout; a negative value means wait forever.
func (s *ServiceConfig) StopTimeoutOf() time.Duration {
	if s.StopTimeout == nil {
		return DefaultStopTimeout
	}
	return *s.StopTimeout
}

// StringParams flattens the mixed-type placeholder map into strings.
func (s *ServiceConfig) StringParams() map[string]string {
	out := make(map[string]string, len(s.Params))
	for k, v := range s.Params {
		out[k] = fmt.Sprint(v)
	}
	return out
}
