package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/optipresta/optipresta/internal/session"
)

type fileConfig struct {
	Store           string                `toml:"store"`
	StorePath       string                `toml:"store_path"`
	TZ              string                `toml:"tz"`
	Output          string                `toml:"output"`
	Fields          string                `toml:"fields"`
	Profile         string                `toml:"profile"`
	ExtractEndpoint string                `toml:"extract_endpoint"`
	ExtractAPIKey   string                `toml:"extract_api_key"`
	Username        string                `toml:"username"`
	PasswordHash    string                `toml:"password_hash"`
	NoAuth          bool                  `toml:"no_auth"`
	Listen          string                `toml:"listen"`
	Profiles        map[string]fileConfig `toml:"profiles"`
}

// resolveGlobalOptions layers user config, project config, an explicit
// config file, environment, and finally flags. Later layers win.
func resolveGlobalOptions(cmd *cobra.Command, defaults *globalOptions) (*globalOptions, error) {
	resolved := *defaults

	profile := firstNonEmpty(env("OPTIPRESTA_PROFILE"), defaults.Profile)
	if flagValueChanged(cmd, "profile") {
		profile = defaults.Profile
	}
	if profile == "" {
		profile = "default"
	}
	resolved.Profile = profile

	userPath := defaultUserConfigPath()
	projectPath := ".optipresta.toml"
	configPath := firstNonEmpty(env("OPTIPRESTA_CONFIG"), userPath)
	if flagValueChanged(cmd, "config") {
		configPath = defaults.Config
	}

	if cfg, ok := readConfigFile(userPath); ok {
		applyFileConfig(&resolved, cfg, profile)
	}
	if cfg, ok := readConfigFile(projectPath); ok {
		applyFileConfig(&resolved, cfg, profile)
	}
	if configPath != "" && configPath != userPath && configPath != projectPath {
		if cfg, ok := readConfigFile(configPath); ok {
			applyFileConfig(&resolved, cfg, profile)
		}
	}

	applyEnv(&resolved)
	applyFlags(cmd, &resolved, defaults)

	if resolved.Config == "" {
		resolved.Config = configPath
	}
	if resolved.StorePath == "" {
		resolved.StorePath = defaultStorePath()
	}
	if resolved.SessionPath == "" {
		resolved.SessionPath = session.DefaultPath()
	}
	return &resolved, nil
}

func applyFileConfig(dst *globalOptions, cfg fileConfig, profile string) {
	if p, ok := cfg.Profiles[profile]; ok {
		cfg = mergeFileConfig(cfg, p)
	}
	if cfg.Store != "" {
		dst.Store = cfg.Store
	}
	if cfg.StorePath != "" {
		dst.StorePath = cfg.StorePath
	}
	if cfg.TZ != "" {
		dst.TZ = cfg.TZ
	}
	if cfg.Fields != "" {
		dst.Fields = cfg.Fields
	}
	if cfg.ExtractEndpoint != "" {
		dst.ExtractEndpoint = cfg.ExtractEndpoint
	}
	if cfg.ExtractAPIKey != "" {
		dst.ExtractAPIKey = cfg.ExtractAPIKey
	}
	if cfg.Username != "" {
		dst.Username = cfg.Username
	}
	if cfg.PasswordHash != "" {
		dst.PasswordHash = cfg.PasswordHash
	}
	if cfg.NoAuth {
		dst.NoAuth = true
	}
	if cfg.Listen != "" {
		dst.Listen = cfg.Listen
	}
	if cfg.Output != "" {
		applyOutputMode(dst, cfg.Output)
	}
}

func mergeFileConfig(base, overlay fileConfig) fileConfig {
	if overlay.Store != "" {
		base.Store = overlay.Store
	}
	if overlay.StorePath != "" {
		base.StorePath = overlay.StorePath
	}
	if overlay.TZ != "" {
		base.TZ = overlay.TZ
	}
	if overlay.Output != "" {
		base.Output = overlay.Output
	}
	if overlay.Fields != "" {
		base.Fields = overlay.Fields
	}
	if overlay.Profile != "" {
		base.Profile = overlay.Profile
	}
	if overlay.ExtractEndpoint != "" {
		base.ExtractEndpoint = overlay.ExtractEndpoint
	}
	if overlay.ExtractAPIKey != "" {
		base.ExtractAPIKey = overlay.ExtractAPIKey
	}
	if overlay.Username != "" {
		base.Username = overlay.Username
	}
	if overlay.PasswordHash != "" {
		base.PasswordHash = overlay.PasswordHash
	}
	if overlay.NoAuth {
		base.NoAuth = true
	}
	if overlay.Listen != "" {
		base.Listen = overlay.Listen
	}
	return base
}

func applyOutputMode(dst *globalOptions, v string) {
	switch strings.ToLower(v) {
	case "json":
		dst.JSON, dst.JSONL, dst.Plain = true, false, false
	case "jsonl":
		dst.JSON, dst.JSONL, dst.Plain = false, true, false
	case "plain":
		dst.JSON, dst.JSONL, dst.Plain = false, false, true
	}
}

func applyEnv(dst *globalOptions) {
	if v := env("OPTIPRESTA_STORE"); v != "" {
		dst.Store = v
	}
	if v := env("OPTIPRESTA_STORE_PATH"); v != "" {
		dst.StorePath = v
	}
	if v := env("OPTIPRESTA_TIMEZONE"); v != "" {
		dst.TZ = v
	}
	if v := env("OPTIPRESTA_FIELDS"); v != "" {
		dst.Fields = v
	}
	if v := env("OPTIPRESTA_OUTPUT"); v != "" {
		applyOutputMode(dst, v)
	}
	if v := env("OPTIPRESTA_EXTRACT_ENDPOINT"); v != "" {
		dst.ExtractEndpoint = v
	}
	if v := env("OPTIPRESTA_EXTRACT_API_KEY"); v != "" {
		dst.ExtractAPIKey = v
	}
	if v := env("OPTIPRESTA_LISTEN"); v != "" {
		dst.Listen = v
	}
	if v := env("OPTIPRESTA_SESSION"); v != "" {
		dst.SessionPath = v
	}
	if v := env("OPTIPRESTA_NO_INPUT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			dst.NoInput = b
		}
	}
	if v := env("OPTIPRESTA_NO_AUTH"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			dst.NoAuth = b
		}
	}
}

func applyFlags(cmd *cobra.Command, dst, fromFlags *globalOptions) {
	copyIfChanged(cmd, "json", func() { dst.JSON = fromFlags.JSON })
	copyIfChanged(cmd, "jsonl", func() { dst.JSONL = fromFlags.JSONL })
	copyIfChanged(cmd, "plain", func() { dst.Plain = fromFlags.Plain })
	copyIfChanged(cmd, "fields", func() { dst.Fields = fromFlags.Fields })
	copyIfChanged(cmd, "quiet", func() { dst.Quiet = fromFlags.Quiet })
	copyIfChanged(cmd, "verbose", func() { dst.Verbose = fromFlags.Verbose })
	copyIfChanged(cmd, "no-input", func() { dst.NoInput = fromFlags.NoInput })
	copyIfChanged(cmd, "no-auth", func() { dst.NoAuth = fromFlags.NoAuth })
	copyIfChanged(cmd, "profile", func() { dst.Profile = fromFlags.Profile })
	copyIfChanged(cmd, "config", func() { dst.Config = fromFlags.Config })
	copyIfChanged(cmd, "store", func() { dst.Store = fromFlags.Store })
	copyIfChanged(cmd, "store-path", func() { dst.StorePath = fromFlags.StorePath })
	copyIfChanged(cmd, "tz", func() { dst.TZ = fromFlags.TZ })
	copyIfChanged(cmd, "schema-version", func() { dst.SchemaVersion = fromFlags.SchemaVersion })

	// If exactly one output mode flag is explicitly set, it overrides env/config output mode.
	modeSet := 0
	if flagValueChanged(cmd, "json") && fromFlags.JSON {
		modeSet++
	}
	if flagValueChanged(cmd, "jsonl") && fromFlags.JSONL {
		modeSet++
	}
	if flagValueChanged(cmd, "plain") && fromFlags.Plain {
		modeSet++
	}
	if modeSet == 1 {
		if flagValueChanged(cmd, "json") && fromFlags.JSON {
			dst.JSON, dst.JSONL, dst.Plain = true, false, false
		}
		if flagValueChanged(cmd, "jsonl") && fromFlags.JSONL {
			dst.JSON, dst.JSONL, dst.Plain = false, true, false
		}
		if flagValueChanged(cmd, "plain") && fromFlags.Plain {
			dst.JSON, dst.JSONL, dst.Plain = false, false, true
		}
	}
}

func copyIfChanged(cmd *cobra.Command, name string, fn func()) {
	if flagValueChanged(cmd, name) {
		fn()
	}
}

func flagValueChanged(cmd *cobra.Command, name string) bool {
	if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
		return true
	}
	if f := cmd.InheritedFlags().Lookup(name); f != nil && f.Changed {
		return true
	}
	return false
}

func readConfigFile(path string) (fileConfig, bool) {
	if strings.TrimSpace(path) == "" {
		return fileConfig{}, false
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, false
	}
	var cfg fileConfig
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return fileConfig{}, false
	}
	return cfg, true
}

func defaultUserConfigPath() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, "optipresta", "config.toml")
	}
	home := strings.TrimSpace(os.Getenv("HOME"))
	if home == "" {
		return ""
	}
	return filepath.Join(home, ".config", "optipresta", "config.toml")
}

func env(k string) string { return strings.TrimSpace(os.Getenv(k)) }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
