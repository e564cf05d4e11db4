package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/fulmenhq/nuspecgen/pkg/remote"
	"github.com/fulmenhq/nuspecgen/pkg/resolver"
	"github.com/spf13/viper"
)

// Config holds all configuration for nuspecgen
type Config struct {
	Scaffold ScaffoldConfig `mapstructure:"scaffold"`
	GitHub   GitHubConfig   `mapstructure:"github"`
	Proxy    ProxyConfig    `mapstructure:"proxy"`
	Icon     IconConfig     `mapstructure:"icon"`
	Version  VersionConfig  `mapstructure:"version"`
	Probe    ProbeConfig    `mapstructure:"probe"`
}

// ScaffoldConfig selects the descriptor scaffolding tool
type ScaffoldConfig struct {
	Tool string `mapstructure:"tool"`
	// Args are appended after the spec command and -force
	Args []string `mapstructure:"args"`
	// SearchPaths are checked after PATH when locating the tool
	SearchPaths []string `mapstructure:"search_paths"`
}

// GitHubConfig holds remote API settings
type GitHubConfig struct {
	APIURL    string        `mapstructure:"api_url"`
	UserAgent string        `mapstructure:"user_agent"`
	Token     string        `mapstructure:"token"`
	Timeout   time.Duration `mapstructure:"timeout"` // 0 = no timeout
}

// ProxyConfig holds the forward proxy URL, user-info included
type ProxyConfig struct {
	URL string `mapstructure:"url"`
}

// IconConfig controls iconUrl resolution
type IconConfig struct {
	FileName string `mapstructure:"file_name"`
	// Template is a handlebars template over repository, owner, name,
	// branch and path
	Template    string `mapstructure:"template"`
	FallbackURL string `mapstructure:"fallback_url"`
}

// VersionConfig controls version resolution
type VersionConfig struct {
	SourceFile string `mapstructure:"source_file"`
	Default    string `mapstructure:"default"`
}

// ProbeConfig controls the project tree search
type ProbeConfig struct {
	// RespectIgnore skips files excluded by .gitignore or .nuspecgenignore
	RespectIgnore bool `mapstructure:"respect_ignore"`
}

var defaultConfig = Config{
	Scaffold: ScaffoldConfig{
		Tool:        "nuget",
		Args:        []string{},
		SearchPaths: []string{},
	},
	GitHub: GitHubConfig{
		APIURL:  "https://api.github.com",
		Timeout: 0,
	},
	Icon: IconConfig{
		FileName:    "logo.png",
		Template:    resolver.DefaultIconTemplate,
		FallbackURL: resolver.DefaultIconFallbackURL,
	},
	Version: VersionConfig{
		SourceFile: "AssemblyInfo.cs",
		Default:    "1.0.0",
	},
}

// LoadOptions tells LoadConfig where to look
type LoadOptions struct {
	// ConfigFile is an explicit file; it must exist when set
	ConfigFile string
	// ProjectDir is searched for .nuspecgen.yaml before $HOME
	ProjectDir string
}

// LoadConfig loads configuration from defaults, an optional config file and
// the environment
func LoadConfig(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault("scaffold.tool", defaultConfig.Scaffold.Tool)
	v.SetDefault("scaffold.args", defaultConfig.Scaffold.Args)
	v.SetDefault("scaffold.search_paths", defaultConfig.Scaffold.SearchPaths)
	v.SetDefault("github.api_url", defaultConfig.GitHub.APIURL)
	v.SetDefault("github.user_agent", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.timeout", defaultConfig.GitHub.Timeout)
	v.SetDefault("proxy.url", "")
	v.SetDefault("icon.file_name", defaultConfig.Icon.FileName)
	v.SetDefault("icon.template", defaultConfig.Icon.Template)
	v.SetDefault("icon.fallback_url", defaultConfig.Icon.FallbackURL)
	v.SetDefault("version.source_file", defaultConfig.Version.SourceFile)
	v.SetDefault("version.default", defaultConfig.Version.Default)
	v.SetDefault("probe.respect_ignore", defaultConfig.Probe.RespectIgnore)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName(".nuspecgen")
		v.SetConfigType("yaml")
		if opts.ProjectDir != "" {
			v.AddConfigPath(opts.ProjectDir)
		}
		v.AddConfigPath("$HOME")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("NUSPECGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Well-known variables; the prefixed form wins when both are set
	if err := v.BindEnv("proxy.url", "NUSPECGEN_PROXY_URL", remote.ProxyEnvVar); err != nil {
		return nil, err
	}
	if err := v.BindEnv("github.token", "NUSPECGEN_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values that would otherwise fail late in a run
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Scaffold.Tool) == "" {
		errs = append(errs, errors.New("scaffold.tool must not be empty"))
	}
	if u, err := url.Parse(c.GitHub.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("github.api_url %q is not an absolute URL", c.GitHub.APIURL))
	}
	if c.GitHub.Timeout < 0 {
		errs = append(errs, errors.New("github.timeout must not be negative"))
	}
	if strings.TrimSpace(c.Icon.FileName) == "" {
		errs = append(errs, errors.New("icon.file_name must not be empty"))
	}
	if strings.TrimSpace(c.Version.SourceFile) == "" {
		errs = append(errs, errors.New("version.source_file must not be empty"))
	}
	if strings.TrimSpace(c.Version.Default) == "" {
		errs = append(errs, errors.New("version.default must not be empty"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// ProxySettings parses the configured proxy URL. A missing or malformed
// value is a *remote.ConfigurationError.
func (c *Config) ProxySettings() (*remote.ProxyConfig, error) {
	return remote.ParseProxy(c.Proxy.URL)
}

// PipelineOptions maps the scaffold, icon and version sections onto resolver
// options.
func (c *Config) PipelineOptions(noOp bool) resolver.Options {
	return resolver.Options{
		Tool:            c.Scaffold.Tool,
		ExtraArgs:       c.Scaffold.Args,
		IconFileName:    c.Icon.FileName,
		IconTemplate:    c.Icon.Template,
		IconFallbackURL: c.Icon.FallbackURL,
		VersionFile:     c.Version.SourceFile,
		DefaultVersion:  c.Version.Default,
		RespectIgnore:   c.Probe.RespectIgnore,
		NoOp:            noOp,
	}
}

// ClientOptions builds the remote client options from the GitHub and proxy
// sections.
func (c *Config) ClientOptions(defaultUserAgent string) (remote.Options, error) {
	proxy, err := c.ProxySettings()
	if err != nil {
		return remote.Options{}, err
	}
	ua := c.GitHub.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	return remote.Options{
		Proxy:     proxy,
		UserAgent: ua,
		Token:     c.GitHub.Token,
		Timeout:   c.GitHub.Timeout,
	}, nil
}
