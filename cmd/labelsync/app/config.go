package app

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/labelsync/internal/appcontext"
	"github.com/agentstation/labelsync/pkg/constants"
	"github.com/agentstation/labelsync/pkg/dataset"
	"github.com/agentstation/labelsync/pkg/errors"
)

// envPrefix namespaces dataset settings in the environment (LABELSYNC_ROOT, ...).
const envPrefix = "LABELSYNC"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Dataset configuration
	Root            string
	LabelsRoot      string
	Splits          []string
	ImageExtensions []string
	LabelExtension  string
	Classes         map[string]string
	ClassesFile     string
	RequiredClasses []string
	SampleLimit     int
	Workers         int
	Strategy        string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables
// 3. .env files
// 4. Config file (configFile, or .labelsync.yaml in $HOME or .)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "cannot read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".labelsync")
		// a missing default config file is fine
		_ = v.ReadInConfig()
	}

	root := v.GetString("root")
	labelsRoot := v.GetString("labels_root")
	if labelsRoot == "" {
		labelsRoot = dataset.NewLayout(root).LabelsRoot()
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Root:            root,
		LabelsRoot:      labelsRoot,
		Splits:          stringSlice(v, "splits"),
		ImageExtensions: stringSlice(v, "image_extensions"),
		LabelExtension:  v.GetString("label_extension"),
		Classes:         v.GetStringMapString("classes"),
		ClassesFile:     v.GetString("classes_file"),
		RequiredClasses: stringSlice(v, "required_classes"),
		SampleLimit:     v.GetInt("sample_limit"),
		Workers:         v.GetInt("workers"),
		Strategy:        v.GetString("strategy"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	classes := make(map[string]string)
	for id, name := range constants.DefaultClasses() {
		classes[strconv.Itoa(id)] = name
	}

	v.SetDefault("root", constants.DefaultRoot)
	v.SetDefault("labels_root", "")
	v.SetDefault("splits", constants.DefaultSplits())
	v.SetDefault("image_extensions", constants.DefaultImageExtensions())
	v.SetDefault("label_extension", constants.LabelExtension)
	v.SetDefault("classes", classes)
	v.SetDefault("classes_file", "")
	v.SetDefault("required_classes", []string{})
	v.SetDefault("sample_limit", constants.DefaultSampleLimit)
	v.SetDefault("workers", constants.DefaultWorkers)
	v.SetDefault("strategy", "mtime")
}

// Validate checks the settings that must be sound before any I/O.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return errors.NewConfigError("config", "root must not be empty", nil)
	}
	if len(c.Splits) == 0 {
		return errors.NewConfigError("config", "at least one split is required", nil)
	}
	if c.Workers < 1 {
		return errors.NewConfigError("config", "workers must be at least 1", nil)
	}
	return nil
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Settings converts the configuration into the settings commands consume.
func (c *Config) Settings() appcontext.Settings {
	return appcontext.Settings{
		Root:            filepath.Clean(c.Root),
		LabelsRoot:      filepath.Clean(c.LabelsRoot),
		Splits:          append([]string(nil), c.Splits...),
		ImageExtensions: append([]string(nil), c.ImageExtensions...),
		LabelExtension:  c.LabelExtension,
		ClassesFile:     c.ClassesFile,
		RequiredClasses: append([]string(nil), c.RequiredClasses...),
		SampleLimit:     c.SampleLimit,
		Workers:         c.Workers,
		Strategy:        c.Strategy,
	}
}

// stringSlice reads a list setting. Environment values may be comma- or
// space-separated.
func stringSlice(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// loadEnvFiles loads environment variables from .env files. Variables that
// are already set keep their value.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
