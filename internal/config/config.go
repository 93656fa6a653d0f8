package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Shapefile ShapefileConfig `yaml:"shapefile" mapstructure:"shapefile"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// ShapefileConfig locates the district shapefile and controls normalization.
type ShapefileConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	Name        string `yaml:"name" mapstructure:"name"`
	Reproject   bool   `yaml:"reproject" mapstructure:"reproject"`
	CollapseAll bool   `yaml:"collapse_all" mapstructure:"collapse_all"`
	// DefaultEPSG is assumed when the shapefile has no .prj sidecar.
	DefaultEPSG int `yaml:"default_epsg" mapstructure:"default_epsg"`
}

// FetchConfig selects the TIGER/Line congressional district release.
type FetchConfig struct {
	Year     int    `yaml:"year" mapstructure:"year"`
	Congress int    `yaml:"congress" mapstructure:"congress"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
}

// ServerConfig configures the dashboard HTTP server.
type ServerConfig struct {
	Port         int      `yaml:"port" mapstructure:"port"`
	CORSOrigins  []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ExportRPS    float64  `yaml:"export_rps" mapstructure:"export_rps"`
	ExportBurst  int      `yaml:"export_burst" mapstructure:"export_burst"`
	CacheEntries int      `yaml:"cache_entries" mapstructure:"cache_entries"`
	CacheTTLMins int      `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
}

// CacheTTL returns the response cache TTL as a duration.
func (s ServerConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLMins) * time.Minute
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ShapefilePath joins the configured directory and file name.
func (c *Config) ShapefilePath() string {
	return filepath.Join(c.Shapefile.Dir, c.Shapefile.Name)
}

// Load reads configuration from file and environment. An empty path looks
// for an optional config.yaml in the working directory; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("DISTRICTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("shapefile.dir", "./shapefile/")
	v.SetDefault("shapefile.name", "house_districts_2024.shp")
	v.SetDefault("shapefile.reproject", true)
	v.SetDefault("shapefile.collapse_all", false)
	v.SetDefault("shapefile.default_epsg", 4269)
	v.SetDefault("fetch.year", 2024)
	v.SetDefault("fetch.congress", 119)
	v.SetDefault("fetch.base_url", "https://www2.census.gov/geo/tiger")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.export_rps", 1)
	v.SetDefault("server.export_burst", 3)
	v.SetDefault("server.cache_entries", 64)
	v.SetDefault("server.cache_ttl_mins", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Every problem is
// reported in one error.
func (c *Config) Validate(mode string) error {
	var problems []string

	shapefile := func() {
		if c.Shapefile.Name == "" {
			problems = append(problems, "shapefile.name is required")
		} else if !strings.EqualFold(filepath.Ext(c.Shapefile.Name), ".shp") {
			problems = append(problems, "shapefile.name must end in .shp")
		}
		if c.Shapefile.DefaultEPSG <= 0 {
			problems = append(problems, "shapefile.default_epsg must be > 0")
		}
	}

	switch mode {
	case "normalize":
		shapefile()
	case "serve":
		shapefile()
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0 and <= 65535")
		}
		if c.Server.ExportRPS <= 0 {
			problems = append(problems, "server.export_rps must be > 0")
		}
		if c.Server.ExportBurst < 1 {
			problems = append(problems, "server.export_burst must be >= 1")
		}
		if c.Server.CacheEntries < 0 {
			problems = append(problems, "server.cache_entries must be >= 0")
		}
	case "fetch":
		if c.Shapefile.Dir == "" {
			problems = append(problems, "shapefile.dir is required")
		}
		if c.Shapefile.Name == "" {
			problems = append(problems, "shapefile.name is required")
		}
		if c.Fetch.Year < 2010 {
			problems = append(problems, "fetch.year must be >= 2010")
		}
		if c.Fetch.Congress < 1 {
			problems = append(problems, "fetch.congress must be >= 1")
		}
		if c.Fetch.BaseURL == "" {
			problems = append(problems, "fetch.base_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
