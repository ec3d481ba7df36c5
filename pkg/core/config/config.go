package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/angelospk/osdbclient/internal/constants"
	"github.com/angelospk/osdbclient/pkg/core/fileops"
	"github.com/angelospk/osdbclient/pkg/core/opensubtitles"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Configuration keys. Each can also be set through the environment, e.g.
// OSDB_OPENSUBTITLES_USERNAME for CfgKeyUsername.
const (
	CfgKeyUsername           = "opensubtitles.username"
	CfgKeyPassword           = "opensubtitles.password"
	CfgKeyLanguage           = "opensubtitles.language"
	CfgKeyUserAgent          = "opensubtitles.useragent"
	CfgKeyEndpoint           = "opensubtitles.endpoint"
	CfgKeyTimeout            = "opensubtitles.timeout"
	CfgKeyLimit              = "opensubtitles.limit"
	CfgKeyReleaseNameQueries = "opensubtitles.release_name_queries"
	CfgKeyHashCacheSize      = "hashcache.size"
	CfgKeyHashCacheTTL       = "hashcache.ttl"
	CfgKeyLogLevel           = "log.level"
)

const (
	envPrefix      = "OSDB"
	configName     = "config"
	configDirName  = ".osdbclient"
	defaultTimeout = 30 * time.Second
)

// Settings is the resolved client configuration.
type Settings struct {
	Username           string
	Password           string
	Language           string
	UserAgent          string
	Endpoint           string
	Timeout            time.Duration
	Limit              int
	ReleaseNameQueries bool
	HashCacheSize      int
	HashCacheTTL       time.Duration
	LogLevel           string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(CfgKeyUsername, "")
	v.SetDefault(CfgKeyPassword, "")
	v.SetDefault(CfgKeyLanguage, constants.DefaultLanguage)
	v.SetDefault(CfgKeyUserAgent, constants.DefaultUserAgent)
	v.SetDefault(CfgKeyEndpoint, constants.DefaultEndpoint)
	v.SetDefault(CfgKeyTimeout, defaultTimeout)
	v.SetDefault(CfgKeyLimit, 0)
	v.SetDefault(CfgKeyReleaseNameQueries, false)
	v.SetDefault(CfgKeyHashCacheSize, 256)
	v.SetDefault(CfgKeyHashCacheTTL, time.Duration(0))
	v.SetDefault(CfgKeyLogLevel, "info")
}

// Load reads settings from the yaml file at path, or from config.yaml in the
// current directory or $HOME/.osdbclient when path is empty. A missing
// default file is not an error. Environment variables override the file.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, configDirName))
		}
		v.SetConfigType("yaml")
		v.SetConfigName(configName)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file (%s): %w", v.ConfigFileUsed(), err)
		}
	}

	s := &Settings{
		Username:           v.GetString(CfgKeyUsername),
		Password:           v.GetString(CfgKeyPassword),
		Language:           v.GetString(CfgKeyLanguage),
		UserAgent:          v.GetString(CfgKeyUserAgent),
		Endpoint:           v.GetString(CfgKeyEndpoint),
		Timeout:            v.GetDuration(CfgKeyTimeout),
		Limit:              v.GetInt(CfgKeyLimit),
		ReleaseNameQueries: v.GetBool(CfgKeyReleaseNameQueries),
		HashCacheSize:      v.GetInt(CfgKeyHashCacheSize),
		HashCacheTTL:       v.GetDuration(CfgKeyHashCacheTTL),
		LogLevel:           v.GetString(CfgKeyLogLevel),
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	if s.Timeout < 0 {
		return fmt.Errorf("%s must not be negative, got %s", CfgKeyTimeout, s.Timeout)
	}
	if s.Limit < 0 {
		return fmt.Errorf("%s must not be negative, got %d", CfgKeyLimit, s.Limit)
	}
	if s.HashCacheSize <= 0 {
		return fmt.Errorf("%s must be positive, got %d", CfgKeyHashCacheSize, s.HashCacheSize)
	}
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return fmt.Errorf("invalid %s: %w", CfgKeyLogLevel, err)
	}
	return nil
}

// ClientConfig converts the settings into an opensubtitles.Config. logger may
// be nil.
func (s *Settings) ClientConfig(logger *log.Logger) opensubtitles.Config {
	return opensubtitles.Config{
		Credentials: opensubtitles.Credentials{
			Username:  s.Username,
			Password:  s.Password,
			Language:  s.Language,
			UserAgent: s.UserAgent,
		},
		Endpoint:           s.Endpoint,
		Timeout:            s.Timeout,
		Limit:              s.Limit,
		ReleaseNameQueries: s.ReleaseNameQueries,
		Hasher:             fileops.NewCachingHasher(fileops.OSDbHasher{}, s.HashCacheSize, s.HashCacheTTL),
		Logger:             logger,
	}
}

// NewLogger returns a text logrus logger on stderr at the given level.
// An unknown level falls back to info.
func NewLogger(level string) *log.Logger {
	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	logger.SetOutput(os.Stderr)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger.SetLevel(lvl)
	return logger
}
