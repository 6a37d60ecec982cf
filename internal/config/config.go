package config

import "time"

type Config interface {
	EnvConfig
	APIConfig
	StorageConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetDataFolder() string
	GetLogLevel() string
}

type APIConfig interface {
	GetAPIBaseURL() string
	GetLoginPath() string
	GetRequestTimeout() time.Duration
	GetRateLimit() (rps float64, burst int)
	GetRefreshTokenExpiry() time.Duration
}

type StorageConfig interface {
	GetCartStore() CartStore
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
}

type mainConfig struct {
	EnvVars
	API
	Storage
}

// New returns a Config backed by environment variables only.
func New() Config {
	return newMainConfig(source{})
}

// Load returns a Config backed by environment variables with the YAML file at
// path as a fallback. An empty path behaves like New.
func Load(path string) (Config, error) {
	if path == "" {
		return New(), nil
	}
	values, err := readFileValues(path)
	if err != nil {
		return nil, err
	}
	return newMainConfig(source{file: values}), nil
}

func newMainConfig(src source) mainConfig {
	return mainConfig{
		EnvVars: EnvVars{src: src},
		API:     API{src: src},
		Storage: Storage{src: src},
	}
}
