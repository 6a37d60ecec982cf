package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar    = "APP_NAME"
	envVar        = "ENV"
	folderEnvVar  = "DATA_FOLDER"
	logLevelVar   = "LOG_LEVEL"
	configFileVar = "CONFIG_FILE"
)

// source resolves a setting from the environment, then the config file.
type source struct {
	file map[string]string
}

func (s source) get(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	if value, ok := s.file[strings.ToLower(envVar)]; ok && value != "" {
		return value
	}
	return defaultValue
}

func (s source) getInt(envVar string, defaultValue int) int {
	v, err := strconv.Atoi(s.get(envVar, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func (s source) getFloat(envVar string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(s.get(envVar, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func (s source) getDuration(envVar string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(s.get(envVar, ""))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

type EnvVars struct {
	src source
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.src.get(appNameVar, "Etokisana")
}

func (e EnvVars) GetEnv() string {
	return e.src.get(envVar, "DEV")
}

func (e EnvVars) GetDataFolder() string {
	return e.src.get(folderEnvVar, "./data")
}

func (e EnvVars) GetLogLevel() string {
	return e.src.get(logLevelVar, "info")
}

// GetConfigFile returns the optional YAML config path from the environment.
func GetConfigFile() string {
	return GetEnv(configFileVar, "")
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
