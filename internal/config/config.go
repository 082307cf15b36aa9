// Package config loads the engine configuration from JSON with viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// ConfigFileName is the JSON file read from the config directory.
const ConfigFileName = "bloodmap.cfg.json"

// Load reads configuration from the JSON file in configDir and sets default
// values for everything the file omits.
func Load(configDir string) error {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./bloodmaplogs")

	viper.SetDefault("proximity.radiusMeters", 15000.0)
	viper.SetDefault("proximity.locationEpsilonMeters", 100.0)

	viper.SetDefault("watchdog.interval", "5s")

	viper.SetDefault("focus.panSettle", "400ms")
	viper.SetDefault("focus.zoomSettle", "400ms")
	viper.SetDefault("focus.finalSettle", "1500ms")
	viper.SetDefault("focus.targetZoom", 15.0)
	viper.SetDefault("focus.intermediateZoom", 13.0)
	viper.SetDefault("focus.wideViewportPx", 1024)
	viper.SetDefault("focus.centerTolerance", 50.0)

	viper.SetDefault("highlight.bounceDuration", "2s")

	viper.SetDefault("geocode.baseUrl", "https://nominatim.openstreetmap.org")
	viper.SetDefault("geocode.userAgent", "bloodmap/1.0")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "bloodmap")
	viper.SetDefault("db.sqlitePath", "")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "bloodmap-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "bloodmap")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName(ConfigFileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}
