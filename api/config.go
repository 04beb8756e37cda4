package api

import (
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/alex-pricope/hackathon-coordinator/realtime"
	"github.com/spf13/viper"
	"sync"
	"time"
)

type Config struct {
	ServerConfig
	StorageConfig
	AuthConfig
	RealtimeConfig
	RateLimitConfig
	BootstrapConfig
}

type ServerConfig struct {
	Port     int
	LogLevel string
}

// StorageConfig selects the relational database and the optional side stores.
// An empty RedisAddr disables the settings cache; an empty TableNameActivity
// disables the activity log.
type StorageConfig struct {
	Driver            string
	DSN               string
	TableNameActivity string
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	SettingsCacheTTL  time.Duration
}

type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	PasswordCost int
}

type RealtimeConfig struct {
	AuthTimeout time.Duration
}

type RateLimitConfig struct {
	GeneralWindow      time.Duration
	GeneralMax         int
	AuthWindow         time.Duration
	AuthMax            int
	ModificationWindow time.Duration
	ModificationMax    int
}

// BootstrapConfig creates the first SUPER_ADMIN when the username is not taken.
type BootstrapConfig struct {
	Username string
	Password string
}

var settingsOnce sync.Once

func ReadConfig() *Config {

	var conf = &Config{
		ServerConfig: ServerConfig{
			Port:     getIntOrDefault("server.port", 8080),
			LogLevel: getStringOrDefault("server.logLevel", "info"),
		},
		StorageConfig: StorageConfig{
			Driver:            getStringOrDefault("storage.driver", "postgres"),
			DSN:               getString("storage.dsn"),
			TableNameActivity: getStringOrDefault("storage.tableNameActivity", ""),
			RedisAddr:         getStringOrDefault("storage.redisAddr", ""),
			RedisPassword:     getStringOrDefault("storage.redisPassword", ""),
			RedisDB:           getIntOrDefault("storage.redisDB", 0),
			SettingsCacheTTL:  getDurationOrDefault("storage.settingsCacheTTL", 30*time.Second),
		},
		AuthConfig: AuthConfig{
			JWTSecret:    getString("auth.jwtSecret"),
			TokenTTL:     getDurationOrDefault("auth.tokenTTL", 12*time.Hour),
			PasswordCost: getIntOrDefault("auth.passwordCost", 10),
		},
		RealtimeConfig: RealtimeConfig{
			AuthTimeout: getDurationOrDefault("realtime.authTimeout", realtime.DefaultAuthTimeout),
		},
		RateLimitConfig: RateLimitConfig{
			GeneralWindow:      getDurationOrDefault("rateLimit.generalWindow", 15*time.Minute),
			GeneralMax:         getIntOrDefault("rateLimit.generalMax", 1000),
			AuthWindow:         getDurationOrDefault("rateLimit.authWindow", 15*time.Minute),
			AuthMax:            getIntOrDefault("rateLimit.authMax", 20),
			ModificationWindow: getDurationOrDefault("rateLimit.modificationWindow", time.Minute),
			ModificationMax:    getIntOrDefault("rateLimit.modificationMax", 60),
		},
		BootstrapConfig: BootstrapConfig{
			Username: getStringOrDefault("bootstrap.username", ""),
			Password: getStringOrDefault("bootstrap.password", ""),
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
}

func getString(name string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Fatalf("required environment variable '%s' is missing", name)
	return ""
}

func getIntOrDefault(name string, def int) int {
	if viper.IsSet(name) {
		v := viper.GetInt(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getStringOrDefault(name string, def string) string {
	if viper.IsSet(name) {
		v := viper.GetString(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getDurationOrDefault(name string, def time.Duration) time.Duration {
	if viper.IsSet(name) {
		v := viper.GetDuration(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}
