package api

import (
	"strings"
	"sync"
	"time"

	"github.com/kripanshu-singh/congkong-livescore/logging"
	"github.com/spf13/viper"
)

type Config struct {
	StorageConfig
	ServerConfig
	AuthConfig
	LimitsConfig
	LogConfig
	TracingConfig
}

type StorageConfig struct {
	Driver string // dynamodb | postgres | memory

	TableNameScores    string
	TableNameDocuments string
	TableNameCodes     string
	TableNameVotes     string
	DynamoEndpoint     string
	DynamoRegion       string

	PostgresDSN string
}

type ServerConfig struct {
	Port            int
	Environment     string
	ShutdownTimeout time.Duration
	TimerEnabled    bool
}

type AuthConfig struct {
	AdminID       string
	AdminPassword string
	AdminToken    string
	JudgeCode     string
	JWTSecret     string
	TokenTTL      time.Duration
}

type LimitsConfig struct {
	ScoreRatePerSecond float64
	ScoreBurst         int
	VoteRatePerSecond  float64
	VoteBurst          int
}

type LogConfig struct {
	Level  string
	Format string
}

type TracingConfig struct {
	Exporter string // none | stdout
}

var settingsOnce sync.Once

// Local reports whether the server runs outside Lambda.
func (c *Config) Local() bool {
	return c.Environment == "local"
}

func ReadConfig() *Config {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var conf = &Config{
		StorageConfig: StorageConfig{
			Driver:             strings.ToLower(getStringOrDefault("storage.driver", "dynamodb")),
			TableNameScores:    getStringOrDefault("storage.TableNameScores", "Scores"),
			TableNameDocuments: getStringOrDefault("storage.TableNameDocuments", "Documents"),
			TableNameCodes:     getStringOrDefault("storage.TableNameCodes", "VotingCodes"),
			TableNameVotes:     getStringOrDefault("storage.TableNameVotes", "AudienceVotes"),
			DynamoEndpoint:     getStringOrDefault("storage.dynamoEndpoint", ""),
			DynamoRegion:       getStringOrDefault("storage.dynamoRegion", ""),
			PostgresDSN:        getStringOrDefault("storage.postgresDsn", ""),
		},
		ServerConfig: ServerConfig{
			Port:            getIntOrDefault("server.port", 8080),
			Environment:     getStringOrDefault("app.env", "local"),
			ShutdownTimeout: time.Duration(getIntOrDefault("server.shutdownTimeoutSeconds", 10)) * time.Second,
			TimerEnabled:    getBoolOrDefault("server.timerEnabled", true),
		},
		AuthConfig: AuthConfig{
			AdminID:       getStringOrDefault("auth.adminId", ""),
			AdminPassword: getStringOrDefault("auth.adminPassword", ""),
			AdminToken:    getStringOrDefault("auth.adminToken", ""),
			JudgeCode:     getStringOrDefault("auth.judgeCode", ""),
			JWTSecret:     getStringOrDefault("auth.jwtSecret", ""),
			TokenTTL:      time.Duration(getIntOrDefault("auth.tokenTtlHours", 12)) * time.Hour,
		},
		LimitsConfig: LimitsConfig{
			ScoreRatePerSecond: getFloatOrDefault("limits.scoreRatePerSecond", 2),
			ScoreBurst:         getIntOrDefault("limits.scoreBurst", 5),
			VoteRatePerSecond:  getFloatOrDefault("limits.voteRatePerSecond", 5),
			VoteBurst:          getIntOrDefault("limits.voteBurst", 20),
		},
		LogConfig: LogConfig{
			Level:  getStringOrDefault("log.level", "info"),
			Format: getStringOrDefault("log.format", "text"),
		},
		TracingConfig: TracingConfig{
			Exporter: strings.ToLower(getStringOrDefault("tracing.exporter", "none")),
		},
	}

	settingsOnce.Do(func() {
		logging.Log.Print("Reading settings!")
	})

	return conf
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

func getFloatOrDefault(name string, def float64) float64 {
	if viper.IsSet(name) {
		v := viper.GetFloat64(name)
		logging.Log.Printf("found '%s' in viper", name)
		return v
	}
	logging.Log.Printf("could not find '%s' in viper! Returning default", name)
	return def
}

func getBoolOrDefault(name string, def bool) bool {
	if viper.IsSet(name) {
		v := viper.GetBool(name)
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
