// @title Congkong Live Scoring API
// @version 1.0
// @description Judge scoring, audience voting and live leaderboard for pitch events

// @securityDefinitions.apikey AdminToken
// @in header
// @name x-admin-token

// @securityDefinitions.apikey JudgeToken
// @in header
// @name Authorization
package main

import (
	_ "github.com/kripanshu-singh/congkong-livescore/docs"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kripanshu-singh/congkong-livescore/api"
	"github.com/kripanshu-singh/congkong-livescore/logging"
)

func main() {
	pflag.String("config-path", "./", "directory holding config.yaml")
	pflag.Parse()
	_ = viper.BindPFlags(pflag.CommandLine)

	// A missing .env is fine outside local development
	_ = godotenv.Load()

	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(viper.GetString("config-path"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	// Read config
	config := api.ReadConfig()
	logging.BootstrapLogger(config.Level, config.Format)

	// Start the service (inside the lambda)
	service := api.NewServer(config)
	service.Start()
}
