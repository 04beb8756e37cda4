// @title Hackathon Coordinator API
// @version 1.0
// @description Backend API for hackathon check-in, mentorship queues and judging

// @securityDefinitions.apikey BearerToken
// @in header
// @name Authorization
package main

import (
	_ "github.com/alex-pricope/hackathon-coordinator/docs"

	"github.com/alex-pricope/hackathon-coordinator/api"
	"github.com/alex-pricope/hackathon-coordinator/logging"
	"github.com/spf13/viper"
	"strings"
)

func main() {
	// Load env
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logging.Log.Errorf("Failed to read config file: %v", err)
		panic("Failed to read config file: " + err.Error())
	}

	logging.BootstrapLogger(viper.GetString("server.logLevel"))

	// Read config
	config := api.ReadConfig()

	service := api.NewServer(config)
	service.Start()
}
