// @title VotaSeguro Election Ledger API
// @version 1.0
// @description Candidates, registered voters with token allowances, votes and election state, optionally mirrored to the Voting contract

// @securityDefinitions.apikey BearerToken
// @in header
// @name Authorization
package main

import (
	"strings"

	_ "github.com/votaseguro/election-ledger/docs"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"github.com/votaseguro/election-ledger/api"
	"github.com/votaseguro/election-ledger/logging"
)

func main() {
	// Optional, real environment variables win
	_ = godotenv.Load()

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

	logging.BoostrapLogger(viper.GetString("log.level"), viper.GetString("log.format"))

	// Read config
	config := api.ReadConfig()

	// Start the service (inside the lambda)
	service := api.NewServer(config)
	service.Start()
}
