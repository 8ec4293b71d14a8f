// Package config provides configuration management for the ownership service.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key, metrics port)
//   - Database: MySQL connection details
//   - Ledger: ledger API endpoint, live feed endpoint and access token
//   - Reconcile: sync interval, retry and buffering knobs of the engine
//   - Log: Logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
