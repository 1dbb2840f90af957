// Package config provides configuration management for catalog-sync.
//
// It utilizes Viper for loading configuration from environment variables
// and an optional .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: status HTTP server (port, API key, enabled flag)
//   - Log: logging level and format
//   - Database: MySQL connection details for the local catalog
//   - Remote: catalog API endpoints, tokens, and pagination limits
//   - Sync: cycle interval, retry backoff, write cooldowns
//
// Defaults come from `default` struct tags, resolved by reflection.
// Environment variables map onto nested keys by joining with underscores,
// e.g. DATABASE_HOST -> database.host, REMOTE_PRODUCTS_URL ->
// remote.products_url.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.IntervalSeconds)
package config
