// Package config loads typed configuration structs from environment variables
// using caarlos0/env struct tags, with optional .env file support via godotenv.
//
// Each configuration type is parsed exactly once per process and cached, so
// packages can call Load for their own config struct without coordinating.
//
//	var cfg email.Config
//	config.MustLoad(&cfg)
package config
