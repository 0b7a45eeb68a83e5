// Package config loads service configuration from a YAML file, a .env
// file, environment variables and command-line flags.
//
// Sources are layered with viper; later sources win:
//
//	config.yml < .env / environment < changed command-line flags
//
// # Usage
//
//	var cfg config.ServiceConfig
//	fs := pflag.NewFlagSet("lazykit", pflag.ExitOnError)
//	config.RegisterFlags(fs)
//	_ = fs.Parse(os.Args[1:])
//	err := config.LoadConfig("lazykit", &cfg, config.WithFlags(fs))
//
// Environment variables map onto nested keys by splitting on underscores:
// LOGGING_LEVEL sets logging.level.
package config
