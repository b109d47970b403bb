package main

import (
	"flag"
	"io"
)

// AppFlags holds the command-line options.
type AppFlags struct {
	ConfigFile string
	EnvFile    string
}

// ParseFlags parses args (without the program name).
func ParseFlags(args []string, output io.Writer) (AppFlags, error) {
	fs := flag.NewFlagSet("hashwatch", flag.ContinueOnError)
	fs.SetOutput(output)

	configFile := fs.String("config", "", "Path to an optional YAML/JSON tunables file. If not set, searches HASHWATCH_CONFIG_PATH and the working directory.")
	configFileAlias := fs.String("c", "", "Alias for -config")

	envFile := fs.String("env-file", "", "Path to a .env file loaded before reading the environment. Defaults to ./.env when present.")
	envFileAlias := fs.String("e", "", "Alias for -env-file")

	if err := fs.Parse(args); err != nil {
		return AppFlags{}, err
	}

	flags := AppFlags{}

	if *configFile != "" {
		flags.ConfigFile = *configFile
	} else if *configFileAlias != "" {
		flags.ConfigFile = *configFileAlias
	}

	if *envFile != "" {
		flags.EnvFile = *envFile
	} else if *envFileAlias != "" {
		flags.EnvFile = *envFileAlias
	}

	return flags, nil
}
