// Package config holds the JobGuard client configuration.
//
// A Config starts from NewConfig defaults, is overlaid with a profile from
// the optional .jobguard YAML file, and finally with command line flags.
package config
