// Package utils holds the cam plumbing shared by every command: layered
// configuration loading through Viper, zap logger construction from the
// common logging settings, and home directory expansion for registry paths.
package utils
