// Package config builds the immutable configuration for one health check
// invocation. Defaults live in a viper instance, positional command line
// arguments override them, and the result is validated before any probing
// starts. Only the diagnostic logging settings can be taken from the
// environment.
package config
