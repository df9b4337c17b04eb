// Package logger builds zerolog loggers from configuration.
package logger
