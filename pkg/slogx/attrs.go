package slogx

import (
	"fmt"
	"log/slog"
)

// Error returns a slog.Attr for the provided error under the key
// "error".
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Stringer returns a slog.Attr holding the string form of any
// fmt.Stringer under the given key.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}

// KeyLoggerName is the attribute key identifying which component a log
// record came from.
const KeyLoggerName = "logger"

// LoggerName returns the component-name attribute for a logger.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}
