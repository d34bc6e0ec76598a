package logger

import (
	"io"
	"log"
)

// Null returns a logger discarding everything.
func Null() *log.Logger {
	return log.New(io.Discard, "", log.LstdFlags)
}

// Default returns the standard logger.
func Default() *log.Logger {
	return log.Default()
}
