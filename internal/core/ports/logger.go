package ports

import "io"

// Logger defines the interface for logging.
//
//go:generate mockgen -source=logger.go -destination=mocks/mock_logger.go -package=mocks
type Logger interface {
	// Info logs an informational message.
	Info(msg string)
	// Warn logs a warning message.
	Warn(msg string)
	// Error logs an error, including its cause chain and metadata.
	Error(err error)
	// SetJSON switches between the pretty and the JSON handler.
	SetJSON(enable bool)
	// SetOutput redirects log output.
	SetOutput(w io.Writer)
}
