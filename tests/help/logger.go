package help

import (
	"log/slog"
	"os"
)

// Logger returns the JSON logger the suite wires into every cache under test.
func Logger() *slog.Logger {
	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})

	return slog.New(h).With(
		slog.String("service", "readthroughCache"),
		slog.String("env", "test"),
	)
}
