// Package testlog wires zerolog output into the test runner so log lines
// land in the per-test output instead of stderr.
package testlog

import (
	"testing"

	"github.com/rs/zerolog"
)

func Start(t *testing.T) zerolog.Logger {
	t.Helper()
	return zerolog.New(zerolog.NewTestWriter(t)).
		Level(zerolog.WarnLevel).
		With().Timestamp().Logger()
}
