package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

// ForTest returns a debug logger writing through t.Log.
func ForTest(t testing.TB) zerolog.Logger {
	t.Helper()
	return New(zerolog.NewTestWriter(t), t.Name(), ProfileTest, "")
}
