package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 15*time.Minute, ParseDuration("15m", time.Hour))
	assert.Equal(t, 30*time.Second, ParseDuration("30s", time.Hour))
	assert.Equal(t, 90*time.Minute, ParseDuration("1h30m", time.Hour))

	// Invalid strings fall back to the default.
	assert.Equal(t, time.Hour, ParseDuration("", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("fifteen minutes", time.Hour))
	assert.Equal(t, time.Hour, ParseDuration("15", time.Hour))
}
