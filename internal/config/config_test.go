package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetInt(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX", "250")
	assert.Equal(t, 250, GetInt("RATE_LIMIT_MAX", 100))

	t.Setenv("RATE_LIMIT_MAX", "pas-un-nombre")
	assert.Equal(t, 100, GetInt("RATE_LIMIT_MAX", 100))

	assert.Equal(t, 42, GetInt("VARIABLE_ABSENTE", 42))
}

func TestGetDuration(t *testing.T) {
	t.Setenv("RATE_LIMIT_WINDOW", "90s")
	assert.Equal(t, 90*time.Second, GetDuration("RATE_LIMIT_WINDOW", time.Minute))

	t.Setenv("RATE_LIMIT_WINDOW", "bientot")
	assert.Equal(t, time.Minute, GetDuration("RATE_LIMIT_WINDOW", time.Minute))

	assert.Equal(t, time.Hour, GetDuration("VARIABLE_ABSENTE", time.Hour))
}
