package alert_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexigraph/lexigraph/pkg/alert"
	"github.com/lexigraph/lexigraph/pkg/config"
)

func TestEmailAlerterDisabled(t *testing.T) {
	a := alert.NewEmailAlerter(config.AlertConfig{Enabled: false})
	// Disabled alerter must not attempt delivery
	assert.NoError(t, a.Alert("subject", "message"))
}

func TestLogAlerter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	a := alert.NewLogAlerter(logger)
	assert.NoError(t, a.Alert("breaker tripped", "graph store unreachable"))

	out := buf.String()
	assert.True(t, strings.Contains(out, "breaker tripped"))
	assert.True(t, strings.Contains(out, "graph store unreachable"))
}

func TestNoOpAlerter(t *testing.T) {
	a := &alert.NoOpAlerter{}
	assert.NoError(t, a.Alert("anything", "at all"))
}

func TestFromConfig(t *testing.T) {
	a := alert.FromConfig(config.AlertConfig{Enabled: false}, nil)
	_, isLog := a.(*alert.LogAlerter)
	assert.True(t, isLog)

	a = alert.FromConfig(config.AlertConfig{Enabled: true}, nil)
	_, isEmail := a.(*alert.EmailAlerter)
	assert.True(t, isEmail)
}
