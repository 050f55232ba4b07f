// internal/notify/notify_test.go
package notify

import (
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/acheron9x/cartpilot/internal/config"
)

func enabledConfig() config.NotifyConfig {
	return config.NotifyConfig{
		Enabled:  true,
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		From:     "bot@example.com",
		To:       "owner@example.com, second@example.com",
	}
}

func TestSendDisabledIsNoop(t *testing.T) {
	m := NewMailer(config.NotifyConfig{Enabled: false}, zaptest.NewLogger(t))
	called := false
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		called = true
		return nil
	}

	require.NoError(t, m.Send("subject", "body"))
	assert.False(t, called)
	assert.False(t, m.Enabled())
}

func TestSendDeliversToAllRecipients(t *testing.T) {
	m := NewMailer(enabledConfig(), zaptest.NewLogger(t))

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	require.NoError(t, m.Send("Run finished", "All good."))

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "bot@example.com", gotFrom)
	assert.Equal(t, []string{"owner@example.com", "second@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Run finished\r\n")
	assert.Contains(t, string(gotMsg), "To: owner@example.com, second@example.com\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\nAll good.\r\n")
}

func TestSendWrapsTransportErrors(t *testing.T) {
	m := NewMailer(enabledConfig(), zaptest.NewLogger(t))
	boom := errors.New("connection refused")
	m.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		return boom
	}

	err := m.Send("subject", "body")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestSendRejectsEmptyRecipients(t *testing.T) {
	cfg := enabledConfig()
	cfg.To = " , "
	m := NewMailer(cfg, zaptest.NewLogger(t))

	err := m.Send("subject", "body")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no notification recipients")
}

func TestSplitRecipients(t *testing.T) {
	assert.Equal(t, []string{"a@x.com"}, splitRecipients("a@x.com"))
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, splitRecipients(" a@x.com ,b@y.com "))
	assert.Nil(t, splitRecipients(""))
}
