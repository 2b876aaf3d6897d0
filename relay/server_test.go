package relay_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safehaven-app/go-authflow/relay"
)

type stubSender struct {
	err  error
	sent []map[string]string
}

func (s *stubSender) Send(to, subject, text, html string) error {
	if s.err != nil {
		return s.err
	}

	s.sent = append(s.sent, map[string]string{
		"to": to, "subject": subject, "text": text, "html": html,
	})
	return nil
}

func post(t *testing.T, srv *relay.Server, payload any) (*http.Response, map[string]any) {
	t.Helper()

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/send-email", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)

	rawBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rawBody, &body))

	return resp, body
}

func TestSendEmail(t *testing.T) {
	t.Run("delivers and answers ok", func(t *testing.T) {
		sender := &stubSender{}
		srv := relay.New(sender)

		resp, body := post(t, srv, map[string]string{
			"to":      "jane@x.com",
			"subject": "Your code",
			"body":    "line one\nline two",
		})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["ok"])

		require.Len(t, sender.sent, 1)
		assert.Equal(t, "jane@x.com", sender.sent[0]["to"])
		assert.Equal(t, "line one\nline two", sender.sent[0]["text"])
		// newlines become breaks in the generated HTML alternative
		assert.Equal(t, "line one<br/>line two", sender.sent[0]["html"])
	})

	t.Run("accepts the message alias for body", func(t *testing.T) {
		sender := &stubSender{}
		srv := relay.New(sender)

		resp, body := post(t, srv, map[string]string{
			"to":      "jane@x.com",
			"subject": "Your code",
			"message": "hello",
		})

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, body["ok"])
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "hello", sender.sent[0]["text"])
	})

	t.Run("missing fields are 400", func(t *testing.T) {
		srv := relay.New(&stubSender{})

		for _, payload := range []map[string]string{
			{"subject": "s", "body": "b"},
			{"to": "jane@x.com", "body": "b"},
			{"to": "jane@x.com", "subject": "s"},
		} {
			resp, body := post(t, srv, payload)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, false, body["ok"])
			assert.Equal(t, "Missing to/subject/body", body["error"])
		}
	})

	t.Run("sender failure is 500 with the error text", func(t *testing.T) {
		srv := relay.New(&stubSender{err: errors.New("dial tcp: connection refused")})

		resp, body := post(t, srv, map[string]string{
			"to":      "jane@x.com",
			"subject": "s",
			"body":    "b",
		})

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.Equal(t, false, body["ok"])
		assert.Equal(t, "dial tcp: connection refused", body["error"])
	})
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "4100")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_PORT", "587")
	t.Setenv("SMTP_USER", "mailer@example.com")
	t.Setenv("SMTP_PASS", "secret")
	t.Setenv("FROM_EMAIL", "")

	cfg := relay.ConfigFromEnv()

	assert.Equal(t, ":4100", cfg.Addr)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "mailer@example.com", cfg.SMTPUser)
	// FROM_EMAIL falls back to the SMTP user
	assert.Equal(t, "mailer@example.com", cfg.FromEmail)
	assert.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, relay.Config{}.Validate())
}
