package authflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

type sendMailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendMailResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// RelayClient talks to the mail relay service over HTTP. The relay owns SMTP
// configuration and transport; the client only honors the wire contract:
// POST {base}/send-email with {to,subject,body}, {ok,error?} back, any non-2xx
// status is a failure even when the body parses.
type RelayClient struct {
	baseURL string
	client  *http.Client
	logger  Logger
}

var _ Dispatcher = (*RelayClient)(nil)

type RelayClientOption func(*RelayClient)

// WithRelayHTTPClient overrides the HTTP client, e.g. to tune timeouts.
func WithRelayHTTPClient(client *http.Client) RelayClientOption {
	return func(c *RelayClient) {
		if client != nil {
			c.client = client
		}
	}
}

// WithRelayLogger overrides the logger.
func WithRelayLogger(logger Logger) RelayClientOption {
	return func(c *RelayClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func NewRelayClient(baseURL string, opts ...RelayClientOption) *RelayClient {
	c := &RelayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
		logger:  defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Send satisfies the Dispatcher interface.
func (c *RelayClient) Send(ctx context.Context, to, subject, body string) error {
	payload, err := json.Marshal(sendMailRequest{To: to, Subject: subject, Body: body})
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to encode mail payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/send-email", bytes.NewReader(payload))
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to build relay request")
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("relay send to=%s subject=%q", to, subject)

	resp, err := c.client.Do(req)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "email relay unreachable")
	}
	defer resp.Body.Close()

	var out sendMailResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&out)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decodeErr == nil && out.Error != "" {
			return goerrors.New(out.Error, goerrors.CategoryOperation)
		}
		return goerrors.New(
			fmt.Sprintf("email relay responded %d", resp.StatusCode),
			goerrors.CategoryOperation,
		)
	}

	if decodeErr != nil {
		return goerrors.Wrap(decodeErr, goerrors.CategoryOperation, "undecodable relay response")
	}

	if !out.OK {
		if out.Error != "" {
			return goerrors.New(out.Error, goerrors.CategoryOperation)
		}
		return goerrors.New("unknown email relay error", goerrors.CategoryOperation)
	}

	return nil
}
