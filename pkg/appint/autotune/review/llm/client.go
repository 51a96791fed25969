// Package llm asks an external model endpoint to approve alias suggestions
// before they are exported.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/autotune/aliases"
)

// DefaultAliasPrompt is formatted with variant, canonical, apps and
// confidence.
const DefaultAliasPrompt = "Is the app store integration name '%s' the same product as '%s'? " +
	"It appears in %d apps, spelling similarity %.2f. Reply with JSON {\"approve\": true|false}."

// Client calls an HTTP endpoint that answers {"approve": bool}.
type Client struct {
	Endpoint string
	APIKey   string
	Prompt   string        // DefaultAliasPrompt when empty
	Timeout  time.Duration // 10s when zero

	// HTTP overrides the resty client, e.g. in tests.
	HTTP *resty.Client
}

type requestPayload struct {
	Prompt string `json:"prompt"`
}

type responsePayload struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason,omitempty"`
}

// ApproveAlias implements aliases.Reviewer.
func (c *Client) ApproveAlias(ctx context.Context, sugg aliases.Suggestion) (bool, error) {
	resp, err := c.call(ctx, c.aliasPrompt(sugg))
	if err != nil {
		return false, err
	}
	return resp.Approve, nil
}

func (c *Client) client() *resty.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return resty.New().SetTimeout(timeout)
}

func (c *Client) call(ctx context.Context, prompt string) (*responsePayload, error) {
	if c.Endpoint == "" {
		return nil, fmt.Errorf("llm reviewer: endpoint required")
	}

	var payload responsePayload
	req := c.client().R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(requestPayload{Prompt: prompt}).
		SetResult(&payload)
	if c.APIKey != "" {
		req.SetAuthToken(c.APIKey)
	}

	resp, err := req.Post(c.Endpoint)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("llm reviewer: http %d", resp.StatusCode())
	}
	return &payload, nil
}

func (c *Client) aliasPrompt(s aliases.Suggestion) string {
	tpl := c.Prompt
	if tpl == "" {
		tpl = DefaultAliasPrompt
	}
	return fmt.Sprintf(tpl, s.Variant, s.Canonical, s.Apps, s.Confidence)
}
