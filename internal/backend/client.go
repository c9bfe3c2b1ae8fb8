// -----------------------------------------------------------------------
// Generation Backend Client - REST access to the demo generation service
// -----------------------------------------------------------------------

package backend

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/common"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/httpclient"
	"github.com/kavifawjul-creator/orchids-ai-powered-product-demos/internal/interfaces"
)

// Client talks to the generation service's REST API. The service itself is a
// black box; this client only submits jobs and reads status rows.
type Client struct {
	baseURL string
	http    *http.Client
	logger  arbor.ILogger
}

// NewClient creates a backend client from config
func NewClient(cfg common.BackendConfig, logger arbor.ILogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpclient.NewDefaultHTTPClient(cfg.Timeout()),
		logger:  logger,
	}
}

type createDemoRequest struct {
	RepoURL string `json:"repo_url"`
	Prompt  string `json:"prompt"`
	Title   string `json:"title,omitempty"`
}

// CreateDemo submits a generation job and returns the identifiers the
// service assigned to it
func (c *Client) CreateDemo(ctx context.Context, repoURL, prompt, title string) (*interfaces.CreateDemoResult, error) {
	var result interfaces.CreateDemoResult
	url := c.baseURL + "/demos/generate"

	err := httpclient.DoJSON(ctx, c.http, http.MethodPost, url, createDemoRequest{
		RepoURL: repoURL,
		Prompt:  prompt,
		Title:   title,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("create demo: %w", err)
	}

	if result.DemoID == "" {
		return nil, fmt.Errorf("create demo: response missing demo_id")
	}

	c.logger.Debug().
		Str("demo_id", result.DemoID).
		Str("status", result.Status).
		Msg("Demo generation job accepted")

	return &result, nil
}

// GetDemoStatus reads the current status row for a demo
func (c *Client) GetDemoStatus(ctx context.Context, demoID string) (*interfaces.DemoStatus, error) {
	var status interfaces.DemoStatus
	url := fmt.Sprintf("%s/demos/%s/status", c.baseURL, demoID)

	if err := httpclient.DoJSON(ctx, c.http, http.MethodGet, url, nil, &status); err != nil {
		return nil, fmt.Errorf("get demo status: %w", err)
	}
	return &status, nil
}
