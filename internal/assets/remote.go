package assets

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

// RemoteChecker verifies that per-line assets hosted behind a base URL are
// reachable, so broken asset references surface during prepare instead of
// at playback.
type RemoteChecker struct {
	client  *resty.Client
	baseURL string
}

// NewRemoteChecker creates a checker for assets under baseURL, e.g.
// https://cdn.example.com/voice.
func NewRemoteChecker(baseURL string, timeout time.Duration) *RemoteChecker {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(200 * time.Millisecond)
	return &RemoteChecker{client: client, baseURL: baseURL}
}

// URL builds the asset URL for a line in a language.
func (c *RemoteChecker) URL(lineID, languageCode, ext string) string {
	return fmt.Sprintf("%s/%s/%s%s", c.baseURL, languageCode, lineID, ext)
}

// Check issues a HEAD request for the asset and returns its URL when the
// asset exists.
func (c *RemoteChecker) Check(ctx context.Context, lineID, languageCode, ext string) (string, error) {
	url := c.URL(lineID, languageCode, ext)
	resp, err := c.client.R().SetContext(ctx).Head(url)
	if err != nil {
		return "", fmt.Errorf("check asset %s: %w", lineID, err)
	}
	if resp.IsError() {
		log.Debug().Str("id", lineID).Str("url", url).Int("status", resp.StatusCode()).Msg("Remote asset missing")
		return "", fmt.Errorf("asset %s not available: status %d", lineID, resp.StatusCode())
	}
	return url, nil
}
