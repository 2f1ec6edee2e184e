package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the three YouTube API surfaces: the Data API (low-latency
// snapshot), the Analytics API (time-bucketed queries) and the Reporting API
// (bulk CSV export jobs). Base URLs are injectable so tests can point at
// httptest servers.
type Client struct {
	http          *http.Client
	dataBase      string
	analyticsBase string
	reportingBase string
}

// Options configures a Client. Zero-value fields fall back to the production
// Google endpoints.
type Options struct {
	HTTPClient    *http.Client
	DataBaseURL   string
	AnalyticsBase string
	ReportingBase string
}

func NewClient(opts Options) *Client {
	c := &Client{
		http:          opts.HTTPClient,
		dataBase:      strings.TrimRight(opts.DataBaseURL, "/"),
		analyticsBase: strings.TrimRight(opts.AnalyticsBase, "/"),
		reportingBase: strings.TrimRight(opts.ReportingBase, "/"),
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 30 * time.Second}
	}
	if c.dataBase == "" {
		c.dataBase = "https://www.googleapis.com/youtube/v3"
	}
	if c.analyticsBase == "" {
		c.analyticsBase = "https://youtubeanalytics.googleapis.com/v2"
	}
	if c.reportingBase == "" {
		c.reportingBase = "https://youtubereporting.googleapis.com/v1"
	}
	return c
}

// getJSON performs an authenticated GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, token, rawURL string, params url.Values, out any) error {
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(rawURL, "?") {
			sep = "&"
		}
		rawURL += sep + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", pathOnly(rawURL), resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// postJSON performs an authenticated POST with a JSON body and decodes the
// response into out.
func (c *Client) postJSON(ctx context.Context, token, rawURL string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(string(payload)))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("POST %s: status %d: %s", pathOnly(rawURL), resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// pathOnly strips the query string from a URL before it lands in an error
// message (query params can carry ids worth keeping out of logs).
func pathOnly(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
