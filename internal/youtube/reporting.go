package youtube

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ReportType is one catalog entry of the Reporting API.
type ReportType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ReportingJob is a provider-managed export stream for one report type.
type ReportingJob struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ReportTypeID string `json:"reportTypeId"`
}

// Report is one downloadable CSV snapshot produced by a reporting job.
type Report struct {
	ID          string    `json:"id"`
	JobID       string    `json:"jobId"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	CreateTime  time.Time `json:"createTime"`
	DownloadURL string    `json:"downloadUrl"`
}

type reportTypesResponse struct {
	ReportTypes   []ReportType `json:"reportTypes"`
	NextPageToken string       `json:"nextPageToken"`
}

type jobsResponse struct {
	Jobs          []ReportingJob `json:"jobs"`
	NextPageToken string         `json:"nextPageToken"`
}

type reportsResponse struct {
	Reports       []Report `json:"reports"`
	NextPageToken string   `json:"nextPageToken"`
}

// ListReportTypes returns the full report-type catalog, following pagination.
func (c *Client) ListReportTypes(ctx context.Context, token string) ([]ReportType, error) {
	var all []ReportType
	pageToken := ""
	for {
		params := url.Values{}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		var resp reportTypesResponse
		if err := c.getJSON(ctx, token, c.reportingBase+"/reportTypes", params, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.ReportTypes...)
		if resp.NextPageToken == "" {
			return all, nil
		}
		pageToken = resp.NextPageToken
	}
}

// ListJobs returns all reporting jobs owned by the token's account.
func (c *Client) ListJobs(ctx context.Context, token string) ([]ReportingJob, error) {
	var all []ReportingJob
	pageToken := ""
	for {
		params := url.Values{}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		var resp jobsResponse
		if err := c.getJSON(ctx, token, c.reportingBase+"/jobs", params, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Jobs...)
		if resp.NextPageToken == "" {
			return all, nil
		}
		pageToken = resp.NextPageToken
	}
}

// CreateJob creates a new reporting job for the given report type.
func (c *Client) CreateJob(ctx context.Context, token, reportTypeID, name string) (*ReportingJob, error) {
	body := map[string]string{"reportTypeId": reportTypeID, "name": name}
	var job ReportingJob
	if err := c.postJSON(ctx, token, c.reportingBase+"/jobs", body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// ListReports returns the available exports of a job, following pagination.
func (c *Client) ListReports(ctx context.Context, token, jobID string) ([]Report, error) {
	var all []Report
	pageToken := ""
	for {
		params := url.Values{}
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}
		var resp reportsResponse
		if err := c.getJSON(ctx, token, c.reportingBase+"/jobs/"+jobID+"/reports", params, &resp); err != nil {
			return nil, err
		}
		all = append(all, resp.Reports...)
		if resp.NextPageToken == "" {
			return all, nil
		}
		pageToken = resp.NextPageToken
	}
}

// Download fetches a report's CSV bytes from its media URL. Relative URLs are
// resolved against the reporting base (test fakes return relative paths).
func (c *Client) Download(ctx context.Context, token, downloadURL string) ([]byte, error) {
	if strings.HasPrefix(downloadURL, "/") {
		downloadURL = c.reportingBase + downloadURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", pathOnly(downloadURL), resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
