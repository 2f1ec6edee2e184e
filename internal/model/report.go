package model

import "time"

// Logical report types fetched per connection. Each maps to an external
// Reporting API report-type id resolved at runtime.
const (
	ReportChannelDaily = "channel-daily"
	ReportVideoDaily   = "video-daily"
	ReportDemographics = "demographics"
	ReportGeo          = "geo"
)

// ReportingJobRecord remembers the external reporting job created (or adopted)
// for one (channel, report type) pair. External jobs are perpetual export
// streams, so records are reused indefinitely.
type ReportingJobRecord struct {
	ChannelID    string
	ReportType   string
	JobID        string
	Name         string
	ReportTypeID string
}

// ReportRow is one parsed CSV row of a downloaded export. Only the columns the
// aggregation cares about are mapped; everything else is dropped at parse time.
type ReportRow struct {
	Date              string  `json:"date,omitempty"` // YYYY-MM-DD
	ChannelID         string  `json:"channelId,omitempty"`
	VideoID           string  `json:"videoId,omitempty"`
	AgeGroup          string  `json:"ageGroup,omitempty"`
	Gender            string  `json:"gender,omitempty"`
	Country           string  `json:"country,omitempty"`
	Views             float64 `json:"views"`
	WatchMinutes      float64 `json:"watchMinutes,omitempty"`
	ViewerPercentage  float64 `json:"viewerPercentage,omitempty"`
	Likes             float64 `json:"likes,omitempty"`
	Comments          float64 `json:"comments,omitempty"`
	Shares            float64 `json:"shares,omitempty"`
	SubscribersGained float64 `json:"subscribersGained,omitempty"`
	SubscribersLost   float64 `json:"subscribersLost,omitempty"`
	HasSubscriberData bool    `json:"hasSubscriberData,omitempty"`
}

// Engagements sums the interaction columns of a row.
func (r *ReportRow) Engagements() float64 {
	return r.Likes + r.Comments + r.Shares
}

// ParsedReport is the cached parse of the most recent non-empty export for a
// reporting job, keyed by the external report id. A newer report id supersedes
// it implicitly; it is never explicitly expired.
type ParsedReport struct {
	ReportID  string      `json:"reportId"`
	CreatedAt time.Time   `json:"createdAt"`
	Data      []ReportRow `json:"data"`
}
