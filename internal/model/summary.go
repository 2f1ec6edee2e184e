package model

import "time"

// Summary is the aggregate served to dashboard clients, rebuilt wholesale by
// every successful refresh job.
type Summary struct {
	Channels           []ChannelSummary    `json:"channels"`
	TopPosts           []PostSummary       `json:"topPosts"`
	TimeSeries         []TimePoint         `json:"timeSeries"`
	AgeDistribution    []DistributionEntry `json:"ageDistribution"`
	GenderDistribution []DistributionEntry `json:"genderDistribution"`
	TopGeos            []DistributionEntry `json:"topGeos"`
}

// ChannelSummary holds per-channel headline figures.
type ChannelSummary struct {
	ChannelID         string  `json:"channelId"`
	ChannelName       string  `json:"channelName"`
	Views             int64   `json:"views"`
	EngagementRate    float64 `json:"engagementRate"`
	Followers         int64   `json:"followers"`
	FollowersDelta30d *int64  `json:"followersDelta30d,omitempty"`
}

// PostSummary is one entry of the top-posts list.
type PostSummary struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Views          int64   `json:"views"`
	EngagementRate float64 `json:"engagementRate"`
}

// TimePoint is one day of the merged time series.
type TimePoint struct {
	Date        string `json:"date"` // YYYY-MM-DD
	Views       int64  `json:"views"`
	Engagements int64  `json:"engagements"`
	Posts       int    `json:"posts"`
}

// DistributionEntry is one label of a percentage breakdown (age bucket,
// gender, or country). Values are integer percentages of a common total;
// independent rounding means a list need not sum to exactly 100.
type DistributionEntry struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// CachedSummary is the last generated summary for a user plus provenance.
type CachedSummary struct {
	UserID       string
	Summary      Summary
	GeneratedAt  time.Time
	RefreshJobID string
}

// Cache statuses for the summary read path.
const (
	CacheEmpty = "empty"
	CacheReady = "ready"
)

// AutoRefreshInfo reports whether a summary read opportunistically queued a
// background refresh.
type AutoRefreshInfo struct {
	Queued bool   `json:"queued"`
	JobID  string `json:"jobId,omitempty"`
	Status string `json:"status,omitempty"`
}

// SummaryResponse is the API response for GET /api/youtube/summary.
type SummaryResponse struct {
	Summary
	CacheStatus string          `json:"cacheStatus"`
	GeneratedAt *time.Time      `json:"generatedAt,omitempty"`
	AutoRefresh AutoRefreshInfo `json:"autoRefresh"`
}
