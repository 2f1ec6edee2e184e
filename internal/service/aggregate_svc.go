package service

import (
	"context"
	"log"
	"math"
	"sort"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

const (
	topPostsCap = 10
	topGeosCap  = 5
)

// seriesSource is one named candidate for the merged time series.
type seriesSource struct {
	Name   string
	Points []model.TimePoint
}

// distSource is one named candidate for a distribution (label → raw magnitude).
type distSource struct {
	Name   string
	Values map[string]float64
}

// postsSource is one named candidate for the top-posts list.
type postsSource struct {
	Name  string
	Posts []model.PostSummary
}

// tokenSource yields a usable access token for a connection.
type tokenSource interface {
	EnsureValidToken(ctx context.Context, conn *model.Connection) string
}

// snapshotSource is the slice of the snapshot fetcher the merge needs.
type snapshotSource interface {
	Fetch(ctx context.Context, token string) (*Snapshot, error)
	Titles(ctx context.Context, token string, ids []string) map[string]string
}

// analyticsSource resolves the time-bucketed analytics targets.
type analyticsSource interface {
	Fetch(ctx context.Context, token string, totalViews int64) *AnalyticsData
}

// reportSource fetches the parsed bulk reports for a channel.
type reportSource interface {
	Fetch(ctx context.Context, token, channelID string) *ReportData
}

// AggregateService merges the three data sources (analytics, reporting,
// snapshot) into one Summary using fixed per-field precedence.
type AggregateService struct {
	tokens    tokenSource
	snapshots snapshotSource
	analytics analyticsSource
	reports   reportSource
}

func NewAggregateService(tokens tokenSource, snapshots snapshotSource, analytics analyticsSource, reports reportSource) *AggregateService {
	return &AggregateService{
		tokens:    tokens,
		snapshots: snapshots,
		analytics: analytics,
		reports:   reports,
	}
}

// channelPart is everything extracted for one connection before the
// cross-channel combine.
type channelPart struct {
	Channel  model.ChannelSummary
	Series   []model.TimePoint
	TopPosts []model.PostSummary
	Age      map[string]float64
	Gender   map[string]float64
	Geo      map[string]float64
}

// BuildSummary runs the full fetch/merge pipeline for a user's connections,
// sequentially per connection to respect per-account rate limits. Source
// failures degrade to the next fallback; a connection that fails everywhere
// still contributes its identity with zeroed figures.
func (s *AggregateService) BuildSummary(ctx context.Context, conns []model.Connection) (*model.Summary, error) {
	summary := &model.Summary{
		Channels:           []model.ChannelSummary{},
		TopPosts:           []model.PostSummary{},
		TimeSeries:         []model.TimePoint{},
		AgeDistribution:    []model.DistributionEntry{},
		GenderDistribution: []model.DistributionEntry{},
		TopGeos:            []model.DistributionEntry{},
	}

	seriesAcc := make(map[string]*model.TimePoint)
	ageAcc := make(map[string]float64)
	genderAcc := make(map[string]float64)
	geoAcc := make(map[string]float64)
	var allPosts []model.PostSummary

	for i := range conns {
		part := s.buildChannel(ctx, &conns[i])
		summary.Channels = append(summary.Channels, part.Channel)
		allPosts = append(allPosts, part.TopPosts...)

		for _, tp := range part.Series {
			acc, ok := seriesAcc[tp.Date]
			if !ok {
				acc = &model.TimePoint{Date: tp.Date}
				seriesAcc[tp.Date] = acc
			}
			acc.Views += tp.Views
			acc.Engagements += tp.Engagements
			acc.Posts += tp.Posts
		}
		for label, v := range part.Age {
			ageAcc[label] += v
		}
		for label, v := range part.Gender {
			genderAcc[label] += v
		}
		for label, v := range part.Geo {
			geoAcc[label] += v
		}
	}

	for _, tp := range seriesAcc {
		summary.TimeSeries = append(summary.TimeSeries, *tp)
	}
	sort.Slice(summary.TimeSeries, func(i, j int) bool {
		return summary.TimeSeries[i].Date < summary.TimeSeries[j].Date
	})

	sort.SliceStable(allPosts, func(i, j int) bool { return allPosts[i].Views > allPosts[j].Views })
	if len(allPosts) > topPostsCap {
		allPosts = allPosts[:topPostsCap]
	}
	summary.TopPosts = append(summary.TopPosts, allPosts...)

	summary.AgeDistribution = percentList(ageAcc)
	summary.GenderDistribution = percentList(genderAcc)
	summary.TopGeos = topN(percentList(geoAcc), topGeosCap)

	return summary, nil
}

// buildChannel fetches all three sources for one connection and applies the
// per-field precedence rules.
func (s *AggregateService) buildChannel(ctx context.Context, conn *model.Connection) channelPart {
	token := s.tokens.EnsureValidToken(ctx, conn)

	snap, err := s.snapshots.Fetch(ctx, token)
	if err != nil {
		log.Printf("aggregate: snapshot for %s failed: %v", conn.ChannelID, err)
		snap = nil
	}

	var totalViews int64
	if snap != nil && snap.Channel != nil {
		totalViews = snap.Channel.Views
	}

	rep := s.reports.Fetch(ctx, token, conn.ChannelID)
	ana := s.analytics.Fetch(ctx, token, totalViews)

	repSeries := seriesFromReportRows(rep.ChannelDaily, rep.VideoDaily)

	var snapSeries []model.TimePoint
	var snapPosts []model.PostSummary
	if snap != nil {
		snapSeries = snap.Series
		snapPosts = snap.TopPosts
	}

	series := mergeSeries(
		seriesSource{Name: "analytics", Points: ana.Series},
		seriesSource{Name: "reporting", Points: repSeries},
		seriesSource{Name: "snapshot", Points: snapSeries},
	)

	repPosts := topPostsFromRows(rep.VideoDaily, topPostsCap)
	if len(repPosts) > 0 {
		s.backfillTitles(ctx, token, repPosts)
	}
	posts := mergePosts(
		postsSource{Name: "reporting", Posts: repPosts},
		postsSource{Name: "snapshot", Posts: snapPosts},
	)

	age := mergeDistribution(
		distSource{Name: "analytics", Values: ana.Age},
		distSource{Name: "reporting", Values: labelMagnitudes(rep.Demographics, func(r *model.ReportRow) string { return r.AgeGroup })},
	)
	gender := mergeDistribution(
		distSource{Name: "analytics", Values: ana.Gender},
		distSource{Name: "reporting", Values: labelMagnitudes(rep.Demographics, func(r *model.ReportRow) string { return r.Gender })},
	)
	geo := mergeDistribution(
		distSource{Name: "analytics", Values: ana.Geo},
		distSource{Name: "reporting", Values: labelMagnitudes(rep.Geo, func(r *model.ReportRow) string { return r.Country })},
	)

	channel := model.ChannelSummary{
		ChannelID:   conn.ChannelID,
		ChannelName: conn.ChannelName,
	}
	if snap != nil && snap.Channel != nil {
		if snap.Channel.Title != "" {
			channel.ChannelName = snap.Channel.Title
		}
		channel.Views = snap.Channel.Views
		channel.Followers = snap.Channel.Subscribers
	}
	if channel.Views == 0 {
		channel.Views = sumViews(series)
	}
	channel.EngagementRate = seriesEngagementRate(series)
	channel.FollowersDelta30d = followersDelta30d(rep.ChannelDaily)

	return channelPart{
		Channel:  channel,
		Series:   series,
		TopPosts: posts,
		Age:      age,
		Gender:   gender,
		Geo:      geo,
	}
}

// backfillTitles fills in titles for report-derived posts via a snapshot
// lookup; posts keep an empty title when the lookup fails.
func (s *AggregateService) backfillTitles(ctx context.Context, token string, posts []model.PostSummary) {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	titles := s.snapshots.Titles(ctx, token, ids)
	for i := range posts {
		if t, ok := titles[posts[i].ID]; ok {
			posts[i].Title = t
		}
	}
}

// mergeSeries picks the first source with a nonzero point; if none qualifies,
// the first non-empty source wins (even if entirely zero).
func mergeSeries(sources ...seriesSource) []model.TimePoint {
	for _, src := range sources {
		if hasNonzeroPoint(src.Points) {
			return src.Points
		}
	}
	for _, src := range sources {
		if len(src.Points) > 0 {
			return src.Points
		}
	}
	return nil
}

func hasNonzeroPoint(points []model.TimePoint) bool {
	for _, tp := range points {
		if tp.Views > 0 || tp.Engagements > 0 || tp.Posts > 0 {
			return true
		}
	}
	return false
}

// mergePosts picks the first non-empty posts source.
func mergePosts(sources ...postsSource) []model.PostSummary {
	for _, src := range sources {
		if len(src.Posts) > 0 {
			return src.Posts
		}
	}
	return nil
}

// mergeDistribution picks the first non-empty distribution source.
func mergeDistribution(sources ...distSource) map[string]float64 {
	for _, src := range sources {
		if len(src.Values) > 0 {
			return src.Values
		}
	}
	return nil
}

// seriesFromReportRows builds the reporting-derived time series: channel-daily
// rows carry views/engagements, video-daily rows contribute per-day post
// counts. When channel-daily is missing entirely, video-daily rows stand in
// for the whole series.
func seriesFromReportRows(channelDaily, videoDaily []model.ReportRow) []model.TimePoint {
	byDate := make(map[string]*model.TimePoint)
	point := func(date string) *model.TimePoint {
		tp, ok := byDate[date]
		if !ok {
			tp = &model.TimePoint{Date: date}
			byDate[date] = tp
		}
		return tp
	}

	hasChannelDaily := false
	for i := range channelDaily {
		r := &channelDaily[i]
		if r.Date == "" {
			continue
		}
		hasChannelDaily = true
		tp := point(r.Date)
		tp.Views += int64(r.Views)
		tp.Engagements += int64(r.Engagements())
	}

	videosByDate := make(map[string]map[string]struct{})
	for i := range videoDaily {
		r := &videoDaily[i]
		if r.Date == "" {
			continue
		}
		if !hasChannelDaily {
			tp := point(r.Date)
			tp.Views += int64(r.Views)
			tp.Engagements += int64(r.Engagements())
		}
		if r.VideoID == "" {
			continue
		}
		set, ok := videosByDate[r.Date]
		if !ok {
			set = make(map[string]struct{})
			videosByDate[r.Date] = set
		}
		set[r.VideoID] = struct{}{}
	}
	for date, set := range videosByDate {
		if tp, ok := byDate[date]; ok {
			tp.Posts = len(set)
		}
	}

	series := make([]model.TimePoint, 0, len(byDate))
	for _, tp := range byDate {
		series = append(series, *tp)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}

// topPostsFromRows ranks video ids by views summed across their daily rows.
func topPostsFromRows(rows []model.ReportRow, limit int) []model.PostSummary {
	views := make(map[string]float64)
	engagements := make(map[string]float64)
	for i := range rows {
		r := &rows[i]
		if r.VideoID == "" {
			continue
		}
		views[r.VideoID] += r.Views
		engagements[r.VideoID] += r.Engagements()
	}
	if len(views) == 0 {
		return nil
	}

	posts := make([]model.PostSummary, 0, len(views))
	for id, v := range views {
		posts = append(posts, model.PostSummary{
			ID:             id,
			Views:          int64(v),
			EngagementRate: rate(engagements[id], v),
		})
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].Views != posts[j].Views {
			return posts[i].Views > posts[j].Views
		}
		return posts[i].ID < posts[j].ID
	})
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts
}

// labelMagnitudes sums a raw magnitude per label over report rows: a reported
// percentage stands in directly, else watch minutes, else views.
func labelMagnitudes(rows []model.ReportRow, label func(*model.ReportRow) string) map[string]float64 {
	out := make(map[string]float64)
	for i := range rows {
		r := &rows[i]
		key := label(r)
		if key == "" {
			continue
		}
		switch {
		case r.ViewerPercentage != 0:
			out[key] += r.ViewerPercentage
		case r.WatchMinutes != 0:
			out[key] += r.WatchMinutes
		default:
			out[key] += r.Views
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// percentList converts a magnitude map into integer percentages of the common
// total, sorted descending. Negative magnitudes are clamped to zero, so no
// entry goes negative; independent rounding means the list sums to 100 ± (n-1).
func percentList(magnitudes map[string]float64) []model.DistributionEntry {
	var total float64
	for _, v := range magnitudes {
		if v > 0 {
			total += v
		}
	}
	if total <= 0 {
		return []model.DistributionEntry{}
	}

	entries := make([]model.DistributionEntry, 0, len(magnitudes))
	for label, v := range magnitudes {
		if v < 0 {
			v = 0
		}
		entries = append(entries, model.DistributionEntry{
			Label: label,
			Value: int(math.Round(v / total * 100)),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Label < entries[j].Label
	})
	return entries
}

func topN(entries []model.DistributionEntry, n int) []model.DistributionEntry {
	if len(entries) > n {
		return entries[:n]
	}
	return entries
}

// followersDelta30d computes the net subscriber change over the latest 30-day
// window anchored at the most recent row's date (export latency makes
// wall-clock "now" the wrong anchor). Nil when no row carries subscriber
// metrics at all.
func followersDelta30d(rows []model.ReportRow) *int64 {
	hasSubs := false
	var anchor time.Time
	for i := range rows {
		r := &rows[i]
		if !r.HasSubscriberData {
			continue
		}
		hasSubs = true
		if d, err := time.Parse("2006-01-02", r.Date); err == nil && d.After(anchor) {
			anchor = d
		}
	}
	if !hasSubs || anchor.IsZero() {
		return nil
	}

	windowStart := anchor.AddDate(0, 0, -30)
	var delta int64
	for i := range rows {
		r := &rows[i]
		if !r.HasSubscriberData {
			continue
		}
		d, err := time.Parse("2006-01-02", r.Date)
		if err != nil || d.Before(windowStart) {
			continue
		}
		delta += int64(r.SubscribersGained - r.SubscribersLost)
	}
	return &delta
}

func sumViews(series []model.TimePoint) int64 {
	var total int64
	for _, tp := range series {
		total += tp.Views
	}
	return total
}

func seriesEngagementRate(series []model.TimePoint) float64 {
	var views, engagements int64
	for _, tp := range series {
		views += tp.Views
		engagements += tp.Engagements
	}
	return rate(float64(engagements), float64(views))
}

func rate(engagements, views float64) float64 {
	if views == 0 {
		return 0
	}
	return engagements / views * 100
}
