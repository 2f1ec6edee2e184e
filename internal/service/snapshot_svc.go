package service

import (
	"context"
	"sort"

	"github.com/creatorlens/creatorlens-go/internal/model"
	"github.com/creatorlens/creatorlens-go/internal/youtube"
)

// Snapshot fetch bounds: enough videos to fill the top-posts list and sketch a
// fallback time series without burning Data API quota.
const (
	snapshotTopCount    = 6
	snapshotRecentCount = 8
)

// snapshotAPI is the slice of the Data API client the fetcher needs.
type snapshotAPI interface {
	MyChannel(ctx context.Context, token string) (*youtube.ChannelStats, error)
	TopVideos(ctx context.Context, token string, maxResults int) ([]youtube.Video, error)
	RecentVideos(ctx context.Context, token string, maxResults int) ([]youtube.Video, error)
	VideosByID(ctx context.Context, token string, ids []string) ([]youtube.Video, error)
}

// Snapshot is the low-latency view of one channel: current totals plus a
// small video sample. It is the only source guaranteed to return something
// immediately and is the fallback of last resort.
type Snapshot struct {
	Channel  *youtube.ChannelStats
	TopPosts []model.PostSummary
	Series   []model.TimePoint
}

// SnapshotService calls the Data API for current channel and video totals.
type SnapshotService struct {
	api snapshotAPI
}

func NewSnapshotService(api snapshotAPI) *SnapshotService {
	return &SnapshotService{api: api}
}

// Fetch builds a snapshot for the connection behind the token. Channel stats
// are required; video lookups degrade to empty lists on failure.
func (s *SnapshotService) Fetch(ctx context.Context, token string) (*Snapshot, error) {
	stats, err := s.api.MyChannel(ctx, token)
	if err != nil {
		return nil, err
	}

	top, err := s.api.TopVideos(ctx, token, snapshotTopCount)
	if err != nil {
		top = nil
	}
	recent, err := s.api.RecentVideos(ctx, token, snapshotRecentCount)
	if err != nil {
		recent = nil
	}

	videos := dedupeVideos(top, recent)
	return &Snapshot{
		Channel:  stats,
		TopPosts: rankSnapshotPosts(videos),
		Series:   groupVideosByDate(videos),
	}, nil
}

// Titles resolves video titles by id for top-post backfill.
func (s *SnapshotService) Titles(ctx context.Context, token string, ids []string) map[string]string {
	videos, err := s.api.VideosByID(ctx, token, ids)
	if err != nil {
		return nil
	}
	titles := make(map[string]string, len(videos))
	for _, v := range videos {
		titles[v.ID] = v.Title
	}
	return titles
}

func dedupeVideos(lists ...[]youtube.Video) []youtube.Video {
	seen := make(map[string]struct{})
	var out []youtube.Video
	for _, list := range lists {
		for _, v := range list {
			if _, ok := seen[v.ID]; ok {
				continue
			}
			seen[v.ID] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// rankSnapshotPosts orders the sampled videos by views descending.
func rankSnapshotPosts(videos []youtube.Video) []model.PostSummary {
	posts := make([]model.PostSummary, 0, len(videos))
	for _, v := range videos {
		posts = append(posts, model.PostSummary{
			ID:             v.ID,
			Title:          v.Title,
			Views:          v.Views,
			EngagementRate: engagementRate(v.Engagements(), v.Views),
		})
	}
	sort.SliceStable(posts, func(i, j int) bool { return posts[i].Views > posts[j].Views })
	return posts
}

// groupVideosByDate buckets the sampled videos by publish date, yielding the
// last-resort time series.
func groupVideosByDate(videos []youtube.Video) []model.TimePoint {
	byDate := make(map[string]*model.TimePoint)
	for _, v := range videos {
		if v.PublishedAt.IsZero() {
			continue
		}
		date := v.PublishedAt.UTC().Format("2006-01-02")
		tp, ok := byDate[date]
		if !ok {
			tp = &model.TimePoint{Date: date}
			byDate[date] = tp
		}
		tp.Views += v.Views
		tp.Engagements += v.Engagements()
		tp.Posts++
	}

	series := make([]model.TimePoint, 0, len(byDate))
	for _, tp := range byDate {
		series = append(series, *tp)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
	return series
}

// engagementRate is engagements per hundred views.
func engagementRate(engagements, views int64) float64 {
	if views == 0 {
		return 0
	}
	return float64(engagements) / float64(views) * 100
}
