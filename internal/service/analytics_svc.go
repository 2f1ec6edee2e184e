package service

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/model"
	"github.com/creatorlens/creatorlens-go/internal/youtube"
)

// Historical windows tried longest-first. Some accounts only populate
// demographic and geo breakdowns for certain windows, so each query list is
// retried across all three before giving up.
var analyticsWindows = []int{365, 90, 28}

// analyticsAPI is the slice of the Analytics API client the resolver needs.
type analyticsAPI interface {
	Query(ctx context.Context, token string, q youtube.AnalyticsQuery) (*youtube.AnalyticsResult, error)
}

// AnalyticsData is everything the range resolver could extract for one
// connection. Empty slices/maps mean that target never returned rows.
type AnalyticsData struct {
	Series []model.TimePoint
	Age    map[string]float64
	Gender map[string]float64
	Geo    map[string]float64
}

// AnalyticsService queries the time-bucketed Analytics API across multiple
// historical windows with dimension fallbacks until rows come back.
type AnalyticsService struct {
	api analyticsAPI
	now func() time.Time
}

func NewAnalyticsService(api analyticsAPI) *AnalyticsService {
	return &AnalyticsService{api: api, now: time.Now}
}

// Fetch resolves all analytics targets for one connection. Each target
// degrades independently to empty on failure; Fetch itself never errors.
// totalViews (from the snapshot) converts viewer percentages into absolute
// magnitudes when known.
func (s *AnalyticsService) Fetch(ctx context.Context, token string, totalViews int64) *AnalyticsData {
	return &AnalyticsData{
		Series: s.resolveSeries(ctx, token),
		Age:    s.resolveDimension(ctx, token, "ageGroup", totalViews),
		Gender: s.resolveDimension(ctx, token, "gender", totalViews),
		Geo:    s.resolveGeo(ctx, token, totalViews),
	}
}

// resolveSeries fetches the per-day views/engagements series, shortest
// sufficient window wins.
func (s *AnalyticsService) resolveSeries(ctx context.Context, token string) []model.TimePoint {
	for _, days := range analyticsWindows {
		start, end := s.window(days)
		result, err := s.api.Query(ctx, token, youtube.AnalyticsQuery{
			StartDate:  start,
			EndDate:    end,
			Metrics:    "views,likes,comments,shares",
			Dimensions: "day",
			Sort:       "day",
		})
		if err != nil {
			log.Printf("analytics: day series query (%dd) failed: %v", days, err)
			continue
		}
		if len(result.Rows) == 0 {
			continue
		}

		series := make([]model.TimePoint, 0, len(result.Rows))
		for _, row := range result.Rows {
			engagements := result.Float(row, "likes") +
				result.Float(row, "comments") +
				result.Float(row, "shares")
			series = append(series, model.TimePoint{
				Date:        result.String(row, "day"),
				Views:       int64(result.Float(row, "views")),
				Engagements: int64(engagements),
			})
		}
		sort.Slice(series, func(i, j int) bool { return series[i].Date < series[j].Date })
		return series
	}
	return nil
}

// resolveDimension fetches one demographic breakdown (ageGroup or gender).
// Candidates: the combined ageGroup,gender query first, then the dimension
// alone — combined rows exist for fewer accounts but serve both targets.
func (s *AnalyticsService) resolveDimension(ctx context.Context, token, dimension string, totalViews int64) map[string]float64 {
	candidates := []string{"ageGroup,gender", dimension}

	for _, days := range analyticsWindows {
		start, end := s.window(days)
		for _, dims := range candidates {
			result, err := s.api.Query(ctx, token, youtube.AnalyticsQuery{
				StartDate:  start,
				EndDate:    end,
				Metrics:    "viewerPercentage",
				Dimensions: dims,
			})
			if err != nil {
				log.Printf("analytics: %s query (%dd, dims=%s) failed: %v", dimension, days, dims, err)
				continue
			}
			if len(result.Rows) == 0 {
				continue
			}

			out := make(map[string]float64)
			for _, row := range result.Rows {
				label := result.String(row, dimension)
				if label == "" {
					continue
				}
				out[label] += rowMagnitude(result, row, totalViews)
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

// resolveGeo fetches the per-country breakdown.
func (s *AnalyticsService) resolveGeo(ctx context.Context, token string, totalViews int64) map[string]float64 {
	for _, days := range analyticsWindows {
		start, end := s.window(days)
		result, err := s.api.Query(ctx, token, youtube.AnalyticsQuery{
			StartDate:  start,
			EndDate:    end,
			Metrics:    "views,estimatedMinutesWatched",
			Dimensions: "country",
			Sort:       "-views",
			MaxResults: 25,
		})
		if err != nil {
			log.Printf("analytics: geo query (%dd) failed: %v", days, err)
			continue
		}
		if len(result.Rows) == 0 {
			continue
		}

		out := make(map[string]float64)
		for _, row := range result.Rows {
			country := result.String(row, "country")
			if country == "" {
				continue
			}
			out[country] += rowMagnitude(result, row, totalViews)
		}
		if len(out) > 0 {
			return out
		}
	}
	return nil
}

// rowMagnitude reconciles a row's percentage-or-absolute value into one
// comparable magnitude: a reported percentage converts to absolute views when
// the channel total is known (else the percentage stands in directly);
// estimated watch minutes beat raw views when present.
func rowMagnitude(result *youtube.AnalyticsResult, row []json.Number, totalViews int64) float64 {
	if result.Has("viewerPercentage") {
		pct := result.Float(row, "viewerPercentage")
		if totalViews > 0 {
			return pct / 100 * float64(totalViews)
		}
		return pct
	}
	if result.Has("estimatedMinutesWatched") {
		return result.Float(row, "estimatedMinutesWatched")
	}
	return result.Float(row, "views")
}

func (s *AnalyticsService) window(days int) (string, string) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -days)
	return start.Format("2006-01-02"), end.Format("2006-01-02")
}
