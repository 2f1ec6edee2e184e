package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/youtube"
)

// fakeAnalyticsAPI answers queries by (dimensions, metrics) key; anything
// unscripted returns an empty result.
type fakeAnalyticsAPI struct {
	results map[string]*youtube.AnalyticsResult
	errs    map[string]error
	queries []youtube.AnalyticsQuery
}

func (f *fakeAnalyticsAPI) Query(ctx context.Context, token string, q youtube.AnalyticsQuery) (*youtube.AnalyticsResult, error) {
	f.queries = append(f.queries, q)
	key := q.Dimensions + "|" + q.Metrics
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	if r := f.results[key]; r != nil {
		return r, nil
	}
	return &youtube.AnalyticsResult{}, nil
}

func analyticsResult(columns []string, rows ...[]string) *youtube.AnalyticsResult {
	r := &youtube.AnalyticsResult{}
	for _, c := range columns {
		r.ColumnHeaders = append(r.ColumnHeaders, youtube.AnalyticsColumn{Name: c})
	}
	for _, row := range rows {
		cells := make([]json.Number, len(row))
		for i, v := range row {
			cells[i] = json.Number(v)
		}
		r.Rows = append(r.Rows, cells)
	}
	return r
}

func newTestAnalyticsService(api analyticsAPI) *AnalyticsService {
	svc := NewAnalyticsService(api)
	svc.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestResolveSeries(t *testing.T) {
	api := &fakeAnalyticsAPI{results: map[string]*youtube.AnalyticsResult{
		"day|views,likes,comments,shares": analyticsResult(
			[]string{"day", "views", "likes", "comments", "shares"},
			[]string{"2026-08-02", "200", "10", "4", "1"},
			[]string{"2026-08-01", "100", "5", "2", "0"},
		),
	}}

	series := newTestAnalyticsService(api).resolveSeries(context.Background(), "tok")
	if len(series) != 2 {
		t.Fatalf("got %d points, want 2", len(series))
	}
	// Sorted ascending by date regardless of response order.
	if series[0].Date != "2026-08-01" || series[0].Views != 100 || series[0].Engagements != 7 {
		t.Errorf("point 0 = %+v", series[0])
	}
	if series[1].Views != 200 || series[1].Engagements != 15 {
		t.Errorf("point 1 = %+v", series[1])
	}
}

func TestResolveSeries_RetriesAcrossWindows(t *testing.T) {
	// Every window returns empty; three attempts then nil.
	api := &fakeAnalyticsAPI{}

	series := newTestAnalyticsService(api).resolveSeries(context.Background(), "tok")
	if series != nil {
		t.Errorf("series = %+v, want nil", series)
	}
	if len(api.queries) != len(analyticsWindows) {
		t.Errorf("made %d queries, want %d", len(api.queries), len(analyticsWindows))
	}
}

func TestResolveDimension_CombinedQueryFirst(t *testing.T) {
	api := &fakeAnalyticsAPI{results: map[string]*youtube.AnalyticsResult{
		"ageGroup,gender|viewerPercentage": analyticsResult(
			[]string{"ageGroup", "gender", "viewerPercentage"},
			[]string{"AGE_18_24", "female", "30.0"},
			[]string{"AGE_18_24", "male", "20.0"},
			[]string{"AGE_25_34", "female", "50.0"},
		),
	}}

	got := newTestAnalyticsService(api).resolveDimension(context.Background(), "tok", "ageGroup", 0)
	// Combined rows collapse onto the requested dimension.
	if got["AGE_18_24"] != 50 || got["AGE_25_34"] != 50 {
		t.Errorf("ageGroup magnitudes = %v", got)
	}
}

func TestResolveDimension_FallsBackToSingleDimension(t *testing.T) {
	api := &fakeAnalyticsAPI{
		errs: map[string]error{
			"ageGroup,gender|viewerPercentage": errors.New("combined dims unsupported"),
		},
		results: map[string]*youtube.AnalyticsResult{
			"gender|viewerPercentage": analyticsResult(
				[]string{"gender", "viewerPercentage"},
				[]string{"female", "60.0"},
				[]string{"male", "40.0"},
			),
		},
	}

	got := newTestAnalyticsService(api).resolveDimension(context.Background(), "tok", "gender", 0)
	if got["female"] != 60 || got["male"] != 40 {
		t.Errorf("gender magnitudes = %v", got)
	}
}

func TestResolveGeo(t *testing.T) {
	api := &fakeAnalyticsAPI{results: map[string]*youtube.AnalyticsResult{
		"country|views,estimatedMinutesWatched": analyticsResult(
			[]string{"country", "views", "estimatedMinutesWatched"},
			[]string{"US", "500", "1200"},
			[]string{"DE", "300", "900"},
		),
	}}

	got := newTestAnalyticsService(api).resolveGeo(context.Background(), "tok", 0)
	// Minutes watched beat raw views as the magnitude.
	if got["US"] != 1200 || got["DE"] != 900 {
		t.Errorf("geo magnitudes = %v", got)
	}
}

func TestRowMagnitude(t *testing.T) {
	pctResult := analyticsResult([]string{"ageGroup", "viewerPercentage"}, []string{"AGE_18_24", "25.0"})
	viewsResult := analyticsResult([]string{"country", "views"}, []string{"US", "400"})

	t.Run("percentage converts with known total", func(t *testing.T) {
		got := rowMagnitude(pctResult, pctResult.Rows[0], 1000)
		if got != 250 {
			t.Errorf("magnitude = %v, want 250", got)
		}
	})

	t.Run("percentage stands in without total", func(t *testing.T) {
		got := rowMagnitude(pctResult, pctResult.Rows[0], 0)
		if got != 25 {
			t.Errorf("magnitude = %v, want 25", got)
		}
	})

	t.Run("views when no percentage column", func(t *testing.T) {
		got := rowMagnitude(viewsResult, viewsResult.Rows[0], 1000)
		if got != 400 {
			t.Errorf("magnitude = %v, want 400", got)
		}
	})
}

func TestWindow(t *testing.T) {
	svc := newTestAnalyticsService(&fakeAnalyticsAPI{})

	start, end := svc.window(28)
	if end != "2026-08-31" {
		t.Errorf("end = %s, want 2026-08-31", end)
	}
	if start != "2026-08-03" {
		t.Errorf("start = %s, want 2026-08-03", start)
	}
}
