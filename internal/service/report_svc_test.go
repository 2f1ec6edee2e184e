package service

import (
	"context"
	"testing"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/model"
	"github.com/creatorlens/creatorlens-go/internal/youtube"
)

// fakeReportingAPI serves a fixed catalog, job list and per-URL CSV payloads.
type fakeReportingAPI struct {
	catalog   []youtube.ReportType
	jobs      []youtube.ReportingJob
	reports   map[string][]youtube.Report // jobID → exports
	downloads map[string][]byte           // downloadURL → CSV
	created   []youtube.ReportingJob
}

func (f *fakeReportingAPI) ListReportTypes(ctx context.Context, token string) ([]youtube.ReportType, error) {
	return f.catalog, nil
}

func (f *fakeReportingAPI) ListJobs(ctx context.Context, token string) ([]youtube.ReportingJob, error) {
	return f.jobs, nil
}

func (f *fakeReportingAPI) CreateJob(ctx context.Context, token, reportTypeID, name string) (*youtube.ReportingJob, error) {
	job := youtube.ReportingJob{ID: "job-" + reportTypeID, Name: name, ReportTypeID: reportTypeID}
	f.created = append(f.created, job)
	return &job, nil
}

func (f *fakeReportingAPI) ListReports(ctx context.Context, token, jobID string) ([]youtube.Report, error) {
	return f.reports[jobID], nil
}

func (f *fakeReportingAPI) Download(ctx context.Context, token, downloadURL string) ([]byte, error) {
	return f.downloads[downloadURL], nil
}

type fakeReportJobStore struct {
	recs map[string]*model.ReportingJobRecord
}

func newFakeReportJobStore() *fakeReportJobStore {
	return &fakeReportJobStore{recs: make(map[string]*model.ReportingJobRecord)}
}

func (f *fakeReportJobStore) Get(ctx context.Context, channelID, reportType string) (*model.ReportingJobRecord, error) {
	return f.recs[channelID+"/"+reportType], nil
}

func (f *fakeReportJobStore) Save(ctx context.Context, rec *model.ReportingJobRecord) error {
	f.recs[rec.ChannelID+"/"+rec.ReportType] = rec
	return nil
}

type fakeReportCache struct {
	store map[string]*model.ParsedReport
	sets  int
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{store: make(map[string]*model.ParsedReport)}
}

func (f *fakeReportCache) GetReport(ctx context.Context, reportID string) (*model.ParsedReport, error) {
	return f.store[reportID], nil
}

func (f *fakeReportCache) SetReport(ctx context.Context, parsed *model.ParsedReport) error {
	f.store[parsed.ReportID] = parsed
	f.sets++
	return nil
}

func TestResolveReportTypeID(t *testing.T) {
	catalog := []youtube.ReportType{
		{ID: "channel_basic_a2"},
		{ID: "channel_demographics_a1"},
		{ID: "channel_province_a3"},
	}

	tests := []struct {
		name      string
		preferred string
		fallbacks []string
		want      string
	}{
		{"preferred in catalog", "channel_basic_a2", []string{"channel_basic_a1"}, "channel_basic_a2"},
		{"preferred missing, fallback hits", "channel_basic_a9", []string{"channel_basic_a2"}, "channel_basic_a2"},
		{"second fallback hits", "", []string{"channel_basic_a3", "channel_demographics_a1"}, "channel_demographics_a1"},
		{"prefix match on newer revision", "", []string{"channel_province_a2", "channel_province_a1"}, "channel_province_a3"},
		{"preferred prefix match", "channel_province_a9", nil, "channel_province_a3"},
		{"nothing matches", "", []string{"content_owner_basic_a1"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveReportTypeID(catalog, tt.preferred, tt.fallbacks)
			if got != tt.want {
				t.Errorf("resolveReportTypeID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReportService_SkipsEmptyExports(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }

	api := &fakeReportingAPI{
		catalog: []youtube.ReportType{{ID: "channel_basic_a2"}},
		reports: map[string][]youtube.Report{
			"job-channel_basic_a2": {
				// Three newest exports are header-only; the fourth has data.
				{ID: "r4", CreateTime: day(28), DownloadURL: "/media/r4"},
				{ID: "r3", CreateTime: day(27), DownloadURL: "/media/r3"},
				{ID: "r2", CreateTime: day(26), DownloadURL: "/media/r2"},
				{ID: "r1", CreateTime: day(25), DownloadURL: "/media/r1"},
			},
		},
		downloads: map[string][]byte{
			"/media/r4": []byte("date,views\n"),
			"/media/r3": []byte("date,views\n"),
			"/media/r2": []byte("date,views\n"),
			"/media/r1": []byte("date,views\n2026-08-20,100\n2026-08-21,150\n"),
		},
	}

	svc := NewReportService(api, newFakeReportJobStore(), newFakeReportCache(), nil)

	data := svc.Fetch(context.Background(), "tok", "UC1")
	if len(data.ChannelDaily) != 2 {
		t.Fatalf("got %d channel-daily rows, want 2", len(data.ChannelDaily))
	}
	if data.ChannelDaily[0].Views != 100 {
		t.Errorf("row 0 views = %v, want 100", data.ChannelDaily[0].Views)
	}
}

func TestReportService_AllEmptyReturnsNewestEmpty(t *testing.T) {
	api := &fakeReportingAPI{
		catalog: []youtube.ReportType{{ID: "channel_basic_a2"}},
		reports: map[string][]youtube.Report{
			"job-channel_basic_a2": {
				{ID: "old", CreateTime: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), DownloadURL: "/media/old"},
				{ID: "new", CreateTime: time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), DownloadURL: "/media/new"},
			},
		},
		downloads: map[string][]byte{
			"/media/old": []byte("date,views\n"),
			"/media/new": []byte("date,views\n"),
		},
	}
	cache := newFakeReportCache()

	svc := NewReportService(api, newFakeReportJobStore(), cache, nil)

	data := svc.Fetch(context.Background(), "tok", "UC1")
	if len(data.ChannelDaily) != 0 {
		t.Errorf("got %d rows, want 0", len(data.ChannelDaily))
	}
	// The newest empty parse should be cached so the next sweep skips the scan.
	if cache.store["new"] == nil {
		t.Error("newest empty report should be cached")
	}
}

func TestReportService_CreatesJobOnce(t *testing.T) {
	api := &fakeReportingAPI{
		catalog: []youtube.ReportType{{ID: "channel_basic_a2"}},
		reports: map[string][]youtube.Report{},
	}
	store := newFakeReportJobStore()

	svc := NewReportService(api, store, newFakeReportCache(), nil)

	svc.Fetch(context.Background(), "tok", "UC1")
	if len(api.created) == 0 {
		t.Fatal("a job should be created when none exists")
	}
	firstCount := len(api.created)

	// Second fetch reuses the recorded job instead of creating another.
	svc.Fetch(context.Background(), "tok", "UC1")
	if len(api.created) != firstCount {
		t.Errorf("created %d jobs total, want %d", len(api.created), firstCount)
	}
}

func TestReportService_AdoptsExistingJobByName(t *testing.T) {
	api := &fakeReportingAPI{
		catalog: []youtube.ReportType{{ID: "channel_basic_a2"}},
		jobs: []youtube.ReportingJob{
			{ID: "ext-1", Name: "creatorlens:UC1:channel-daily", ReportTypeID: "channel_basic_a2"},
		},
		reports: map[string][]youtube.Report{},
	}
	store := newFakeReportJobStore()

	svc := NewReportService(api, store, newFakeReportCache(), nil)
	svc.Fetch(context.Background(), "tok", "UC1")

	rec := store.recs["UC1/"+model.ReportChannelDaily]
	if rec == nil {
		t.Fatal("job record should be saved")
	}
	if rec.JobID != "ext-1" {
		t.Errorf("adopted job = %s, want ext-1", rec.JobID)
	}
	for _, c := range api.created {
		if c.ReportTypeID == "channel_basic_a2" {
			t.Error("should not create a job when one matches by name")
		}
	}
}

func TestReportService_UsesCachedParse(t *testing.T) {
	api := &fakeReportingAPI{
		catalog: []youtube.ReportType{{ID: "channel_basic_a2"}},
		reports: map[string][]youtube.Report{
			"job-channel_basic_a2": {
				{ID: "r1", CreateTime: time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), DownloadURL: "/media/r1"},
			},
		},
		// No download payload: a download would parse to zero rows.
	}
	cache := newFakeReportCache()
	cache.store["r1"] = &model.ParsedReport{
		ReportID: "r1",
		Data:     []model.ReportRow{{Date: "2026-08-27", Views: 42}},
	}

	svc := NewReportService(api, newFakeReportJobStore(), cache, nil)

	data := svc.Fetch(context.Background(), "tok", "UC1")
	if len(data.ChannelDaily) != 1 || data.ChannelDaily[0].Views != 42 {
		t.Errorf("rows = %+v, want the cached parse", data.ChannelDaily)
	}
}

func TestJobName(t *testing.T) {
	got := jobName("UC1", model.ReportChannelDaily)
	if got != "creatorlens:UC1:channel-daily" {
		t.Errorf("jobName = %q", got)
	}
}
