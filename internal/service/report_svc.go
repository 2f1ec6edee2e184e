package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/creatorlens/creatorlens-go/internal/model"
	"github.com/creatorlens/creatorlens-go/internal/youtube"
)

// maxReportScan bounds how many of a job's newest exports are downloaded while
// hunting for a non-empty one.
const maxReportScan = 12

// reportTypeFallbacks lists known-compatible Reporting API type ids per
// logical report, tried in order when no configured id matches the catalog.
var reportTypeFallbacks = map[string][]string{
	model.ReportChannelDaily: {"channel_basic_a2", "channel_basic_a1"},
	model.ReportVideoDaily:   {"channel_basic_a3", "channel_basic_a2"},
	model.ReportDemographics: {"channel_demographics_a1"},
	model.ReportGeo:          {"channel_province_a2", "channel_province_a1"},
}

// reportTypeOrder fixes the fetch sequence so external calls stay predictable
// per connection.
var reportTypeOrder = []string{
	model.ReportChannelDaily,
	model.ReportVideoDaily,
	model.ReportDemographics,
	model.ReportGeo,
}

// reportingAPI is the slice of the Reporting API client the manager needs.
type reportingAPI interface {
	ListReportTypes(ctx context.Context, token string) ([]youtube.ReportType, error)
	ListJobs(ctx context.Context, token string) ([]youtube.ReportingJob, error)
	CreateJob(ctx context.Context, token, reportTypeID, name string) (*youtube.ReportingJob, error)
	ListReports(ctx context.Context, token, jobID string) ([]youtube.Report, error)
	Download(ctx context.Context, token, downloadURL string) ([]byte, error)
}

// ReportJobStore persists which external job serves each (channel, type) pair.
type ReportJobStore interface {
	Get(ctx context.Context, channelID, reportType string) (*model.ReportingJobRecord, error)
	Save(ctx context.Context, rec *model.ReportingJobRecord) error
}

// ReportCache caches parsed exports keyed by external report id.
type ReportCache interface {
	GetReport(ctx context.Context, reportID string) (*model.ParsedReport, error)
	SetReport(ctx context.Context, parsed *model.ParsedReport) error
}

// ReportData holds the parsed rows of all four report types for one channel.
// A nil slice means that report type produced nothing (or failed).
type ReportData struct {
	ChannelDaily []model.ReportRow
	VideoDaily   []model.ReportRow
	Demographics []model.ReportRow
	Geo          []model.ReportRow
}

// ReportService creates/reuses bulk export jobs against the Reporting API,
// picks the most recent non-empty export per job, and caches the parsed rows.
type ReportService struct {
	api       reportingAPI
	store     ReportJobStore
	cache     ReportCache
	preferred map[string]string // logical type → configured report-type id
}

func NewReportService(api reportingAPI, store ReportJobStore, cache ReportCache, preferred map[string]string) *ReportService {
	if preferred == nil {
		preferred = map[string]string{}
	}
	return &ReportService{api: api, store: store, cache: cache, preferred: preferred}
}

// Fetch downloads the freshest parse of every report type for a channel,
// sequentially (the Reporting API is job-based; fan-out risks duplicate job
// creation). Per-type failures are swallowed: a summary built from three
// report types beats no summary at all.
func (s *ReportService) Fetch(ctx context.Context, token, channelID string) *ReportData {
	catalog, err := s.api.ListReportTypes(ctx, token)
	if err != nil {
		log.Printf("reporting: list report types for %s failed: %v", channelID, err)
		return &ReportData{}
	}
	jobs, err := s.api.ListJobs(ctx, token)
	if err != nil {
		log.Printf("reporting: list jobs for %s failed: %v", channelID, err)
		jobs = nil
	}

	data := &ReportData{}
	for _, reportType := range reportTypeOrder {
		rows, err := s.fetchType(ctx, token, channelID, reportType, catalog, jobs)
		if err != nil {
			log.Printf("reporting: %s fetch for %s failed: %v", reportType, channelID, err)
			continue
		}
		switch reportType {
		case model.ReportChannelDaily:
			data.ChannelDaily = rows
		case model.ReportVideoDaily:
			data.VideoDaily = rows
		case model.ReportDemographics:
			data.Demographics = rows
		case model.ReportGeo:
			data.Geo = rows
		}
	}
	return data
}

func (s *ReportService) fetchType(ctx context.Context, token, channelID, reportType string, catalog []youtube.ReportType, jobs []youtube.ReportingJob) ([]model.ReportRow, error) {
	typeID := resolveReportTypeID(catalog, s.preferred[reportType], reportTypeFallbacks[reportType])
	if typeID == "" {
		return nil, fmt.Errorf("no report type in catalog for %s", reportType)
	}

	job, err := s.ensureJob(ctx, token, channelID, reportType, typeID, jobs)
	if err != nil {
		return nil, err
	}

	parsed, err := s.latestReport(ctx, token, job.JobID)
	if err != nil {
		return nil, err
	}
	if parsed == nil {
		return nil, nil // job exists but has produced no exports yet
	}
	return parsed.Data, nil
}

// resolveReportTypeID picks a concrete catalog id: the configured id when the
// catalog carries it, else the first present fallback, else a prefix match.
func resolveReportTypeID(catalog []youtube.ReportType, preferred string, fallbacks []string) string {
	inCatalog := make(map[string]bool, len(catalog))
	for _, t := range catalog {
		inCatalog[t.ID] = true
	}

	if preferred != "" && inCatalog[preferred] {
		return preferred
	}
	for _, id := range fallbacks {
		if inCatalog[id] {
			return id
		}
	}

	candidates := fallbacks
	if preferred != "" {
		candidates = append([]string{preferred}, fallbacks...)
	}
	for _, want := range candidates {
		prefix := strings.TrimRight(want, "0123456789")
		for _, t := range catalog {
			if strings.HasPrefix(t.ID, prefix) {
				return t.ID
			}
		}
	}
	return ""
}

// ensureJob reuses the recorded job for (channel, type), else adopts a
// matching job already in the external catalog (by name, then by type alone),
// else creates a new one. The chosen job is recorded either way.
func (s *ReportService) ensureJob(ctx context.Context, token, channelID, reportType, typeID string, jobs []youtube.ReportingJob) (*model.ReportingJobRecord, error) {
	if rec, err := s.store.Get(ctx, channelID, reportType); err == nil && rec != nil {
		return rec, nil
	} else if err != nil {
		log.Printf("reporting: job record lookup (%s/%s) failed: %v", channelID, reportType, err)
	}

	name := jobName(channelID, reportType)

	var adopted *youtube.ReportingJob
	for i := range jobs {
		if jobs[i].Name == name {
			adopted = &jobs[i]
			break
		}
	}
	if adopted == nil {
		for i := range jobs {
			if jobs[i].ReportTypeID == typeID {
				adopted = &jobs[i]
				break
			}
		}
	}

	if adopted == nil {
		created, err := s.api.CreateJob(ctx, token, typeID, name)
		if err != nil {
			return nil, fmt.Errorf("create job (%s): %w", typeID, err)
		}
		adopted = created
	}

	rec := &model.ReportingJobRecord{
		ChannelID:    channelID,
		ReportType:   reportType,
		JobID:        adopted.ID,
		Name:         adopted.Name,
		ReportTypeID: adopted.ReportTypeID,
	}
	if err := s.store.Save(ctx, rec); err != nil {
		log.Printf("reporting: job record save (%s/%s) failed: %v", channelID, reportType, err)
	}
	return rec, nil
}

// latestReport scans the job's newest exports for the first one whose CSV
// parses to at least one data row. If every scanned export is empty, the most
// recent empty one is cached and returned anyway so callers can tell "no data
// yet" apart from "fetch failed". Returns nil when the job has no exports.
func (s *ReportService) latestReport(ctx context.Context, token, jobID string) (*model.ParsedReport, error) {
	reports, err := s.api.ListReports(ctx, token, jobID)
	if err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return nil, nil
	}

	sort.SliceStable(reports, func(i, j int) bool {
		return reportTime(reports[i]).After(reportTime(reports[j]))
	})
	if len(reports) > maxReportScan {
		reports = reports[:maxReportScan]
	}

	var newestEmpty *model.ParsedReport
	for _, rep := range reports {
		parsed, err := s.parseReport(ctx, token, rep)
		if err != nil {
			log.Printf("reporting: download/parse report %s failed: %v", rep.ID, err)
			continue
		}
		if len(parsed.Data) > 0 {
			return parsed, nil
		}
		if newestEmpty == nil {
			newestEmpty = parsed
		}
	}

	if newestEmpty != nil {
		if err := s.cache.SetReport(ctx, newestEmpty); err != nil {
			log.Printf("reporting: cache empty report %s failed: %v", newestEmpty.ReportID, err)
		}
	}
	return newestEmpty, nil
}

// parseReport returns the cached parse of a report, downloading and caching
// on miss. Only non-empty parses are cached here; the empty-report fallback is
// cached by latestReport once the whole scan comes up empty.
func (s *ReportService) parseReport(ctx context.Context, token string, rep youtube.Report) (*model.ParsedReport, error) {
	if cached, err := s.cache.GetReport(ctx, rep.ID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		log.Printf("reporting: cache read for report %s failed: %v", rep.ID, err)
	}

	raw, err := s.api.Download(ctx, token, rep.DownloadURL)
	if err != nil {
		return nil, err
	}
	rows, err := youtube.ParseReportCSV(raw)
	if err != nil {
		return nil, err
	}

	parsed := &model.ParsedReport{
		ReportID:  rep.ID,
		CreatedAt: reportTime(rep),
		Data:      rows,
	}
	if len(rows) > 0 {
		if err := s.cache.SetReport(ctx, parsed); err != nil {
			log.Printf("reporting: cache report %s failed: %v", rep.ID, err)
		}
	}
	return parsed, nil
}

func reportTime(rep youtube.Report) time.Time {
	if !rep.CreateTime.IsZero() {
		return rep.CreateTime
	}
	return rep.StartTime
}

func jobName(channelID, reportType string) string {
	return "creatorlens:" + channelID + ":" + reportType
}
