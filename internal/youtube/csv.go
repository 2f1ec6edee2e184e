package youtube

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

// headerVariants maps each logical report field to the header spellings seen
// across report types and API revisions. Matching is case- and
// punctuation-insensitive, so "Age Group", "age_group" and "ageGroup" all
// resolve to the same field.
var headerVariants = map[string][]string{
	"date":              {"day", "date"},
	"channel":           {"channel_id", "channel"},
	"video":             {"video_id", "video"},
	"ageGroup":          {"age_group", "age_bucket", "age"},
	"gender":            {"gender"},
	"country":           {"country_code", "country", "province_code"},
	"views":             {"views", "view_count"},
	"watchMinutes":      {"watch_time_minutes", "estimated_minutes_watched", "minutes_watched"},
	"viewerPercentage":  {"viewer_percentage", "views_percentage", "watch_time_percentage"},
	"likes":             {"likes", "like_count"},
	"comments":          {"comments", "comment_count"},
	"shares":            {"shares", "share_count"},
	"subscribersGained": {"subscribers_gained", "subscriber_gained"},
	"subscribersLost":   {"subscribers_lost", "subscriber_lost"},
}

// normalizeHeader lowercases a header name and strips everything that is not a
// letter or digit, so punctuation and spacing differences never matter.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// columnMap resolves each logical field to its column index in the header row,
// trying the known variants in order.
func columnMap(header []string) map[string]int {
	normalized := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, seen := normalized[key]; !seen {
			normalized[key] = i
		}
	}

	cols := make(map[string]int)
	for field, variants := range headerVariants {
		for _, v := range variants {
			if i, ok := normalized[normalizeHeader(v)]; ok {
				cols[field] = i
				break
			}
		}
	}
	return cols
}

// ParseReportCSV parses a downloaded export into report rows. The reader
// tolerates quoted fields, embedded commas, escaped quotes and CRLF/LF line
// endings. A file with only a header (or nothing) parses to zero rows.
func ParseReportCSV(data []byte) ([]model.ReportRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // ragged rows happen in practice; map by index, skip short ones

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cols := columnMap(header)
	_, hasGained := cols["subscribersGained"]
	_, hasLost := cols["subscribersLost"]
	hasSubs := hasGained || hasLost

	var rows []model.ReportRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		row := model.ReportRow{
			Date:              cell(record, cols, "date"),
			ChannelID:         cell(record, cols, "channel"),
			VideoID:           cell(record, cols, "video"),
			AgeGroup:          cell(record, cols, "ageGroup"),
			Gender:            cell(record, cols, "gender"),
			Country:           cell(record, cols, "country"),
			Views:             numCell(record, cols, "views"),
			WatchMinutes:      numCell(record, cols, "watchMinutes"),
			ViewerPercentage:  numCell(record, cols, "viewerPercentage"),
			Likes:             numCell(record, cols, "likes"),
			Comments:          numCell(record, cols, "comments"),
			Shares:            numCell(record, cols, "shares"),
			SubscribersGained: numCell(record, cols, "subscribersGained"),
			SubscribersLost:   numCell(record, cols, "subscribersLost"),
			HasSubscriberData: hasSubs,
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cell(record []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func numCell(record []string, cols map[string]int, field string) float64 {
	s := cell(record, cols, field)
	if s == "" {
		return 0
	}
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
