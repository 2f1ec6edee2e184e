package youtube

import (
	"testing"
)

func TestParseReportCSV_Basic(t *testing.T) {
	data := []byte("date,channel_id,views,likes,comments,shares\n" +
		"2026-08-01,UC123,100,5,2,1\n" +
		"2026-08-02,UC123,250,12,4,0\n")

	rows, err := ParseReportCSV(data)
	if err != nil {
		t.Fatalf("ParseReportCSV error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Date != "2026-08-01" || rows[0].ChannelID != "UC123" {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Views != 250 || rows[1].Likes != 12 {
		t.Errorf("row 1 numbers = views %v likes %v", rows[1].Views, rows[1].Likes)
	}
	if rows[0].Engagements() != 8 {
		t.Errorf("row 0 engagements = %v, want 8", rows[0].Engagements())
	}
}

func TestParseReportCSV_HeaderVariants(t *testing.T) {
	// "Age Group", "Country Code" and "Estimated Minutes Watched" should map
	// despite casing, spaces and the variant spelling.
	data := []byte("Day,Age Group,Gender,Country Code,Views,Estimated Minutes Watched,Viewer Percentage\n" +
		"2026-08-01,AGE_18_24,female,US,40,120.5,33.3\n")

	rows, err := ParseReportCSV(data)
	if err != nil {
		t.Fatalf("ParseReportCSV error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	r := rows[0]
	if r.Date != "2026-08-01" {
		t.Errorf("Date = %q", r.Date)
	}
	if r.AgeGroup != "AGE_18_24" || r.Gender != "female" || r.Country != "US" {
		t.Errorf("dimensions = %q %q %q", r.AgeGroup, r.Gender, r.Country)
	}
	if r.WatchMinutes != 120.5 {
		t.Errorf("WatchMinutes = %v, want 120.5", r.WatchMinutes)
	}
	if r.ViewerPercentage != 33.3 {
		t.Errorf("ViewerPercentage = %v, want 33.3", r.ViewerPercentage)
	}
}

func TestParseReportCSV_QuotedFields(t *testing.T) {
	// Quoted field with an embedded comma and an escaped quote.
	data := []byte("date,video_id,views\n" +
		"2026-08-01,\"vid,\"\"1\"\"\",10\n")

	rows, err := ParseReportCSV(data)
	if err != nil {
		t.Fatalf("ParseReportCSV error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].VideoID != `vid,"1"` {
		t.Errorf("VideoID = %q, want %q", rows[0].VideoID, `vid,"1"`)
	}
}

func TestParseReportCSV_CRLF(t *testing.T) {
	data := []byte("date,views\r\n2026-08-01,7\r\n2026-08-02,9\r\n")

	rows, err := ParseReportCSV(data)
	if err != nil {
		t.Fatalf("ParseReportCSV error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1].Views != 9 {
		t.Errorf("row 1 views = %v, want 9", rows[1].Views)
	}
}

func TestParseReportCSV_HeaderOnlyAndEmpty(t *testing.T) {
	rows, err := ParseReportCSV([]byte("date,views\n"))
	if err != nil {
		t.Fatalf("header-only error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("header-only rows = %d, want 0", len(rows))
	}

	rows, err = ParseReportCSV(nil)
	if err != nil {
		t.Fatalf("empty error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("empty rows = %d, want 0", len(rows))
	}
}

func TestParseReportCSV_SubscriberColumns(t *testing.T) {
	withSubs := []byte("date,subscribers_gained,subscribers_lost\n2026-08-01,5,2\n")
	rows, err := ParseReportCSV(withSubs)
	if err != nil {
		t.Fatalf("ParseReportCSV error: %v", err)
	}
	if !rows[0].HasSubscriberData {
		t.Error("HasSubscriberData should be true when columns present")
	}
	if rows[0].SubscribersGained != 5 || rows[0].SubscribersLost != 2 {
		t.Errorf("subscriber values = %v / %v", rows[0].SubscribersGained, rows[0].SubscribersLost)
	}

	without := []byte("date,views\n2026-08-01,10\n")
	rows, err = ParseReportCSV(without)
	if err != nil {
		t.Fatalf("ParseReportCSV error: %v", err)
	}
	if rows[0].HasSubscriberData {
		t.Error("HasSubscriberData should be false when columns absent")
	}
}

func TestParseReportCSV_RaggedRow(t *testing.T) {
	// Short rows are mapped by index; missing trailing cells read as empty.
	data := []byte("date,views,likes\n2026-08-01,10\n")

	rows, err := ParseReportCSV(data)
	if err != nil {
		t.Fatalf("ParseReportCSV error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0].Views != 10 || rows[0].Likes != 0 {
		t.Errorf("row = views %v likes %v", rows[0].Views, rows[0].Likes)
	}
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Age Group", "agegroup"},
		{"age_group", "agegroup"},
		{"  Views  ", "views"},
		{"country-code", "countrycode"},
	}
	for _, tt := range tests {
		if got := normalizeHeader(tt.in); got != tt.want {
			t.Errorf("normalizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
