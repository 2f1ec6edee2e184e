package youtube

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// AnalyticsQuery describes one Analytics API request.
type AnalyticsQuery struct {
	StartDate  string // YYYY-MM-DD
	EndDate    string // YYYY-MM-DD
	Metrics    string // comma-separated
	Dimensions string // comma-separated, may be empty
	Sort       string
	MaxResults int
}

// AnalyticsResult is the column-oriented response of an Analytics API query.
type AnalyticsResult struct {
	ColumnHeaders []AnalyticsColumn `json:"columnHeaders"`
	Rows          [][]json.Number   `json:"-"`
}

// AnalyticsColumn describes one result column.
type AnalyticsColumn struct {
	Name       string `json:"name"`
	ColumnType string `json:"columnType"`
	DataType   string `json:"dataType"`
}

// Column returns the index of the named column, or -1.
func (r *AnalyticsResult) Column(name string) int {
	for i, h := range r.ColumnHeaders {
		if h.Name == name {
			return i
		}
	}
	return -1
}

// String returns the raw string value of the named column in the given row.
func (r *AnalyticsResult) String(row []json.Number, name string) string {
	i := r.Column(name)
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i].String()
}

// Float returns the numeric value of the named column in the given row,
// zero if absent or non-numeric.
func (r *AnalyticsResult) Float(row []json.Number, name string) float64 {
	i := r.Column(name)
	if i < 0 || i >= len(row) {
		return 0
	}
	f, _ := row[i].Float64()
	return f
}

// Has reports whether the result contains the named column.
func (r *AnalyticsResult) Has(name string) bool {
	return r.Column(name) >= 0
}

// analyticsResponse is the wire shape; rows arrive as mixed strings and
// numbers, normalised into json.Number via a custom unmarshal.
type analyticsResponse struct {
	ColumnHeaders []AnalyticsColumn `json:"columnHeaders"`
	Rows          [][]any           `json:"rows"`
}

// Query runs one reports.query call against the Analytics API.
func (c *Client) Query(ctx context.Context, token string, q AnalyticsQuery) (*AnalyticsResult, error) {
	params := url.Values{}
	params.Set("ids", "channel==MINE")
	params.Set("startDate", q.StartDate)
	params.Set("endDate", q.EndDate)
	params.Set("metrics", q.Metrics)
	if q.Dimensions != "" {
		params.Set("dimensions", q.Dimensions)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}
	if q.MaxResults > 0 {
		params.Set("maxResults", strconv.Itoa(q.MaxResults))
	}

	var resp analyticsResponse
	if err := c.getJSON(ctx, token, c.analyticsBase+"/reports", params, &resp); err != nil {
		return nil, err
	}

	result := &AnalyticsResult{ColumnHeaders: resp.ColumnHeaders}
	for _, row := range resp.Rows {
		cells := make([]json.Number, len(row))
		for i, cell := range row {
			cells[i] = toNumber(cell)
		}
		result.Rows = append(result.Rows, cells)
	}
	return result, nil
}

// toNumber converts a decoded JSON cell (string dimension or float metric)
// into a json.Number carrying its textual form.
func toNumber(cell any) json.Number {
	switch v := cell.(type) {
	case string:
		return json.Number(v)
	case float64:
		b, _ := json.Marshal(v)
		return json.Number(b)
	case json.Number:
		return v
	default:
		return ""
	}
}
