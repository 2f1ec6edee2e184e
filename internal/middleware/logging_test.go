package middleware

import "testing"

func TestSanitizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"job id masked", "/api/youtube/refresh/550e8400-e29b-41d4-a716-446655440000", "/api/youtube/refresh/:jobId"},
		{"refresh without id untouched", "/api/youtube/refresh", "/api/youtube/refresh"},
		{"summary untouched", "/api/youtube/summary", "/api/youtube/summary"},
		{"trailing slash", "/api/youtube/refresh/", "/api/youtube/refresh/"},
		{"root", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizePath(tt.in); got != tt.want {
				t.Errorf("sanitizePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
