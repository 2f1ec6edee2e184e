package middleware

import (
	"strings"
	"testing"
)

func TestValidateChannelID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid", "UCuAXFkgsw1L7xaCfnd5JJOw", "UCuAXFkgsw1L7xaCfnd5JJOw", false},
		{"valid with dash", "abc-def_123", "abc-def_123", false},
		{"trims whitespace", "  UC123  ", "UC123", false},
		{"empty", "", "", true},
		{"too long 33", "123456789012345678901234567890123", "", true},
		{"exactly 32", "12345678901234567890123456789012", "12345678901234567890123456789012", false},
		{"invalid chars", "UC test!", "", true},
		{"sql injection", "a'; DROP--", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateChannelID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateJobID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"valid uuid", "550e8400-e29b-41d4-a716-446655440000", "550e8400-e29b-41d4-a716-446655440000", false},
		{"uppercase normalized", "550E8400-E29B-41D4-A716-446655440000", "550e8400-e29b-41d4-a716-446655440000", false},
		{"trims whitespace", " 550e8400-e29b-41d4-a716-446655440000 ", "550e8400-e29b-41d4-a716-446655440000", false},
		{"empty", "", "", true},
		{"not a uuid", "not-a-job-id", "", true},
		{"missing segment", "550e8400-e29b-41d4-a716", "", true},
		{"non-hex", "550e8400-e29b-41d4-a716-44665544zzzz", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, errMsg := ValidateJobID(tt.input)
			if tt.wantErr && errMsg == "" {
				t.Errorf("expected error, got none")
			}
			if !tt.wantErr && errMsg != "" {
				t.Errorf("unexpected error: %s", errMsg)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateChannelNames(t *testing.T) {
	t.Run("trims and drops empties", func(t *testing.T) {
		got, errMsg := ValidateChannelNames([]string{" My Channel ", "", "  ", "Other"})
		if errMsg != "" {
			t.Fatalf("unexpected error: %s", errMsg)
		}
		if len(got) != 2 || got[0] != "My Channel" || got[1] != "Other" {
			t.Errorf("got %v", got)
		}
	})

	t.Run("empty list is valid", func(t *testing.T) {
		got, errMsg := ValidateChannelNames(nil)
		if errMsg != "" {
			t.Fatalf("unexpected error: %s", errMsg)
		}
		if len(got) != 0 {
			t.Errorf("got %v, want empty", got)
		}
	})

	t.Run("too many names", func(t *testing.T) {
		names := make([]string, MaxChannelNames+1)
		for i := range names {
			names[i] = "ch"
		}
		if _, errMsg := ValidateChannelNames(names); errMsg == "" {
			t.Error("expected error for oversized list")
		}
	})

	t.Run("name too long", func(t *testing.T) {
		long := strings.Repeat("x", MaxChannelNameLen+1)
		if _, errMsg := ValidateChannelNames([]string{long}); errMsg == "" {
			t.Error("expected error for oversized name")
		}
	})
}
