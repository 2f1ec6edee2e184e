package hash

import (
	"testing"
)

func TestSHA256Hex(t *testing.T) {
	// Known SHA256 of "hello"
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	got := SHA256Hex("hello")
	if got != want {
		t.Errorf("SHA256Hex(\"hello\") = %s, want %s", got, want)
	}
}

func TestShortHash(t *testing.T) {
	full := SHA256Hex("192.168.1.1")

	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"12 chars", "192.168.1.1", 12, full[:12]},
		{"4 chars", "192.168.1.1", 4, full[:4]},
		{"n longer than hash", "192.168.1.1", 100, full},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShortHash(tt.input, tt.n)
			if got != tt.want {
				t.Errorf("ShortHash(%q, %d) = %s, want %s", tt.input, tt.n, got, tt.want)
			}
		})
	}
}

func TestSignState_RoundTrip(t *testing.T) {
	state := SignState("user-123", "secret")

	userID, ok := VerifyState(state, "secret")
	if !ok {
		t.Fatal("valid state should verify")
	}
	if userID != "user-123" {
		t.Errorf("VerifyState userID = %s, want user-123", userID)
	}
}

func TestVerifyState_Rejects(t *testing.T) {
	state := SignState("user-123", "secret")

	tests := []struct {
		name  string
		state string
	}{
		{"wrong secret", state},
		{"tampered payload", "dXNlci00NTY." + state[len(state)-64:]},
		{"no separator", "nodothere"},
		{"bad base64", "!!!." + state[len(state)-64:]},
		{"truncated signature", state[:len(state)-10]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := "secret"
			if tt.name == "wrong secret" {
				secret = "other-secret"
			}
			if _, ok := VerifyState(tt.state, secret); ok {
				t.Error("state should not verify")
			}
		})
	}
}

func TestSignState_DifferentUsersDiffer(t *testing.T) {
	a := SignState("user-a", "secret")
	b := SignState("user-b", "secret")
	if a == b {
		t.Error("different users should produce different states")
	}
}
