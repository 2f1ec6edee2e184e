package middleware

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field length limits matching database schema constraints.
const (
	MaxChannelIDLen   = 32  // connections.channel_id VARCHAR(32)
	MaxChannelNameLen = 128 // connections.channel_name VARCHAR(128)
	MaxUserIDLen      = 64
	MaxChannelNames   = 50 // disconnect request list bound
)

var (
	// channelIDRe matches YouTube channel IDs: alphanumeric, dash, underscore.
	channelIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	// jobIDRe matches refresh job ids (UUID v4).
	jobIDRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateChannelID checks that a channel ID is well-formed.
func ValidateChannelID(id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", "channelId is required"
	}
	if len(id) > MaxChannelIDLen {
		return "", "channelId must be at most 32 characters"
	}
	if !channelIDRe.MatchString(id) {
		return "", "channelId contains invalid characters"
	}
	return id, ""
}

// ValidateJobID checks that a refresh job id is a well-formed UUID.
func ValidateJobID(id string) (string, string) {
	id = strings.TrimSpace(strings.ToLower(id))
	if id == "" {
		return "", "jobId is required"
	}
	if !jobIDRe.MatchString(id) {
		return "", "jobId must be a valid job identifier"
	}
	return id, ""
}

// ValidateChannelNames sanitizes the optional disconnect channel-name list:
// trimmed, non-empty, length-capped entries, bounded list size.
func ValidateChannelNames(names []string) ([]string, string) {
	if len(names) > MaxChannelNames {
		return nil, "too many channel names"
	}
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if len(name) > MaxChannelNameLen {
			return nil, "channel name must be at most 128 characters"
		}
		out = append(out, name)
	}
	return out, ""
}
