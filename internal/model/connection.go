package model

import "time"

// Connection represents one linked YouTube account for a user.
// The access token is mutated in place by the token manager as it refreshes;
// everything else is written once on the OAuth callback.
type Connection struct {
	ID           int64     `json:"-"`
	UserID       string    `json:"-"`
	ChannelID    string    `json:"channelId"`
	ChannelName  string    `json:"channelName"`
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    int64     `json:"-"` // epoch millis, 0 = unknown
	ConnectedAt  time.Time `json:"connectedAt"`
}

// TokenExpiresWithin reports whether the access token is missing or expires
// within the given margin of now.
func (c *Connection) TokenExpiresWithin(now time.Time, margin time.Duration) bool {
	if c.AccessToken == "" {
		return true
	}
	if c.ExpiresAt == 0 {
		return false
	}
	return c.ExpiresAt <= now.Add(margin).UnixMilli()
}

// ConnectionsResponse is the API response for GET /api/youtube/connections.
type ConnectionsResponse struct {
	Count       int              `json:"count"`
	Connections []ConnectionInfo `json:"connections"`
}

// ConnectionInfo is the public projection of a Connection.
type ConnectionInfo struct {
	ChannelID   string `json:"channelId"`
	ChannelName string `json:"channelName"`
}
