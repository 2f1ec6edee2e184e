package service

import (
	"context"
	"log"
	"time"

	"golang.org/x/oauth2"

	"github.com/creatorlens/creatorlens-go/internal/model"
)

// expirySkew is how close to expiry an access token may get before a refresh
// exchange is attempted.
const expirySkew = 60 * time.Second

// TokenStore persists refreshed credentials back to wherever the connection
// lives, decoupling the token manager from the storage backing it.
type TokenStore interface {
	UpdateTokens(ctx context.Context, connectionID int64, accessToken string, expiresAt int64) error
}

// TokenService keeps each connection's access token valid, refreshing and
// persisting it before external calls.
type TokenService struct {
	conf  *oauth2.Config
	store TokenStore
	now   func() time.Time
}

func NewTokenService(clientID, clientSecret, redirectURL, tokenURL string, store TokenStore) *TokenService {
	return &TokenService{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/youtube.readonly",
				"https://www.googleapis.com/auth/yt-analytics.readonly",
				"https://www.googleapis.com/auth/yt-analytics-monetary.readonly",
			},
			Endpoint: oauth2.Endpoint{
				AuthURL:  "https://accounts.google.com/o/oauth2/auth",
				TokenURL: tokenURL,
			},
		},
		store: store,
		now:   time.Now,
	}
}

// AuthCodeURL returns the consent-screen URL for linking a new account.
func (s *TokenService) AuthCodeURL(state string) string {
	return s.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for tokens (OAuth callback path).
func (s *TokenService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return s.conf.Exchange(ctx, code)
}

// EnsureValidToken returns a usable access token for the connection,
// refreshing first when the current one is missing or expires within 60
// seconds. A successful refresh is written back through the TokenStore and
// mutates the connection in place. If the refresh fails, the existing
// (possibly expired) token is returned instead: the downstream API call will
// then fail on its own and be handled as a per-channel partial failure.
func (s *TokenService) EnsureValidToken(ctx context.Context, conn *model.Connection) string {
	if !conn.TokenExpiresWithin(s.now(), expirySkew) {
		return conn.AccessToken
	}

	if conn.RefreshToken == "" {
		log.Printf("token: connection %s has no refresh token, using stored access token", conn.ChannelID)
		return conn.AccessToken
	}

	src := s.conf.TokenSource(ctx, &oauth2.Token{RefreshToken: conn.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		log.Printf("token: refresh failed for connection %s, falling back to stored token: %v", conn.ChannelID, err)
		return conn.AccessToken
	}

	conn.AccessToken = tok.AccessToken
	if !tok.Expiry.IsZero() {
		conn.ExpiresAt = tok.Expiry.UnixMilli()
	}
	if tok.RefreshToken != "" {
		conn.RefreshToken = tok.RefreshToken
	}

	if s.store != nil {
		if err := s.store.UpdateTokens(ctx, conn.ID, conn.AccessToken, conn.ExpiresAt); err != nil {
			log.Printf("token: persist failed for connection %s: %v", conn.ChannelID, err)
		}
	}
	return conn.AccessToken
}
