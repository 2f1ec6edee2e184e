package youtube

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ChannelStats is the Data API snapshot of the authenticated user's channel.
type ChannelStats struct {
	ChannelID   string
	Title       string
	Views       int64
	Subscribers int64
	VideoCount  int64
}

// Video is one video returned by the Data API with its current totals.
type Video struct {
	ID          string
	Title       string
	PublishedAt time.Time
	Views       int64
	Likes       int64
	Comments    int64
}

// Engagements sums the interaction counters of a video.
func (v *Video) Engagements() int64 {
	return v.Likes + v.Comments
}

type channelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount       string `json:"viewCount"`
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// MyChannel fetches snippet+statistics for the token's own channel.
func (c *Client) MyChannel(ctx context.Context, token string) (*ChannelStats, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("mine", "true")

	var resp channelListResponse
	if err := c.getJSON(ctx, token, c.dataBase+"/channels", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channels.list: no channel for token")
	}

	item := resp.Items[0]
	return &ChannelStats{
		ChannelID:   item.ID,
		Title:       item.Snippet.Title,
		Views:       parseCount(item.Statistics.ViewCount),
		Subscribers: parseCount(item.Statistics.SubscriberCount),
		VideoCount:  parseCount(item.Statistics.VideoCount),
	}, nil
}

type searchListResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type videoListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title       string    `json:"title"`
			PublishedAt time.Time `json:"publishedAt"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// TopVideos returns up to maxResults of the user's videos ranked by view count.
func (c *Client) TopVideos(ctx context.Context, token string, maxResults int) ([]Video, error) {
	return c.searchVideos(ctx, token, "viewCount", maxResults)
}

// RecentVideos returns up to maxResults of the user's most recently published videos.
func (c *Client) RecentVideos(ctx context.Context, token string, maxResults int) ([]Video, error) {
	return c.searchVideos(ctx, token, "date", maxResults)
}

func (c *Client) searchVideos(ctx context.Context, token, order string, maxResults int) ([]Video, error) {
	params := url.Values{}
	params.Set("part", "id")
	params.Set("forMine", "true")
	params.Set("type", "video")
	params.Set("order", order)
	params.Set("maxResults", strconv.Itoa(maxResults))

	var search searchListResponse
	if err := c.getJSON(ctx, token, c.dataBase+"/search", params, &search); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}
	return c.VideosByID(ctx, token, ids)
}

// VideosByID fetches snippet+statistics for the given video ids, preserving
// the requested order.
func (c *Client) VideosByID(ctx context.Context, token string, ids []string) ([]Video, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", strings.Join(ids, ","))

	var resp videoListResponse
	if err := c.getJSON(ctx, token, c.dataBase+"/videos", params, &resp); err != nil {
		return nil, err
	}

	byID := make(map[string]Video, len(resp.Items))
	for _, item := range resp.Items {
		byID[item.ID] = Video{
			ID:          item.ID,
			Title:       item.Snippet.Title,
			PublishedAt: item.Snippet.PublishedAt,
			Views:       parseCount(item.Statistics.ViewCount),
			Likes:       parseCount(item.Statistics.LikeCount),
			Comments:    parseCount(item.Statistics.CommentCount),
		}
	}

	videos := make([]Video, 0, len(ids))
	for _, id := range ids {
		if v, ok := byID[id]; ok {
			videos = append(videos, v)
		}
	}
	return videos, nil
}

// parseCount parses the Data API's string-encoded counters. Missing or
// malformed values count as zero.
func parseCount(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}
