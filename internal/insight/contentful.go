// Package insight serves the sleep-education articles shown next to the
// tracker. Articles live in Contentful; when the CMS is unreachable or not
// configured a built-in list is served instead, so the feed is never empty.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sakif/alive-sleep/internal/config"
)

// Article is the flattened shape the front end renders.
type Article struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Slug     string          `json:"slug"`
	Author   string          `json:"author"`
	Date     string          `json:"date"`
	ReadTime string          `json:"readTime"`
	Tags     []string        `json:"tags"`
	Excerpt  string          `json:"excerpt"`
	Image    *string         `json:"image"`
	Body     json.RawMessage `json:"body,omitempty"`
}

const (
	contentType  = "articles"
	articleOrder = "-fields.date"
)

// ContentfulClient reads published articles from the Contentful Delivery API.
type ContentfulClient struct {
	client *resty.Client
	path   string
}

func NewContentfulClient(cfg config.ContentfulConfig) *ContentfulClient {
	c := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.AccessToken).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)

	return &ContentfulClient{
		client: c,
		path:   fmt.Sprintf("/spaces/%s/environments/%s/entries", cfg.SpaceID, cfg.Environment),
	}
}

// entriesResponse is the subset of the Delivery API payload we read. Linked
// assets (cover images) arrive separately under includes.Asset.
type entriesResponse struct {
	Items []struct {
		Sys    struct{ ID string } `json:"sys"`
		Fields struct {
			Title      string          `json:"title"`
			Slug       string          `json:"slug"`
			Author     string          `json:"author"`
			Date       string          `json:"date"`
			ReadTime   string          `json:"readTime"`
			Tags       []string        `json:"tags"`
			Excerpt    string          `json:"excerpt"`
			CoverImage *link           `json:"coverImage"`
			Body       json.RawMessage `json:"bodyContent"`
		} `json:"fields"`
	} `json:"items"`
	Includes struct {
		Asset []struct {
			Sys    struct{ ID string } `json:"sys"`
			Fields struct {
				File struct {
					URL string `json:"url"`
				} `json:"file"`
			} `json:"fields"`
		} `json:"Asset"`
	} `json:"includes"`
}

type link struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
}

// Articles fetches every article, newest first.
func (c *ContentfulClient) Articles(ctx context.Context) ([]Article, error) {
	var body entriesResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"content_type": contentType,
			"order":        articleOrder,
		}).
		SetResult(&body).
		Get(c.path)
	if err != nil {
		return nil, fmt.Errorf("insight: fetching articles: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("insight: fetching articles: contentful returned %s", resp.Status())
	}

	// Asset URLs are protocol-relative ("//images.ctfassets.net/...").
	assets := make(map[string]string, len(body.Includes.Asset))
	for _, a := range body.Includes.Asset {
		if a.Fields.File.URL != "" {
			assets[a.Sys.ID] = "https:" + a.Fields.File.URL
		}
	}

	out := make([]Article, 0, len(body.Items))
	for _, item := range body.Items {
		a := Article{
			ID:       item.Sys.ID,
			Title:    item.Fields.Title,
			Slug:     item.Fields.Slug,
			Author:   item.Fields.Author,
			Date:     item.Fields.Date,
			ReadTime: item.Fields.ReadTime,
			Tags:     item.Fields.Tags,
			Excerpt:  item.Fields.Excerpt,
			Body:     item.Fields.Body,
		}
		if item.Fields.CoverImage != nil {
			if url, ok := assets[item.Fields.CoverImage.Sys.ID]; ok {
				a.Image = &url
			}
		}
		out = append(out, a)
	}
	return out, nil
}
