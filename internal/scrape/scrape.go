package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/openintel/achboard/internal/config"
)

// Metadata is the page summary extracted for an evidence source.
type Metadata struct {
	Title       string
	Description string
}

// ParseMetadata extracts a title and description from an HTML document.
// Open Graph properties win over the document title and the description
// meta tag.
func ParseMetadata(r io.Reader) (Metadata, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return Metadata{}, err
	}

	var meta Metadata
	var docTitle, metaDesc string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && docTitle == "" {
					docTitle = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				var property, name, content string
				for _, attr := range n.Attr {
					switch attr.Key {
					case "property":
						property = attr.Val
					case "name":
						name = attr.Val
					case "content":
						content = attr.Val
					}
				}
				switch property {
				case "og:title":
					if meta.Title == "" {
						meta.Title = strings.TrimSpace(content)
					}
				case "og:description":
					if meta.Description == "" {
						meta.Description = strings.TrimSpace(content)
					}
				}
				if name == "description" && metaDesc == "" {
					metaDesc = strings.TrimSpace(content)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if meta.Title == "" {
		meta.Title = docTitle
	}
	if meta.Description == "" {
		meta.Description = metaDesc
	}
	return meta, nil
}

// Fetcher retrieves source metadata over HTTP.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher constructs a fetcher from scraper configuration.
func NewFetcher(cfg config.ScraperConfig) *Fetcher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: cfg.UserAgent,
	}
}

// Fetch downloads the page at url and extracts its metadata.
func (f *Fetcher) Fetch(ctx context.Context, url string) (Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Metadata{}, err
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return Metadata{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Metadata{}, fmt.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return ParseMetadata(resp.Body)
}
