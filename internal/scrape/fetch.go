package scrape

import (
	"fmt"
	"time"

	"github.com/gocolly/colly"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; matchup-api-scraper/1.0)"

// Fetcher downloads a single page.
type Fetcher struct {
	UserAgent string
	Timeout   time.Duration
}

// Fetch returns the body of url.
func (f Fetcher) Fetch(url string) ([]byte, error) {
	ua := f.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	c := colly.NewCollector(colly.UserAgent(ua))
	if f.Timeout > 0 {
		c.SetRequestTimeout(f.Timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
	})

	var (
		body     []byte
		fetchErr error
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		status := 0
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch %s: status %d: %w", url, status, err)
	})

	if err := c.Visit(url); err != nil {
		if fetchErr != nil {
			return nil, fetchErr
		}
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	c.Wait()

	if fetchErr != nil {
		return nil, fetchErr
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("fetch %s: empty body", url)
	}
	return body, nil
}
