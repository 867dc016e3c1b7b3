// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// skipSelectors name elements whose text never describes faculty.
const skipSelectors = "script, style, noscript, nav, header, footer, iframe, svg"

// pageFetcher downloads a page and reduces it to visible text.
type pageFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

func (f *pageFetcher) fetchText(ctx context.Context, pageURL string) (string, error) {
	if pageURL == "" {
		return "", fmt.Errorf("no URL to fetch")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: HTTP %d", pageURL, resp.StatusCode)
	}

	ctype := resp.Header.Get("Content-Type")
	if ctype != "" && !strings.Contains(ctype, "html") && !strings.Contains(ctype, "text/plain") {
		return "", fmt.Errorf("fetching %s: unsupported content type %q", pageURL, ctype)
	}

	body := io.LimitReader(resp.Body, f.maxBodyBytes)
	if strings.Contains(ctype, "text/plain") {
		data, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", pageURL, err)
		}
		return collapseWhitespace(string(data)), nil
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	doc.Find(skipSelectors).Remove()

	return collapseWhitespace(doc.Find("body").Text()), nil
}
