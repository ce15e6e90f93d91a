package tools

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/baalimago/qwery/internal/models"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

type WebsiteTextTool models.Specification

var WebsiteText = WebsiteTextTool{
	Name:        "website_text",
	Description: "Get the text content of a website by stripping all non-text tags and trimming whitespace.",
	Inputs: &models.InputSchema{
		Type:     "object",
		Required: []string{"url"},
		Properties: map[string]models.ParameterObject{
			"url": {
				Type:        "string",
				Description: "The URL of the website to retrieve the text content from.",
			},
		},
	},
}

type httpDoer interface {
	Do(*http.Request) (*http.Response, error)
}

var websiteTextHTTPClient httpDoer = &http.Client{Timeout: 10 * time.Second}

// maxWebsiteBytes caps how much of the response is tokenized
const maxWebsiteBytes = 5 << 20

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"head": true, "iframe": true, "svg": true, "template": true,
}

func (w WebsiteTextTool) Call(input models.Input) (string, error) {
	urlStr, ok := input["url"].(string)
	if !ok {
		return "", fmt.Errorf("url must be a string")
	}
	u, err := url.ParseRequestURI(urlStr)
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}

	req, err := http.NewRequest("GET", u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := websiteTextHTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("bad status: %v", resp.Status)
	}

	ctype := resp.Header.Get("Content-Type")
	body := io.LimitReader(resp.Body, maxWebsiteBytes)
	decoded, err := charset.NewReader(body, ctype)
	if err != nil {
		decoded = body
	}

	tokenizer := html.NewTokenizer(decoded)
	skipDepth := 0
	var text strings.Builder
	for {
		tt := tokenizer.Next()
		if tt == html.ErrorToken {
			if tokenizer.Err() == io.EOF {
				break
			}
			return "", fmt.Errorf("tokenizer error: %w", tokenizer.Err())
		}
		switch tt {
		case html.StartTagToken:
			if skipTags[strings.ToLower(tokenizer.Token().Data)] {
				skipDepth++
			}
		case html.EndTagToken:
			if skipTags[strings.ToLower(tokenizer.Token().Data)] && skipDepth > 0 {
				skipDepth--
			}
		case html.TextToken:
			if skipDepth > 0 {
				continue
			}
			fields := bytes.Fields(tokenizer.Text())
			if len(fields) == 0 {
				continue
			}
			text.Write(bytes.Join(fields, []byte(" ")))
			text.WriteByte('\n')
		}
	}
	return strings.TrimSpace(text.String()), nil
}

func (w WebsiteTextTool) Specification() models.Specification {
	return models.Specification(WebsiteText)
}
