package converter

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"gopkg.in/yaml.v3"
)

// Page is a captured HTML resource rendered as Markdown
type Page struct {
	URL        string
	Title      string
	Markdown   string
	CapturedAt time.Time
}

// MarkdownOptions contains options for Markdown rendering
type MarkdownOptions struct {
	// ContentSelector picks the main content; readability is used when
	// empty or when nothing matches
	ContentSelector string
}

// MarkdownConverter renders HTML pages as Markdown
type MarkdownConverter struct {
	selector string
}

// NewMarkdownConverter creates a new Markdown converter
func NewMarkdownConverter(opts MarkdownOptions) *MarkdownConverter {
	return &MarkdownConverter{selector: strings.TrimSpace(opts.ContentSelector)}
}

// Convert extracts the main content of a UTF-8 HTML page and renders it
func (c *MarkdownConverter) Convert(html []byte, pageURL string) (*Page, error) {
	content, title, err := c.extract(html, pageURL)
	if err != nil {
		return nil, err
	}

	markdown, err := md.ConvertString(content)
	if err != nil {
		return nil, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return &Page{
		URL:      pageURL,
		Title:    title,
		Markdown: cleanMarkdown(markdown),
	}, nil
}

func (c *MarkdownConverter) extract(html []byte, pageURL string) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", "", err
	}
	title := extractTitle(doc)

	if c.selector != "" {
		if sel := doc.Find(c.selector).First(); sel.Length() > 0 {
			content, err := sel.Html()
			if err != nil {
				return "", "", err
			}
			return content, title, nil
		}
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		parsed = &url.URL{Scheme: "http", Host: "localhost"}
	}
	article, err := readability.FromReader(bytes.NewReader(html), parsed)
	if err == nil && strings.TrimSpace(article.Content) != "" {
		if title == "" {
			title = article.Title
		}
		return article.Content, title, nil
	}

	body, err := doc.Find("body").Html()
	if err != nil || strings.TrimSpace(body) == "" {
		return string(html), title, nil
	}
	return body, title, nil
}

func extractTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return ""
}

func cleanMarkdown(markdown string) string {
	for strings.Contains(markdown, "\n\n\n\n") {
		markdown = strings.ReplaceAll(markdown, "\n\n\n\n", "\n\n\n")
	}
	return strings.TrimSpace(markdown)
}

type frontmatter struct {
	Title      string `yaml:"title,omitempty"`
	URL        string `yaml:"url"`
	CapturedAt string `yaml:"captured_at,omitempty"`
}

// Document returns the page with YAML frontmatter
func (p *Page) Document() (string, error) {
	fm := frontmatter{Title: p.Title, URL: p.URL}
	if !p.CapturedAt.IsZero() {
		fm.CapturedAt = p.CapturedAt.UTC().Format(time.RFC3339)
	}

	data, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("---\n%s---\n\n%s\n", string(data), p.Markdown), nil
}
