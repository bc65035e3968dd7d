package converter

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Resolver maps an absolute URL to a path relative to the page being
// rewritten. It reports false for URLs that were not exported.
type Resolver func(absURL string) (string, bool)

var linkAttrs = []struct {
	selector string
	attr     string
}{
	{"a[href]", "href"},
	{"link[href]", "href"},
	{"img[src]", "src"},
	{"script[src]", "src"},
	{"iframe[src]", "src"},
}

// RewriteLinks points every link of an HTML page that resolve knows about
// to its local copy. Fragments survive the rewrite. It returns the new
// document and the number of rewritten attributes.
func RewriteLinks(html []byte, pageURL string, resolve Resolver) ([]byte, int, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, 0, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, 0, err
	}

	rewritten := 0
	for _, la := range linkAttrs {
		doc.Find(la.selector).Each(func(_ int, sel *goquery.Selection) {
			value, _ := sel.Attr(la.attr)
			if skipLink(value) {
				return
			}

			ref, err := url.Parse(strings.TrimSpace(value))
			if err != nil {
				return
			}
			abs := base.ResolveReference(ref)
			fragment := abs.Fragment
			abs.Fragment = ""

			local, ok := resolve(abs.String())
			if !ok {
				return
			}
			if fragment != "" {
				local += "#" + fragment
			}
			sel.SetAttr(la.attr, local)
			rewritten++
		})
	}

	out, err := doc.Html()
	if err != nil {
		return nil, 0, err
	}
	return []byte(out), rewritten, nil
}

func skipLink(href string) bool {
	href = strings.TrimSpace(href)
	return href == "" ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

// ExtractLinks returns the absolute targets of every anchor in html
func ExtractLinks(html []byte, pageURL string) []string {
	var links []string

	base, err := url.Parse(pageURL)
	if err != nil {
		return links
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return links
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		if skipLink(href) {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref)
		abs.Fragment = ""
		links = append(links, abs.String())
	})

	return links
}
