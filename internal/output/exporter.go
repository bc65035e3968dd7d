// Package output writes captured resources to a directory tree that can
// be browsed without the site.
package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/offsync/internal/converter"
	"github.com/quantmind-br/offsync/internal/domain"
	"github.com/quantmind-br/offsync/internal/utils"
)

// Format selects how resources are exported
type Format string

const (
	// FormatMirror writes every resource byte-exact, HTML links optionally
	// rewritten to the exported copies
	FormatMirror Format = "mirror"
	// FormatMarkdown renders HTML pages as Markdown and skips everything else
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatMirror:
		return FormatMirror, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown export format %q", name)
}

// ResourceSource iterates captured resources
type ResourceSource interface {
	Each(ctx context.Context, fn func(*domain.Resource) error) error
}

// ExporterOptions contains options for the exporter
type ExporterOptions struct {
	BaseDir         string
	Format          Format
	RewriteLinks    bool
	ContentSelector string
	SiteURL         string
	Force           bool
	DryRun          bool
	WriteIndex      bool
	// OnProgress is called with (done, total) after each planned resource
	OnProgress func(done, total int)
	Logger     *utils.Logger
}

// Result summarizes an export
type Result struct {
	Written int
	Skipped int
	Files   []string
}

// Exporter writes captured resources to disk
type Exporter struct {
	baseDir      string
	format       Format
	rewriteLinks bool
	siteURL      string
	force        bool
	dryRun       bool
	writeIndex   bool
	onProgress   func(done, total int)
	markdown     *converter.MarkdownConverter
	logger       *utils.Logger
}

// NewExporter creates a new exporter
func NewExporter(opts ExporterOptions) *Exporter {
	if opts.BaseDir == "" {
		opts.BaseDir = "./offline"
	}
	if opts.Format == "" {
		opts.Format = FormatMirror
	}
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Exporter{
		baseDir:      opts.BaseDir,
		format:       opts.Format,
		rewriteLinks: opts.RewriteLinks,
		siteURL:      opts.SiteURL,
		force:        opts.Force,
		dryRun:       opts.DryRun,
		writeIndex:   opts.WriteIndex,
		onProgress:   opts.OnProgress,
		markdown:     converter.NewMarkdownConverter(converter.MarkdownOptions{ContentSelector: opts.ContentSelector}),
		logger:       logger.WithComponent("export"),
	}
}

// BaseDir returns the export directory
func (e *Exporter) BaseDir() string {
	return e.baseDir
}

// Export writes every resource of src. The first pass plans a path per
// URL so pages can link to resources exported after them.
func (e *Exporter) Export(ctx context.Context, src ResourceSource) (*Result, error) {
	plan := make(map[string]string)
	err := src.Each(ctx, func(res *domain.Resource) error {
		if rel, ok := e.relPath(res); ok {
			plan[linkKey(res.URL)] = rel
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("plan export: %w", err)
	}

	result := &Result{}
	done := 0
	report := func() {
		done++
		if e.onProgress != nil {
			e.onProgress(done, len(plan))
		}
	}
	index := NewIndex(IndexOptions{BaseDir: e.baseDir, SiteURL: e.siteURL, Format: e.format})

	err = src.Each(ctx, func(res *domain.Resource) error {
		rel, ok := plan[linkKey(res.URL)]
		if !ok {
			result.Skipped++
			return nil
		}

		defer report()

		path := filepath.Join(e.baseDir, rel)
		if !e.force {
			if _, err := os.Stat(path); err == nil {
				result.Skipped++
				return nil
			}
		}

		data, err := e.render(res, rel, plan)
		if err != nil {
			return fmt.Errorf("export %s: %w", res.URL, err)
		}

		if !e.dryRun {
			if err := utils.EnsureParentDir(path); err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return err
			}
		}

		result.Written++
		result.Files = append(result.Files, path)
		index.Add(IndexEntry{
			URL:         res.URL,
			Path:        rel,
			ContentType: res.ContentType,
			Size:        len(data),
			CapturedAt:  res.CapturedAt,
		})
		e.logger.Debug().Str("url", res.URL).Str("path", path).Msg("Exported")
		return nil
	})
	if err != nil {
		return result, err
	}

	if e.writeIndex && !e.dryRun {
		if err := index.Flush(); err != nil {
			return result, fmt.Errorf("write index: %w", err)
		}
	}

	e.logger.Info().
		Int("written", result.Written).
		Int("skipped", result.Skipped).
		Str("dir", e.baseDir).
		Msg("Export complete")
	return result, nil
}

// relPath returns the export path of res relative to the base directory
func (e *Exporter) relPath(res *domain.Resource) (string, bool) {
	rel := utils.URLToPath(res.URL)
	if e.format != FormatMarkdown {
		return rel, true
	}
	if !converter.IsHTMLContent(res.ContentType) {
		return "", false
	}
	ext := filepath.Ext(rel)
	return strings.TrimSuffix(rel, ext) + ".md", true
}

func (e *Exporter) render(res *domain.Resource, rel string, plan map[string]string) ([]byte, error) {
	html := converter.IsHTMLContent(res.ContentType)
	if !html {
		return res.Body, nil
	}

	body := res.Body
	if e.format == FormatMarkdown || e.rewriteLinks {
		utf8, err := converter.ToUTF8(res.Body, res.ContentType)
		if err != nil {
			return nil, err
		}
		body = utf8
	}

	if e.rewriteLinks {
		rewritten, _, err := converter.RewriteLinks(body, res.URL, localResolver(rel, plan))
		if err != nil {
			return nil, err
		}
		body = rewritten
	}

	if e.format != FormatMarkdown {
		return body, nil
	}

	page, err := e.markdown.Convert(body, res.URL)
	if err != nil {
		return nil, err
	}
	page.CapturedAt = res.CapturedAt
	doc, err := page.Document()
	if err != nil {
		return nil, err
	}
	return []byte(doc), nil
}

// localResolver maps absolute URLs to paths relative to the page at rel
func localResolver(rel string, plan map[string]string) converter.Resolver {
	dir := filepath.Dir(rel)
	return func(abs string) (string, bool) {
		target, ok := plan[linkKey(abs)]
		if !ok {
			return "", false
		}
		local, err := filepath.Rel(dir, target)
		if err != nil {
			return "", false
		}
		return filepath.ToSlash(local), true
	}
}

func linkKey(rawURL string) string {
	if normalized, err := utils.NormalizeURL(rawURL); err == nil {
		return normalized
	}
	return rawURL
}
