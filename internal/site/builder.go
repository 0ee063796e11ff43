// Package site renders the pages of a personal site: shared header and footer,
// active navigation, and the publications lists.
package site

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/matsen/pubsite/internal/config"
	"github.com/matsen/pubsite/internal/page"
	"github.com/matsen/pubsite/internal/pipeline"
	"github.com/matsen/pubsite/internal/source"
	"go.uber.org/zap"
)

// Hook runs page-specific work after the shared fragments are in place.
type Hook func(ctx context.Context, doc *page.Document, report *PageReport)

// PageReport describes one rendered page.
type PageReport struct {
	Page         string           `json:"page"`
	Output       string           `json:"output,omitempty"`
	Publications *pipeline.Counts `json:"publications,omitempty"`
	Error        string           `json:"error,omitempty"` // bibliography failure, shown inline on the page
}

// Report summarizes a build.
type Report struct {
	OutputDir string       `json:"output_dir"`
	Pages     []PageReport `json:"pages"`
	Copied    int          `json:"copied"`
}

// Builder renders site pages.
type Builder struct {
	Root   string // site root (directory holding pubsite.yml)
	Config *config.Config
	Logger *zap.Logger

	Header       source.Source
	Footer       source.Source
	Bibliography source.Source
}

// NewBuilder creates a builder whose sources come from the config.
func NewBuilder(root string, cfg *config.Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	siteRoot := cfg.SiteRoot(root)
	opts := []source.HTTPOption{source.WithRate(cfg.FetchRate)}
	return &Builder{
		Root:         root,
		Config:       cfg,
		Logger:       logger,
		Header:       source.New(cfg.Header, siteRoot, opts...),
		Footer:       source.New(cfg.Footer, siteRoot, opts...),
		Bibliography: source.New(cfg.Bibliography, siteRoot, opts...),
	}
}

// Routes maps page names (slash-separated, relative to the site root) to hooks.
func (b *Builder) Routes() map[string]Hook {
	return map[string]Hook{
		b.Config.PublicationsPage: b.publications,
	}
}

// publications runs the bibliography pipeline into the page.
func (b *Builder) publications(ctx context.Context, doc *page.Document, report *PageReport) {
	o := pipeline.New(b.Bibliography, b.Logger)
	o.Regions = b.Config.Regions

	result := o.Run(ctx, doc)
	if !result.OK() {
		report.Error = result.Err().Error()
		return
	}
	counts := pipeline.Partition(result.Entries()).Counts()
	report.Publications = &counts
}

// fragments holds the shared header and footer markup; empty when unavailable.
type fragments struct {
	header string
	footer string
}

// loadFragments fetches the header and footer. Failures are logged and the
// fragment is left out.
func (b *Builder) loadFragments(ctx context.Context) fragments {
	var f fragments
	if b.Header != nil {
		text, err := b.Header.Fetch(ctx)
		if err != nil {
			b.Logger.Warn("header load error", zap.Error(err))
		}
		f.header = text
	}
	if b.Footer != nil {
		text, err := b.Footer.Fetch(ctx)
		if err != nil {
			b.Logger.Warn("footer load error", zap.Error(err))
		}
		f.footer = text
	}
	return f
}

// RenderPage renders one page read from r. name is the page path relative to
// the site root, e.g. "publications.html".
func (b *Builder) RenderPage(ctx context.Context, name string, r io.Reader) ([]byte, PageReport, error) {
	return b.renderPage(ctx, name, r, b.loadFragments(ctx))
}

func (b *Builder) renderPage(ctx context.Context, name string, r io.Reader, frags fragments) ([]byte, PageReport, error) {
	report := PageReport{Page: name}

	doc, err := page.Parse(r)
	if err != nil {
		return nil, report, fmt.Errorf("parsing %s: %w", name, err)
	}

	if frags.header != "" {
		if err := doc.InsertFragment(page.AfterBegin, frags.header); err != nil {
			b.Logger.Warn("header insert error", zap.String("page", name), zap.Error(err))
		} else {
			doc.HighlightNav(path.Base(name))
		}
	}
	if frags.footer != "" {
		if err := doc.InsertFragment(page.BeforeEnd, frags.footer); err != nil {
			b.Logger.Warn("footer insert error", zap.String("page", name), zap.Error(err))
		}
	}

	if hook, ok := b.Routes()[name]; ok {
		hook(ctx, doc, &report)
	}

	var buf bytes.Buffer
	if err := doc.Render(&buf); err != nil {
		return nil, report, fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.Bytes(), report, nil
}

// IsPage reports whether name (slash-separated, relative to the site root)
// is rendered rather than copied.
func (b *Builder) IsPage(name string) bool {
	return matchAny(b.Config.Pages, name) && !b.IsExcluded(name)
}

// IsExcluded reports whether name is left out of the output.
func (b *Builder) IsExcluded(name string) bool {
	return matchAny(b.Config.Exclude, name)
}

// Build renders every page into the output directory and copies the other files.
func (b *Builder) Build(ctx context.Context) (*Report, error) {
	siteRoot := b.Config.SiteRoot(b.Root)
	outDir := b.Config.OutputPath(b.Root)

	absOut, err := filepath.Abs(outDir)
	if err != nil {
		return nil, fmt.Errorf("resolving output dir: %w", err)
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output dir: %w", err)
	}

	frags := b.loadFragments(ctx)
	report := &Report{OutputDir: outDir}

	err = filepath.WalkDir(siteRoot, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if absP, _ := filepath.Abs(p); absP == absOut {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(siteRoot, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if name == config.ConfigFile || b.IsExcluded(name) {
			return nil
		}

		dest := filepath.Join(outDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
		}

		if !b.IsPage(name) {
			if err := copyFile(p, dest); err != nil {
				return err
			}
			report.Copied++
			return nil
		}

		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("opening %s: %w", name, err)
		}
		out, pageReport, err := b.renderPage(ctx, name, f, frags)
		f.Close()
		if err != nil {
			return err
		}
		if err := os.WriteFile(dest, out, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", dest, err)
		}

		pageReport.Output = dest
		report.Pages = append(report.Pages, pageReport)
		b.Logger.Debug("rendered page", zap.String("page", name), zap.String("output", dest))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("building site: %w", err)
	}

	return report, nil
}

// matchAny reports whether name matches any of the doublestar patterns.
func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
		// Patterns like "includes" also exclude everything beneath them.
		if strings.HasPrefix(name, strings.TrimSuffix(pattern, "/")+"/") {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
