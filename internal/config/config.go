// Package config handles site configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/matsen/pubsite/internal/pipeline"
	yamlv3 "gopkg.in/yaml.v3"
)

// Config represents site configuration stored in pubsite.yml at the site root.
type Config struct {
	SiteDir          string           `yaml:"site_dir" koanf:"site_dir"`                   // Directory holding the source pages
	OutputDir        string           `yaml:"output_dir" koanf:"output_dir"`               // Build output directory
	Bibliography     string           `yaml:"bibliography" koanf:"bibliography"`           // Path (relative to site_dir) or URL
	Header           string           `yaml:"header" koanf:"header"`                       // Header fragment, relative to site_dir
	Footer           string           `yaml:"footer" koanf:"footer"`                       // Footer fragment, relative to site_dir
	PublicationsPage string           `yaml:"publications_page" koanf:"publications_page"` // Page that receives the bibliography
	Pages            []string         `yaml:"pages" koanf:"pages"`                         // Globs selecting pages to render
	Exclude          []string         `yaml:"exclude" koanf:"exclude"`                     // Globs excluded from the output
	Port             int              `yaml:"port" koanf:"port"`                           // Port for serve
	FetchRate        float64          `yaml:"fetch_rate" koanf:"fetch_rate"`               // Requests/second for HTTP sources
	Regions          pipeline.Regions `yaml:"regions" koanf:"regions"`                     // Element ids of the display regions

	unknownRegions []string // keys under regions that match no region, set by Load
}

// regionKeys are the names accepted under regions.
var regionKeys = map[string]bool{
	"journal_list":     true,
	"conference_list":  true,
	"total_count":      true,
	"journal_count":    true,
	"conference_count": true,
}

const (
	// ConfigFile is the site config file name.
	ConfigFile = "pubsite.yml"

	// EnvPrefix prefixes environment overrides, e.g. PUBSITE_PORT.
	EnvPrefix = "PUBSITE_"
)

// Default returns the configuration used when pubsite.yml omits a value.
func Default() *Config {
	return &Config{
		SiteDir:          ".",
		OutputDir:        "_site",
		Bibliography:     "references.bib",
		Header:           "includes/header.html",
		Footer:           "includes/footer.html",
		PublicationsPage: "publications.html",
		Pages:            []string{"**/*.html"},
		Exclude:          []string{"includes/**", "_site/**", ".*/**"},
		Port:             8080,
		FetchRate:        5,
		Regions:          pipeline.DefaultRegions(),
	}
}

// ConfigPath returns the path to pubsite.yml from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, ConfigFile)
}

// IsSite checks if the given path contains a pubsite.yml.
func IsSite(root string) bool {
	info, err := os.Stat(ConfigPath(root))
	return err == nil && !info.IsDir()
}

// FindSite walks up from the given path to find a site root.
// Returns the site root path or an error if not found.
func FindSite(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsSite(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a pubsite site (no %s found)", ConfigFile)
		}
		abs = parent
	}
}

// Load reads configuration from the site at the given root, then overlays
// PUBSITE_* environment variables. A missing pubsite.yml yields the defaults.
func Load(root string) (*Config, error) {
	k := koanf.New(".")

	path := ConfigPath(root)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// PUBSITE_OUTPUT_DIR -> output_dir, PUBSITE_REGIONS__JOURNAL_LIST -> regions.journal_list
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.unknownRegions = unknownRegionKeys(k.Keys())

	return cfg, nil
}

// Save writes configuration to the site at the given root.
func (c *Config) Save(root string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.Bibliography == "" {
		return fmt.Errorf("bibliography is required")
	}
	if c.PublicationsPage == "" {
		return fmt.Errorf("publications_page is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.FetchRate < 0 {
		return fmt.Errorf("fetch_rate must not be negative")
	}
	if len(c.unknownRegions) > 0 {
		return fmt.Errorf("unknown region keys: %s", strings.Join(c.unknownRegions, ", "))
	}
	if c.Regions.JournalList == "" || c.Regions.ConferenceList == "" {
		return fmt.Errorf("regions.journal_list and regions.conference_list are required")
	}
	if len(c.Pages) == 0 {
		return fmt.Errorf("at least one pages glob is required")
	}
	return nil
}

// unknownRegionKeys returns the keys under regions. that name no region, sorted.
func unknownRegionKeys(keys []string) []string {
	var unknown []string
	for _, key := range keys {
		name, ok := strings.CutPrefix(key, "regions.")
		if ok && !regionKeys[name] {
			unknown = append(unknown, "regions."+name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// SitePath resolves a site-relative path against root.
func (c *Config) SitePath(root, rel string) string {
	rel = ExpandPath(rel)
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(root, c.SiteDir, rel)
}

// SiteRoot returns the absolute directory holding the source pages.
func (c *Config) SiteRoot(root string) string {
	return c.SitePath(root, ".")
}

// OutputPath returns the absolute build output directory.
func (c *Config) OutputPath(root string) string {
	out := ExpandPath(c.OutputDir)
	if filepath.IsAbs(out) {
		return out
	}
	return filepath.Join(root, out)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
