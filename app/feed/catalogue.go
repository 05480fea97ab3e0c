package feed

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalogue is the fixed set of sources the aggregate job reads, one YAML
// file per source. It is loaded once and not modified afterwards.
type Catalogue struct {
	sources map[string]*Config
}

func LoadCatalogue(dir string) (*Catalogue, error) {
	return loadCatalogue(os.DirFS(dir))
}

func loadCatalogue(fsys fs.FS) (*Catalogue, error) {
	if _, err := fs.Stat(fsys, "."); err != nil {
		return nil, fmt.Errorf("feeds directory unavailable: %w", err)
	}

	files, err := fs.Glob(fsys, "*.yml")
	if err != nil {
		return nil, fmt.Errorf("failed to list feed files: %w", err)
	}

	catalogue := &Catalogue{sources: make(map[string]*Config, len(files))}
	for _, file := range files {
		source, err := decodeSource(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}
		catalogue.sources[source.Name] = source

		slog.Debug("Feed source loaded", "feed", source.Name, "enabled", source.Settings.Enabled, "relevance", source.Relevance != nil)
	}

	return catalogue, nil
}

func decodeSource(fsys fs.FS, file string) (*Config, error) {
	f, err := fsys.Open(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)

	var source Config
	if err := decoder.Decode(&source); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("file is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	source.Name = strings.TrimSuffix(path.Base(file), ".yml")

	if err := source.validate(); err != nil {
		return nil, err
	}

	return &source, nil
}

func (c *Config) validate() error {
	if c.Name == "" {
		return fmt.Errorf("feed name is required")
	}
	if c.URL == "" {
		return fmt.Errorf("feed URL is required")
	}

	u, err := url.ParseRequestURI(c.URL)
	if err != nil {
		return fmt.Errorf("feed URL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("feed URL must be http or https, got %q", u.Scheme)
	}

	if c.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	if c.Relevance != nil {
		if err := c.Relevance.compile(); err != nil {
			return fmt.Errorf("invalid relevance rule: %w", err)
		}
	}

	return nil
}

// Enabled returns the sources the aggregate job should fetch, keyed by name.
func (c *Catalogue) Enabled() map[string]*Config {
	enabled := make(map[string]*Config, len(c.sources))
	for name, source := range c.sources {
		if source.Settings.Enabled {
			enabled[name] = source
		}
	}
	return enabled
}

func (c *Catalogue) Len() int {
	return len(c.sources)
}
