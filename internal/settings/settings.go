// Package settings loads editor defaults for the edcore shells from a
// settings file in TOML, YAML or JSON.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/phroun/edcore"
)

// Format identifies the serialization format of a settings file.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// Source describes where settings were loaded from.
type Source struct {
	Path   string
	Format Format
}

// Settings are the user-tunable editor defaults.
type Settings struct {
	Search  SearchSettings  `json:"search"  toml:"search"  yaml:"search"`
	Undo    UndoSettings    `json:"undo"    toml:"undo"    yaml:"undo"`
	Replace ReplaceSettings `json:"replace" toml:"replace" yaml:"replace"`
	Display DisplaySettings `json:"display" toml:"display" yaml:"display"`
}

// SearchSettings are the default flags of a new search.
type SearchSettings struct {
	Mode          string `json:"mode"           toml:"mode"           yaml:"mode"`
	CaseSensitive bool   `json:"case_sensitive" toml:"case_sensitive" yaml:"case_sensitive"`
	WholeWord     bool   `json:"whole_word"     toml:"whole_word"     yaml:"whole_word"`
	Wrap          bool   `json:"wrap"           toml:"wrap"           yaml:"wrap"`
	Backward      bool   `json:"backward"       toml:"backward"       yaml:"backward"`
}

type UndoSettings struct {
	Limit int `json:"limit" toml:"limit" yaml:"limit"`
}

type ReplaceSettings struct {
	ChunkSize int `json:"chunk_size" toml:"chunk_size" yaml:"chunk_size"`
}

type DisplaySettings struct {
	TabWidth int `json:"tab_width" toml:"tab_width" yaml:"tab_width"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	opts := edcore.DefaultOptions()
	return Settings{
		Search:  SearchSettings{Mode: edcore.ModeLiteral.String(), Wrap: true},
		Undo:    UndoSettings{Limit: opts.UndoLimit},
		Replace: ReplaceSettings{ChunkSize: opts.ChunkSize},
		Display: DisplaySettings{TabWidth: 8},
	}
}

// Dir returns the directory searched for settings files. EDCORE_CONFIG_DIR
// overrides the per-user configuration directory.
func Dir() string {
	if dir := os.Getenv("EDCORE_CONFIG_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return ".edcore"
	}
	return filepath.Join(base, "edcore")
}

// Load reads settings from path, or from the first of settings.toml,
// settings.yaml and settings.json in Dir when path is empty. Missing files
// fall back to defaults; parse errors fail.
func Load(path string) (Settings, Source, error) {
	if path != "" {
		format, err := formatOf(path)
		if err != nil {
			return Settings{}, Source{}, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return Settings{}, Source{}, fmt.Errorf("read settings %q: %w", path, err)
		}
		s, err := decode(data, format)
		if err != nil {
			return Settings{}, Source{}, fmt.Errorf("parse settings %q: %w", path, err)
		}
		return s, Source{Path: path, Format: format}, nil
	}
	return LoadDir(Dir())
}

// LoadDir looks for a settings file in dir.
func LoadDir(dir string) (Settings, Source, error) {
	candidates := []Source{
		{Path: filepath.Join(dir, "settings.toml"), Format: FormatTOML},
		{Path: filepath.Join(dir, "settings.yaml"), Format: FormatYAML},
		{Path: filepath.Join(dir, "settings.json"), Format: FormatJSON},
	}

	var accumulated error
	for _, candidate := range candidates {
		data, err := os.ReadFile(candidate.Path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			accumulated = errors.Join(
				accumulated,
				fmt.Errorf("read settings %q: %w", candidate.Path, err),
			)
			continue
		}

		s, err := decode(data, candidate.Format)
		if err != nil {
			return Settings{}, Source{}, fmt.Errorf("parse settings %q: %w", candidate.Path, err)
		}
		return s, candidate, nil
	}

	if accumulated != nil {
		return Settings{}, Source{}, accumulated
	}
	return Default(), Source{Path: candidates[0].Path, Format: FormatTOML}, nil
}

func formatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported settings file %q", path)
}

// decode parses data on top of the defaults, so omitted keys keep their
// default values.
func decode(data []byte, format Format) (Settings, error) {
	s := Default()
	switch format {
	case FormatTOML:
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&s); err != nil {
			return Settings{}, err
		}
	case FormatYAML:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
			return Settings{}, err
		}
	case FormatJSON:
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&s); err != nil {
			return Settings{}, err
		}
	default:
		return Settings{}, fmt.Errorf("unsupported settings format %q", format)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks values that the editor cannot use.
func (s Settings) Validate() error {
	if _, err := edcore.ParseMode(s.Search.Mode); err != nil {
		return fmt.Errorf("search.mode: %w", err)
	}
	if s.Replace.ChunkSize < 0 {
		return fmt.Errorf("replace.chunk_size must not be negative, got %d", s.Replace.ChunkSize)
	}
	if s.Display.TabWidth < 0 {
		return fmt.Errorf("display.tab_width must not be negative, got %d", s.Display.TabWidth)
	}
	return nil
}

// Options converts the settings into editor options.
func (s Settings) Options(logger *log.Logger) edcore.Options {
	return edcore.Options{
		UndoLimit: s.Undo.Limit,
		ChunkSize: s.Replace.ChunkSize,
		Logger:    logger,
	}
}

// Query returns a search query for pattern using the default flags.
func (s Settings) Query(pattern string) edcore.SearchQuery {
	mode, err := edcore.ParseMode(s.Search.Mode)
	if err != nil {
		mode = edcore.ModeLiteral
	}
	return edcore.SearchQuery{
		Pattern:       pattern,
		Mode:          mode,
		CaseSensitive: s.Search.CaseSensitive,
		WholeWord:     s.Search.WholeWord,
	}
}

// SearchOptions returns the default navigation options.
func (s Settings) SearchOptions() edcore.SearchOptions {
	opts := edcore.SearchOptions{Wrap: s.Search.Wrap}
	if s.Search.Backward {
		opts.Direction = edcore.Backward
	}
	return opts
}
