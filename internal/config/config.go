// Package config loads comparison settings from TOML, YAML or JSON files.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/redline/core/compare"
	"github.com/FocuswithJustin/redline/core/consolidate"
	"github.com/FocuswithJustin/redline/core/errors"
)

// CompareConfig holds comparison settings. Pointer fields distinguish unset
// values from zero values.
type CompareConfig struct {
	WordSeparators  string   `toml:"word_separators" yaml:"word_separators" json:"word_separators"`
	Author          string   `toml:"author" yaml:"author" json:"author"`
	Date            string   `toml:"date" yaml:"date" json:"date"`
	CaseInsensitive bool     `toml:"case_insensitive" yaml:"case_insensitive" json:"case_insensitive"`
	Culture         string   `toml:"culture" yaml:"culture" json:"culture"`
	ConflateSpaces  *bool    `toml:"conflate_spaces" yaml:"conflate_spaces" json:"conflate_spaces"`
	DetailThreshold *float64 `toml:"detail_threshold" yaml:"detail_threshold" json:"detail_threshold"`
	StartingNoteID  *int     `toml:"starting_note_id" yaml:"starting_note_id" json:"starting_note_id"`
	HashAlgorithm   string   `toml:"hash_algorithm" yaml:"hash_algorithm" json:"hash_algorithm"`
}

// ReviewerConfig names one revision of a consolidation.
type ReviewerConfig struct {
	Name  string `toml:"name" yaml:"name" json:"name"`
	Color string `toml:"color" yaml:"color" json:"color"`
	Path  string `toml:"path" yaml:"path" json:"path"`
}

// ConsolidateConfig holds consolidation settings.
type ConsolidateConfig struct {
	UseTables *bool            `toml:"use_tables" yaml:"use_tables" json:"use_tables"`
	Reviewers []ReviewerConfig `toml:"reviewers" yaml:"reviewers" json:"reviewers"`
}

// LoggingConfig selects the log level and format.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level" json:"level"`
	Format string `toml:"format" yaml:"format" json:"format"`
}

// File is the content of a settings file.
type File struct {
	Compare     CompareConfig     `toml:"compare" yaml:"compare" json:"compare"`
	Consolidate ConsolidateConfig `toml:"consolidate" yaml:"consolidate" json:"consolidate"`
	Logging     LoggingConfig     `toml:"logging" yaml:"logging" json:"logging"`
}

// Load reads a settings file. The format follows the extension: .toml, .yaml,
// .yml or .json.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	f, err := Parse(data, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) {
			perr.Path = path
		}
		return nil, err
	}
	return f, nil
}

// Parse decodes settings in the named format.
func Parse(data []byte, format string) (*File, error) {
	var f File
	var err error
	switch format {
	case "toml":
		err = toml.Unmarshal(data, &f)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &f)
	case "json":
		err = json.Unmarshal(data, &f)
	default:
		return nil, errors.NewUnsupported("settings format "+format, "use toml, yaml or json")
	}
	if err != nil {
		return nil, &errors.ParseError{Format: format, Message: err.Error(), Err: err}
	}
	return &f, nil
}

// Settings converts the file to comparison settings, starting from the
// defaults.
func (f *File) Settings() (compare.Settings, error) {
	s := compare.DefaultSettings()
	c := f.Compare
	if c.WordSeparators != "" {
		s.WordSeparators = []rune(c.WordSeparators)
	}
	if c.Author != "" {
		s.Author = c.Author
	}
	if c.Date != "" {
		d, err := time.Parse(time.RFC3339, c.Date)
		if err != nil {
			return s, &errors.ValidationError{Field: "date", Value: c.Date, Message: "must be an RFC 3339 timestamp"}
		}
		s.Date = d
	}
	s.CaseInsensitive = c.CaseInsensitive
	s.Culture = c.Culture
	if c.ConflateSpaces != nil {
		s.ConflateSpaces = *c.ConflateSpaces
	}
	if c.DetailThreshold != nil {
		s.DetailThreshold = *c.DetailThreshold
	}
	if c.StartingNoteID != nil {
		s.StartingNoteID = *c.StartingNoteID
	}
	if c.HashAlgorithm != "" {
		s.HashAlgorithm = compare.HashAlgorithm(strings.ToLower(c.HashAlgorithm))
	}
	return s, s.Validate()
}

// Options converts the file to consolidation options.
func (f *File) Options() (consolidate.Options, error) {
	opts := consolidate.DefaultOptions()
	s, err := f.Settings()
	if err != nil {
		return opts, err
	}
	opts.Settings = s
	if f.Consolidate.UseTables != nil {
		opts.UseTables = *f.Consolidate.UseTables
	}
	return opts, nil
}
