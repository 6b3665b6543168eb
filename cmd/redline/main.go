// Command redline compares documents and consolidates reviewed revisions.
// It reads and writes document packages through internal/pkgdir.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/redline/core/compare"
	"github.com/FocuswithJustin/redline/core/consolidate"
	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/internal/config"
	"github.com/FocuswithJustin/redline/internal/logging"
	"github.com/FocuswithJustin/redline/internal/pkgdir"
)

const version = "0.1.0"

// CLI defines the command-line interface for redline.
var CLI struct {
	// Global flags
	Settings  string `name:"settings" short:"s" help:"Settings file (.toml, .yaml or .json)" type:"existingfile"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Log format (text, json)"`

	Compare     CompareCmd     `cmd:"" help:"Compare two documents and write the tracked revisions"`
	Consolidate ConsolidateCmd `cmd:"" help:"Merge several reviewed revisions into one document"`
	Summary     SummaryCmd     `cmd:"" help:"Print what changed between two documents"`
	Version     VersionCmd     `cmd:"" help:"Print version information"`
}

// CompareCmd compares two documents.
type CompareCmd struct {
	Before   string `arg:"" help:"Original document" type:"existingpath"`
	After    string `arg:"" help:"Revised document" type:"existingpath"`
	Out      string `short:"o" required:"" help:"Output path; the extension picks the layout" type:"path"`
	Author   string `help:"Author of the revisions"`
	Date     string `help:"Revision date (RFC 3339); defaults to now"`
	Compress bool   `help:"xz-compress part files of directory and bundle output"`
}

func (c *CompareCmd) Run(ctx *kong.Context) error {
	return c.run(ctx.Stdout)
}

func (c *CompareCmd) run(w io.Writer) error {
	file, err := setup()
	if err != nil {
		return err
	}
	s, err := settingsFor(file, c.Author, c.Date)
	if err != nil {
		return err
	}
	before, err := pkgdir.Load(c.Before)
	if err != nil {
		return err
	}
	after, err := pkgdir.Load(c.After)
	if err != nil {
		return err
	}

	res, err := compare.Classify(before, after, s)
	if err != nil {
		return errors.Wrapf(err, "comparing %s with %s", c.Before, c.After)
	}
	if err := pkgdir.Save(res.Document, c.Out, c.Compress); err != nil {
		return err
	}
	st := res.Stats()
	fmt.Fprintf(w, "wrote %s (%d inserted, %d deleted)\n", c.Out, st.Inserted, st.Deleted)
	return nil
}

// ConsolidateCmd merges revisions of one original.
type ConsolidateCmd struct {
	Original  string   `arg:"" help:"Original document" type:"existingpath"`
	Revisions []string `name:"revision" short:"r" help:"Revised document as PATH:NAME[:COLOR]" sep:"none"`
	Out       string   `short:"o" required:"" help:"Output path; the extension picks the layout" type:"path"`
	Date      string   `help:"Revision date (RFC 3339); defaults to now"`
	NoTables  bool     `name:"no-tables" help:"Write reviewer blocks as plain paragraphs"`
	Compress  bool     `help:"xz-compress part files of directory and bundle output"`
}

func (c *ConsolidateCmd) Run(ctx *kong.Context) error {
	return c.run(ctx.Stdout)
}

func (c *ConsolidateCmd) run(w io.Writer) error {
	file, err := setup()
	if err != nil {
		return err
	}
	opts, err := file.Options()
	if err != nil {
		return err
	}
	if opts.Settings, err = settingsFor(file, "", c.Date); err != nil {
		return err
	}
	if c.NoTables {
		opts.UseTables = false
	}
	conflicts := 0
	opts.Settings.LogSink = func(report string) {
		conflicts++
		fmt.Fprint(w, report)
	}

	reviewers := append([]config.ReviewerConfig(nil), file.Consolidate.Reviewers...)
	for _, arg := range c.Revisions {
		r, err := parseReviewer(arg)
		if err != nil {
			return err
		}
		reviewers = append(reviewers, r)
	}
	if len(reviewers) == 0 {
		return errors.NewValidation("revision", "at least one revision is required")
	}

	original, err := pkgdir.Load(c.Original)
	if err != nil {
		return err
	}
	revisions := make([]consolidate.Revision, 0, len(reviewers))
	for _, r := range reviewers {
		pkg, err := pkgdir.Load(r.Path)
		if err != nil {
			return err
		}
		revisions = append(revisions, consolidate.Revision{Package: pkg, Reviewer: r.Name, Color: r.Color})
	}

	res, err := consolidate.Consolidate(original, revisions, opts)
	if err != nil {
		return err
	}
	if err := pkgdir.Save(res, c.Out, c.Compress); err != nil {
		return err
	}
	fmt.Fprintf(w, "wrote %s (%d revisions, %d conflicts)\n", c.Out, len(revisions), conflicts)
	return nil
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context) error {
	fmt.Fprintf(ctx.Stdout, "redline version %s\n", version)
	return nil
}

// Helper functions

// setup loads the settings file named by --settings and configures logging.
// Flags take precedence over the file.
func setup() (*config.File, error) {
	file := &config.File{}
	if CLI.Settings != "" {
		var err error
		if file, err = config.Load(CLI.Settings); err != nil {
			return nil, err
		}
	}
	level := firstNonEmpty(CLI.LogLevel, file.Logging.Level, "warn")
	format := logging.FormatText
	if firstNonEmpty(CLI.LogFormat, file.Logging.Format) == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(logging.ParseLevel(level), format)
	return file, nil
}

// settingsFor converts the settings file and applies the author and date
// flags. Without a date anywhere the revisions are stamped with the current
// time.
func settingsFor(file *config.File, author, date string) (compare.Settings, error) {
	s, err := file.Settings()
	if err != nil {
		return s, err
	}
	if author != "" {
		s.Author = author
	}
	switch {
	case date != "":
		d, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return s, &errors.ValidationError{Field: "date", Value: date, Message: "must be an RFC 3339 timestamp"}
		}
		s.Date = d
	case s.Date.IsZero():
		s.Date = time.Now().UTC().Truncate(time.Second)
	}
	return s, nil
}

// parseReviewer splits PATH:NAME[:COLOR]. The path may itself contain colons.
func parseReviewer(arg string) (config.ReviewerConfig, error) {
	parts := strings.Split(arg, ":")
	var r config.ReviewerConfig
	if n := len(parts); n >= 3 && isColor(parts[n-1]) {
		r.Color = parts[n-1]
		parts = parts[:n-1]
	}
	if len(parts) < 2 {
		return r, &errors.ValidationError{Field: "revision", Value: arg, Message: "want PATH:NAME[:COLOR]"}
	}
	r.Name = parts[len(parts)-1]
	r.Path = strings.Join(parts[:len(parts)-1], ":")
	if r.Name == "" || r.Path == "" {
		return r, &errors.ValidationError{Field: "revision", Value: arg, Message: "want PATH:NAME[:COLOR]"}
	}
	return r, nil
}

func isColor(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return false
	}
	for _, c := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return false
		}
	}
	return true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("redline"),
		kong.Description("redline - structural comparison of word-processing documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "redline:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps error classes to process exit codes.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		return 2
	case errors.Is(err, errors.ErrUnsupported):
		return 3
	case errors.Is(err, errors.ErrInternal):
		return 4
	default:
		return 1
	}
}
