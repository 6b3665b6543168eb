package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/redline/core/errors"
	"github.com/FocuswithJustin/redline/core/wml"
	"github.com/FocuswithJustin/redline/internal/config"
	"github.com/FocuswithJustin/redline/internal/pkgdir"
)

const (
	originalDoc = `p { r { t "One" } } p { r { t "Two" } } p { r { t "Three" } }`
	revisedDoc  = `p { r { t "One" } } p { r { t "Two point five" } } p { r { t "Three" } }`
	otherDoc    = `p { r { t "One" } } p { r { t "Deux" } } p { r { t "Three" } }`
)

// Test helper functions

func createTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func resetCLI(t *testing.T) {
	t.Helper()
	CLI.Settings, CLI.LogLevel, CLI.LogFormat = "", "", ""
	t.Cleanup(func() { CLI.Settings, CLI.LogLevel, CLI.LogFormat = "", "", "" })
}

func countNamed(pkg *wml.Package, name string) int {
	return len(pkg.Body().Descendants(name))
}

// TestCompareCmd verifies that compare writes a tracked document.
func TestCompareCmd(t *testing.T) {
	resetCLI(t)
	dir := t.TempDir()
	cmd := &CompareCmd{
		Before: createTestFile(t, dir, "before.rln", originalDoc),
		After:  createTestFile(t, dir, "after.rln", revisedDoc),
		Out:    filepath.Join(dir, "out"),
		Author: "Editor",
		Date:   "2026-03-01T09:00:00Z",
	}
	var out bytes.Buffer
	if err := cmd.run(&out); err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "wrote "+cmd.Out) {
		t.Errorf("output = %q, want wrote message", out.String())
	}

	res, err := pkgdir.Load(cmd.Out)
	if err != nil {
		t.Fatalf("Load(result) failed: %v", err)
	}
	if countNamed(res, wml.Ins) == 0 {
		t.Error("result has no w:ins")
	}
	for _, ins := range res.Body().Descendants(wml.Ins) {
		if ins.Attr(wml.AttrAuthor) != "Editor" || ins.Attr(wml.AttrDate) != "2026-03-01T09:00:00Z" {
			t.Errorf("w:ins attributes = %v", ins.Attrs)
		}
	}
}

// TestCompareCmdSettingsFile verifies that the settings file is applied.
func TestCompareCmdSettingsFile(t *testing.T) {
	resetCLI(t)
	dir := t.TempDir()
	CLI.Settings = createTestFile(t, dir, "settings.yaml", "compare:\n  author: From File\n  date: \"2026-01-01T00:00:00Z\"\n")
	cmd := &CompareCmd{
		Before: createTestFile(t, dir, "before.rln", originalDoc),
		After:  createTestFile(t, dir, "after.rln", revisedDoc),
		Out:    filepath.Join(dir, "out.tar.xz"),
	}
	if err := cmd.run(&bytes.Buffer{}); err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	res, err := pkgdir.Load(cmd.Out)
	if err != nil {
		t.Fatalf("Load(result) failed: %v", err)
	}
	if countNamed(res, wml.Ins) == 0 {
		t.Fatal("result has no w:ins")
	}
	for _, ins := range res.Body().Descendants(wml.Ins) {
		if ins.Attr(wml.AttrAuthor) != "From File" {
			t.Errorf("w:ins author = %q, want From File", ins.Attr(wml.AttrAuthor))
		}
	}
}

// TestCompareCmdErrors verifies error classes and exit codes.
func TestCompareCmdErrors(t *testing.T) {
	resetCLI(t)
	dir := t.TempDir()
	before := createTestFile(t, dir, "before.rln", originalDoc)

	cmd := &CompareCmd{Before: before, After: before, Out: filepath.Join(dir, "out"), Date: "yesterday"}
	err := cmd.run(&bytes.Buffer{})
	if !errors.Is(err, errors.ErrInvalidInput) || exitCode(err) != 2 {
		t.Errorf("bad date: error = %v, exit %d", err, exitCode(err))
	}

	sub := createTestFile(t, dir, "sub.rln", `p { r { t "x" } } subDoc`)
	cmd = &CompareCmd{Before: before, After: sub, Out: filepath.Join(dir, "out")}
	err = cmd.run(&bytes.Buffer{})
	if !errors.Is(err, errors.ErrUnsupported) || exitCode(err) != 3 {
		t.Errorf("subDoc: error = %v, exit %d", err, exitCode(err))
	}
}

// TestConsolidateCmd verifies reviewer parsing and conflict reporting.
func TestConsolidateCmd(t *testing.T) {
	resetCLI(t)
	dir := t.TempDir()
	ann := createTestFile(t, dir, "ann.rln", revisedDoc)
	bob := createTestFile(t, dir, "bob.rln", otherDoc)
	cmd := &ConsolidateCmd{
		Original:  createTestFile(t, dir, "original.rln", originalDoc),
		Revisions: []string{ann + ":Ann:#FF0000", bob + ":Bob"},
		Out:       filepath.Join(dir, "merged"),
		Date:      "2026-03-01T09:00:00Z",
	}
	var out bytes.Buffer
	if err := cmd.run(&out); err != nil {
		t.Fatalf("consolidate failed: %v", err)
	}
	if !strings.Contains(out.String(), "conflicting revisions") {
		t.Errorf("output = %q, want a conflict report", out.String())
	}
	if !strings.Contains(out.String(), "(2 revisions, 1 conflicts)") {
		t.Errorf("output = %q, want revision and conflict counts", out.String())
	}

	res, err := pkgdir.Load(cmd.Out)
	if err != nil {
		t.Fatalf("Load(result) failed: %v", err)
	}
	if got := len(res.Body().ChildrenNamed(wml.Tbl)); got != 2 {
		t.Errorf("reviewer tables = %d, want 2", got)
	}
}

// TestConsolidateCmdReviewersFromFile verifies reviewers listed in settings.
func TestConsolidateCmdReviewersFromFile(t *testing.T) {
	resetCLI(t)
	dir := t.TempDir()
	ann := createTestFile(t, dir, "ann.rln", revisedDoc)
	CLI.Settings = createTestFile(t, dir, "settings.toml",
		"[consolidate]\nuse_tables = false\n\n[[consolidate.reviewers]]\nname = \"Ann\"\npath = \""+filepath.ToSlash(ann)+"\"\n")
	cmd := &ConsolidateCmd{
		Original: createTestFile(t, dir, "original.rln", originalDoc),
		Out:      filepath.Join(dir, "merged"),
	}
	if err := cmd.run(&bytes.Buffer{}); err != nil {
		t.Fatalf("consolidate failed: %v", err)
	}
	res, err := pkgdir.Load(cmd.Out)
	if err != nil {
		t.Fatalf("Load(result) failed: %v", err)
	}
	if countNamed(res, wml.Ins) == 0 {
		t.Error("agreed revision should be written as tracked changes")
	}
	if countNamed(res, wml.Tbl) != 0 {
		t.Error("a single reviewer needs no reviewer block")
	}

	cmd = &ConsolidateCmd{Original: cmd.Original, Out: cmd.Out}
	CLI.Settings = ""
	if err := cmd.run(&bytes.Buffer{}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("no reviewers: error = %v, want invalid input", err)
	}
}

// TestParseReviewer verifies PATH:NAME[:COLOR] splitting.
func TestParseReviewer(t *testing.T) {
	tests := []struct {
		arg     string
		want    config.ReviewerConfig
		wantErr bool
	}{
		{arg: "ann.rln:Ann", want: config.ReviewerConfig{Path: "ann.rln", Name: "Ann"}},
		{arg: "ann.rln:Ann:#00ff00", want: config.ReviewerConfig{Path: "ann.rln", Name: "Ann", Color: "#00ff00"}},
		{arg: "ann.rln:Ann:00FF00", want: config.ReviewerConfig{Path: "ann.rln", Name: "Ann", Color: "00FF00"}},
		{arg: `C:\docs\ann:Ann`, want: config.ReviewerConfig{Path: `C:\docs\ann`, Name: "Ann"}},
		{arg: "dir:Ann:Green", want: config.ReviewerConfig{Path: "dir:Ann", Name: "Green"}},
		{arg: "ann.rln", wantErr: true},
		{arg: "ann.rln:", wantErr: true},
		{arg: ":Ann", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := parseReviewer(tt.arg)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseReviewer(%q) should fail", tt.arg)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseReviewer(%q) failed: %v", tt.arg, err)
			}
			if got != tt.want {
				t.Errorf("parseReviewer(%q) = %+v, want %+v", tt.arg, got, tt.want)
			}
		})
	}
}

// TestSummaryCmd verifies the change listing.
func TestSummaryCmd(t *testing.T) {
	resetCLI(t)
	dir := t.TempDir()
	cmd := &SummaryCmd{
		Before: createTestFile(t, dir, "before.rln", originalDoc),
		After:  createTestFile(t, dir, "after.rln", revisedDoc),
		Limit:  20,
	}
	var out bytes.Buffer
	if err := cmd.run(&out); err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	got := out.String()
	for _, want := range []string{"redline summary", "inserted", "deleted", "point five"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}

	cmd.After = cmd.Before
	out.Reset()
	if err := cmd.run(&out); err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !strings.Contains(out.String(), "no changes") {
		t.Errorf("summary of identical documents = %q, want no changes", out.String())
	}
}

// TestTruncate verifies change text shortening.
func TestTruncate(t *testing.T) {
	short := "short"
	if got := truncate(short); got != short {
		t.Errorf("truncate(%q) = %q", short, got)
	}
	long := strings.Repeat("ä", maxChangeRunes+5)
	got := truncate(long)
	if !strings.HasSuffix(got, "...") || len([]rune(got)) != maxChangeRunes {
		t.Errorf("truncate(long) = %q", got)
	}
}
