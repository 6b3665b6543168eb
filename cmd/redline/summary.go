package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"

	"github.com/FocuswithJustin/redline/core/compare"
	"github.com/FocuswithJustin/redline/internal/pkgdir"
)

// maxChangeRunes bounds the text shown for one change.
const maxChangeRunes = 60

// SummaryCmd prints the changes between two documents.
type SummaryCmd struct {
	Before string `arg:"" help:"Original document" type:"existingpath"`
	After  string `arg:"" help:"Revised document" type:"existingpath"`
	Limit  int    `help:"Maximum number of changes to list (0 lists all)" default:"20"`
}

func (c *SummaryCmd) Run(ctx *kong.Context) error {
	return c.run(ctx.Stdout)
}

func (c *SummaryCmd) run(w io.Writer) error {
	file, err := setup()
	if err != nil {
		return err
	}
	s, err := settingsFor(file, "", "")
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
		return err
	}
	renderSummary(w, c.Before, c.After, res, c.Limit)
	return nil
}

// change is a run of adjacent atoms inserted or deleted together.
type change struct {
	status compare.Status
	text   string
}

// changes groups the classified atoms into runs. Equal atoms end a run.
func changes(atoms []*compare.Atom) []change {
	var out []change
	var b strings.Builder
	status := compare.Equal
	flush := func() {
		if status != compare.Equal && b.Len() > 0 {
			out = append(out, change{status: status, text: b.String()})
		}
		b.Reset()
	}
	for _, a := range atoms {
		if a.Status != status {
			flush()
			status = a.Status
		}
		if status != compare.Equal {
			b.WriteString(a.String())
		}
	}
	flush()
	return out
}

func truncate(s string) string {
	if utf8.RuneCountInString(s) <= maxChangeRunes {
		return s
	}
	r := []rune(s)
	return string(r[:maxChangeRunes-3]) + "..."
}

// renderSummary writes the statistics and the first limit changes. Styles
// degrade to plain text when w is not a terminal.
func renderSummary(w io.Writer, before, after string, res *compare.Result, limit int) {
	r := lipgloss.NewRenderer(w)
	title := r.NewStyle().Bold(true)
	label := r.NewStyle().Faint(true).Width(10)
	inserted := r.NewStyle().Foreground(lipgloss.Color("2"))
	deleted := r.NewStyle().Foreground(lipgloss.Color("1")).Strikethrough(true)

	st := res.Stats()
	var b strings.Builder
	b.WriteString(title.Render("redline summary") + "\n")
	b.WriteString(label.Render("before") + before + "\n")
	b.WriteString(label.Render("after") + after + "\n")
	b.WriteString(label.Render("equal") + strconv.Itoa(st.Equal) + "\n")
	b.WriteString(label.Render("inserted") + inserted.Render(strconv.Itoa(st.Inserted)) + "\n")
	b.WriteString(label.Render("deleted") + deleted.Render(strconv.Itoa(st.Deleted)) + "\n")

	list := changes(res.Atoms)
	if len(list) == 0 {
		b.WriteString("\nno changes\n")
		fmt.Fprint(w, b.String())
		return
	}
	b.WriteString("\n")
	for i, ch := range list {
		if limit > 0 && i == limit {
			fmt.Fprintf(&b, "... %d more\n", len(list)-limit)
			break
		}
		text := strconv.Quote(truncate(ch.text))
		if ch.status == compare.Inserted {
			b.WriteString("+ " + inserted.Render(text) + "\n")
		} else {
			b.WriteString("- " + deleted.Render(text) + "\n")
		}
	}
	fmt.Fprint(w, b.String())
}
