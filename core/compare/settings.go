package compare

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	"github.com/FocuswithJustin/redline/core/errors"
)

// HashAlgorithm selects the digest used for content hashes.
type HashAlgorithm string

const (
	// HashSHA1 is the default content hash.
	HashSHA1 HashAlgorithm = "sha1"
	// HashBLAKE3 trades compatibility of stored hashes for speed.
	HashBLAKE3 HashAlgorithm = "blake3"
)

// DefaultWordSeparators are the characters that always form a word of their own.
var DefaultWordSeparators = []rune{' ', '-', ')', '(', ';', ','}

// Settings controls a comparison.
type Settings struct {
	// WordSeparators are characters that stand alone as words.
	WordSeparators []rune

	// Author and Date are stamped on generated w:ins and w:del markers.
	// A zero Date omits w:date.
	Author string
	Date   time.Time

	// CaseInsensitive folds case before hashing, using the rules of Culture
	// (a BCP 47 tag such as "tr-TR"; empty means language-neutral).
	CaseInsensitive bool
	Culture         string

	// ConflateSpaces treats non-breaking spaces as ordinary spaces.
	ConflateSpaces bool

	// DetailThreshold is the fraction of the shorter side a common run must
	// cover to be accepted as a match.
	DetailThreshold float64

	// StartingNoteID is the first id given to renumbered footnotes and endnotes.
	StartingNoteID int

	// HashAlgorithm selects the content digest.
	HashAlgorithm HashAlgorithm

	// LogSink receives human-readable reports, such as consolidation
	// conflicts. It may be nil.
	LogSink func(string)
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		WordSeparators:  append([]rune(nil), DefaultWordSeparators...),
		Author:          "redline",
		ConflateSpaces:  true,
		DetailThreshold: 0.15,
		StartingNoteID:  1,
		HashAlgorithm:   HashSHA1,
	}
}

// Validate reports the first out-of-range setting.
func (s Settings) Validate() error {
	if len(s.WordSeparators) == 0 {
		return errors.NewValidation("WordSeparators", "at least one separator is required")
	}
	if s.DetailThreshold < 0 || s.DetailThreshold > 1 {
		return &errors.ValidationError{
			Field:   "DetailThreshold",
			Value:   fmt.Sprintf("%g", s.DetailThreshold),
			Message: "must be between 0 and 1",
		}
	}
	if s.StartingNoteID < 0 {
		return &errors.ValidationError{
			Field:   "StartingNoteID",
			Value:   fmt.Sprintf("%d", s.StartingNoteID),
			Message: "must not be negative",
		}
	}
	switch s.HashAlgorithm {
	case "", HashSHA1, HashBLAKE3:
	default:
		return &errors.ValidationError{
			Field:   "HashAlgorithm",
			Value:   string(s.HashAlgorithm),
			Message: "must be sha1 or blake3",
		}
	}
	if s.Culture != "" {
		if _, err := language.Parse(s.Culture); err != nil {
			return &errors.ValidationError{
				Field:   "Culture",
				Value:   s.Culture,
				Message: "not a BCP 47 language tag",
			}
		}
	}
	return nil
}
