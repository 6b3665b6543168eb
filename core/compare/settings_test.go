package compare

import (
	"testing"

	"github.com/FocuswithJustin/redline/core/errors"
)

// TestSettingsValidate verifies range checks on settings.
func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		field  string
	}{
		{"defaults", func(*Settings) {}, ""},
		{"zero threshold", func(s *Settings) { s.DetailThreshold = 0 }, ""},
		{"negative threshold", func(s *Settings) { s.DetailThreshold = -0.1 }, "DetailThreshold"},
		{"threshold above one", func(s *Settings) { s.DetailThreshold = 1.5 }, "DetailThreshold"},
		{"no separators", func(s *Settings) { s.WordSeparators = nil }, "WordSeparators"},
		{"negative note id", func(s *Settings) { s.StartingNoteID = -1 }, "StartingNoteID"},
		{"unknown hash", func(s *Settings) { s.HashAlgorithm = "md5" }, "HashAlgorithm"},
		{"blake3", func(s *Settings) { s.HashAlgorithm = HashBLAKE3 }, ""},
		{"culture", func(s *Settings) { s.Culture = "tr-TR" }, ""},
		{"bad culture", func(s *Settings) { s.Culture = "not a tag!" }, "Culture"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			err := s.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			var verr *errors.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Validate() = %v, want *errors.ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
			if !errors.Is(err, errors.ErrInvalidInput) {
				t.Error("error should wrap ErrInvalidInput")
			}
		})
	}
}

// TestDefaultSettingsCopiesSeparators verifies that callers cannot change the
// package defaults through a returned value.
func TestDefaultSettingsCopiesSeparators(t *testing.T) {
	s := DefaultSettings()
	s.WordSeparators[0] = 'x'
	if DefaultWordSeparators[0] == 'x' {
		t.Error("DefaultSettings shares DefaultWordSeparators")
	}
}
