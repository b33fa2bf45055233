package settings

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateProjectID(t *testing.T) {
	tests := []struct {
		id   string
		want error
	}{
		{"my-project", nil},
		{"abcdef", nil},
		{"a12345678901234567890123456789", nil},
		{"", ErrProjectIDRequired},
		{"short", ErrProjectIDInvalid},
		{"1project", ErrProjectIDInvalid},
		{"my-project-", ErrProjectIDInvalid},
		{"My-Project", ErrProjectIDInvalid},
		{"a123456789012345678901234567890", ErrProjectIDInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if err := ValidateProjectID(tt.id); !errors.Is(err, tt.want) {
				t.Errorf("ValidateProjectID(%q) = %v, want %v", tt.id, err, tt.want)
			}
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"Defaults", func(*Settings) {}, false},
		{"Configured", func(s *Settings) { s.ProjectID = "my-project" }, false},
		{"BadProject", func(s *Settings) { s.ProjectID = "X" }, true},
		{"BadDataset", func(s *Settings) { s.DatasetID = "billing-export" }, true},
		{"EmptyTable", func(s *Settings) { s.TableID = "" }, true},
		{"TableWithDash", func(s *Settings) { s.TableID = "export-v1" }, false},
		{"LongDataset", func(s *Settings) { s.DatasetID = strings.Repeat("d", 1024) }, false},
		{"TableTooLong", func(s *Settings) { s.TableID = strings.Repeat("t", 1025) }, true},
		{"ZeroInterval", func(s *Settings) { s.RefreshIntervalMinutes = 0 }, true},
		{"NegativeBudget", func(s *Settings) { s.MonthlyBudget = -1 }, true},
		{"Japanese", func(s *Settings) { s.Language = "ja" }, false},
		{"UnknownLanguage", func(s *Settings) { s.Language = "de" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Defaults()
			tt.mutate(&s)
			if err := s.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	got, err := parse([]byte("  \n"))
	if err != nil {
		t.Fatalf("parse() failed: %v", err)
	}
	if got != Defaults() {
		t.Errorf("parse(empty) = %+v, want defaults", got)
	}
}

func TestParse_Malformed(t *testing.T) {
	if _, err := parse([]byte("projectId: [unclosed")); err == nil {
		t.Error("parse() should fail on malformed YAML")
	}
}
