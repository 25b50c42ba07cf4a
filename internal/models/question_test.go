package models

import "testing"

func TestSelectionConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		cfg       SelectionConfig
		wantField string // empty means valid
	}{
		{
			name:      "valid by-subject practice",
			cfg:       SelectionConfig{Category: CategoryUTME, Mode: ModePractice, Method: MethodBySubject, Subject: "physics"},
			wantField: "",
		},
		{
			name:      "valid by-subject with year narrowing",
			cfg:       SelectionConfig{Category: CategorySSCE, Mode: ModeExam, Method: MethodBySubject, Subject: "physics", Year: 2018},
			wantField: "",
		},
		{
			name:      "valid by-year exam",
			cfg:       SelectionConfig{Category: CategoryUTME, Mode: ModeExam, Method: MethodByYear, Year: 2019},
			wantField: "",
		},
		{
			name:      "unknown category",
			cfg:       SelectionConfig{Category: "gce", Mode: ModeExam, Method: MethodByYear, Year: 2019},
			wantField: "category",
		},
		{
			name:      "unknown mode",
			cfg:       SelectionConfig{Category: CategoryUTME, Mode: "review", Method: MethodByYear, Year: 2019},
			wantField: "mode",
		},
		{
			name:      "unknown method",
			cfg:       SelectionConfig{Category: CategoryUTME, Mode: ModeExam, Method: "mixed", Subject: "physics"},
			wantField: "method",
		},
		{
			name:      "by-subject without subject",
			cfg:       SelectionConfig{Category: CategoryUTME, Mode: ModePractice, Method: MethodBySubject, Subject: "  "},
			wantField: "subject",
		},
		{
			name:      "by-year without year",
			cfg:       SelectionConfig{Category: CategoryUTME, Mode: ModeExam, Method: MethodByYear},
			wantField: "year",
		},
		{
			name:      "by-year with subject",
			cfg:       SelectionConfig{Category: CategoryUTME, Mode: ModeExam, Method: MethodByYear, Year: 2019, Subject: "physics"},
			wantField: "subject",
		},
	}

	for _, tt := range tests {
		err := tt.cfg.Validate()
		if tt.wantField == "" {
			if err != nil {
				t.Errorf("%s: Validate() = %v, want nil", tt.name, err)
			}
			continue
		}
		cfgErr, ok := err.(*ConfigError)
		if !ok {
			t.Errorf("%s: Validate() = %v, want ConfigError", tt.name, err)
			continue
		}
		if cfgErr.Field != tt.wantField {
			t.Errorf("%s: Validate() field = %q, want %q", tt.name, cfgErr.Field, tt.wantField)
		}
	}
}

func TestQuestionOptionFor(t *testing.T) {
	q := Question{Options: []Option{
		{Label: "A", Text: "first"},
		{Label: "B", Text: "second"},
	}}
	if opt, ok := q.OptionFor("B"); !ok || opt.Text != "second" {
		t.Errorf("OptionFor(B) = %v, %v", opt, ok)
	}
	if _, ok := q.OptionFor("E"); ok {
		t.Error("OptionFor(E) = true, want false")
	}
}
