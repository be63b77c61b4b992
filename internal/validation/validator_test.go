// Facultypulse - Review Analytics and Statistical Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/facultypulse

package validation

import (
	"strings"
	"testing"
)

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
	if v1 == nil {
		t.Error("GetValidator() should not return nil")
	}
}

type entityInput struct {
	ID string `validate:"required,entityid"`
}

func TestEntityIDValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id    string
		valid bool
	}{
		{"prof-001", true},
		{"juan.perez_2", true},
		{"A", true},
		{"José_Pérez", true},
		{"Iñaki_Muñoz", true},
		{"Jose\u0301_Pe\u0301rez", true},
		{"Łukasz_2", true},
		{"", false},
		{"..", false},
		{"_x", false},
		{"a\tb", false},
		{"a\x00b", false},
		{".hidden", false},
		{"../escape", false},
		{"a/b", false},
		{"con espacio", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&entityInput{ID: tt.id})
			if tt.valid && err != nil {
				t.Errorf("expected %q to be valid, got %v", tt.id, err)
			}
			if !tt.valid && err == nil {
				t.Errorf("expected %q to be invalid", tt.id)
			}
		})
	}
}

type rangeInput struct {
	Workers    int     `validate:"min=1,max=64"`
	Confidence float64 `validate:"gt=0,lt=1"`
	Format     string  `validate:"oneof=json console"`
}

func TestValidateStruct_Messages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   rangeInput
		message string
	}{
		{"workers below min", rangeInput{Workers: 0, Confidence: 0.9, Format: "json"}, "Workers must be at least 1"},
		{"confidence too high", rangeInput{Workers: 2, Confidence: 1, Format: "json"}, "Confidence must be less than 1"},
		{"bad format", rangeInput{Workers: 2, Confidence: 0.9, Format: "xml"}, "Format must be one of: json console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(&tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if err.Error() != tt.message {
				t.Errorf("expected %q, got %q", tt.message, err.Error())
			}
		})
	}

	if err := ValidateStruct(&rangeInput{Workers: 4, Confidence: 0.95, Format: "console"}); err != nil {
		t.Errorf("expected valid input, got %v", err)
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	single := ValidateStruct(&entityInput{})
	apiErr := single.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" || apiErr.Details["field"] != "ID" {
		t.Errorf("unexpected single error %+v", apiErr)
	}

	multi := ValidateStruct(&rangeInput{Format: "xml"})
	apiErr = multi.ToAPIError()
	if len(multi.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(multi.Errors()))
	}
	if !strings.Contains(apiErr.Message, "Workers:") || !strings.Contains(apiErr.Message, "Format:") {
		t.Errorf("expected field-prefixed messages, got %q", apiErr.Message)
	}
	fields, ok := apiErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 3 {
		t.Errorf("expected 3 field details, got %v", apiErr.Details["fields"])
	}

	if (&RequestValidationError{}).ToAPIError().Message != "Validation failed" {
		t.Error("expected generic message for empty error set")
	}
}

type pageQuery struct {
	Limit int `json:"limit" validate:"gte=1,lte=500"`
}

type nestedConfig struct {
	Logging struct {
		Level string `koanf:"level" validate:"oneof=debug info"`
	} `koanf:"logging"`
}

func TestValidateStruct_FieldNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input interface{}
		field string
	}{
		{"json name", &pageQuery{Limit: 0}, "limit"},
		{"nested koanf path", &nestedConfig{}, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if got := err.Errors()[0].Field; got != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, got)
			}
			if !strings.HasPrefix(err.Error(), tt.field+" ") {
				t.Errorf("expected message to start with %q, got %q", tt.field, err.Error())
			}
		})
	}
}
