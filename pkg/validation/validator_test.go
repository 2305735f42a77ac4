package validation

import (
	"errors"
	"strings"
	"testing"
)

type taggedParams struct {
	Rounds int     `validate:"gt=0"`
	Alpha  float64 `validate:"gt=0,lte=1"`
	Window string  `validate:"omitempty,oneof=majority full"`
	Name   string  `validate:"required"`
	Limit  int     `validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name        string
		value       taggedParams
		expectErr   bool
		errContains []string
	}{
		{
			name:  "valid",
			value: taggedParams{Rounds: 3, Alpha: 1, Window: "full", Name: "x"},
		},
		{
			name:  "empty window allowed",
			value: taggedParams{Rounds: 3, Alpha: 0.5, Name: "x"},
		},
		{
			name:        "zero rounds",
			value:       taggedParams{Rounds: 0, Alpha: 0.5, Name: "x"},
			expectErr:   true,
			errContains: []string{"Rounds", "greater than 0"},
		},
		{
			name:        "alpha above one",
			value:       taggedParams{Rounds: 1, Alpha: 1.5, Name: "x"},
			expectErr:   true,
			errContains: []string{"Alpha", "must not exceed 1"},
		},
		{
			name:        "unknown window",
			value:       taggedParams{Rounds: 1, Alpha: 0.5, Window: "all", Name: "x"},
			expectErr:   true,
			errContains: []string{"Window", "one of"},
		},
		{
			name:        "several failures",
			value:       taggedParams{Limit: -1},
			expectErr:   true,
			errContains: []string{"Rounds", "Alpha", "Name", "Limit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.value)
			if tt.expectErr && err == nil {
				t.Fatal("Expected validation error")
			}
			if !tt.expectErr {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Expected ErrInvalid, got %v", err)
			}
			for _, s := range tt.errContains {
				if !strings.Contains(err.Error(), s) {
					t.Errorf("Expected %q in %q", s, err.Error())
				}
			}
		})
	}
}

func TestStructNil(t *testing.T) {
	if err := Struct(nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for nil, got %v", err)
	}
}
