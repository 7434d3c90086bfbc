package shares

import (
	"encoding/json"
	"testing"
)

func TestNormalizeValue_AcceptsTypedValues(t *testing.T) {
	cases := []struct {
		name string
		ft   FieldType
		raw  string
		want string
	}{
		{"text", FieldTypeText, `"todo en orden"`, `"todo en orden"`},
		{"number int", FieldTypeNumber, `7`, "7"},
		{"number float", FieldTypeNumber, `3.25`, "3.25"},
		{"boolean", FieldTypeBoolean, `false`, "false"},
		{"select", FieldTypeSelect, `"opt-2"`, `"opt-2"`},
		{"date rfc3339", FieldTypeDate, `"2026-08-01T10:00:00Z"`, `"2026-08-01T10:00:00Z"`},
		{"date plain", FieldTypeDate, `"2026-08-01"`, `"2026-08-01"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := normalizeValue(tc.ft, json.RawMessage(tc.raw))
			if err != nil {
				t.Fatalf("normalizeValue(%s, %s) returned error: %v", tc.ft, tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestNormalizeValue_RejectsMismatches(t *testing.T) {
	cases := []struct {
		name string
		ft   FieldType
		raw  string
	}{
		{"text gets number", FieldTypeText, `12`},
		{"number gets string", FieldTypeNumber, `"12"`},
		{"boolean gets string", FieldTypeBoolean, `"true"`},
		{"select empty option", FieldTypeSelect, `"  "`},
		{"date garbage", FieldTypeDate, `"mañana"`},
		{"unknown type", FieldType("rating"), `5`},
		{"null value", FieldTypeText, `null`},
		{"empty raw", FieldTypeText, ``},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := normalizeValue(tc.ft, json.RawMessage(tc.raw)); err == nil {
				t.Fatalf("expected error for %s with %q", tc.ft, tc.raw)
			}
		})
	}
}
