package weather

import (
	"encoding/json"
	"testing"
)

func TestStatusCodeDecoding(t *testing.T) {
	tests := []struct {
		in   string
		want statusCode
	}{
		{`{"cod":200}`, 200},
		{`{"cod":"200"}`, 200},
		{`{"cod":"404"}`, 404},
		{`{"cod":null}`, 0},
		{`{"cod":""}`, 0},
		{`{}`, 0},
	}

	for _, tt := range tests {
		var v struct {
			Cod statusCode `json:"cod"`
		}
		if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.in, err)
		}
		if v.Cod != tt.want {
			t.Errorf("%s: expected %d, got %d", tt.in, tt.want, v.Cod)
		}
	}
}

func TestStatusCodeRejectsGarbage(t *testing.T) {
	var v struct {
		Cod statusCode `json:"cod"`
	}
	if err := json.Unmarshal([]byte(`{"cod":"abc"}`), &v); err == nil {
		t.Fatal("expected error for non-numeric cod")
	}
}

func TestParseUnits(t *testing.T) {
	for _, s := range []string{"standard", "metric", "imperial"} {
		if _, err := ParseUnits(s); err != nil {
			t.Errorf("%s: unexpected error: %v", s, err)
		}
	}
	if _, err := ParseUnits("kelvin"); err == nil {
		t.Error("expected error for unknown unit system")
	}
}
