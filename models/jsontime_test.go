package models

import (
	"testing"
	"time"
)

func TestJSONTimeUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"rfc3339", `"2026-09-01T10:15:00Z"`, time.Date(2026, 9, 1, 10, 15, 0, 0, time.UTC)},
		{"no zone", `"2026-09-01T10:15:00"`, time.Date(2026, 9, 1, 10, 15, 0, 0, time.UTC)},
		{"bare date", `"2026-09-01"`, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var jt JSONTime
			if err := jt.UnmarshalJSON([]byte(tt.input)); err != nil {
				t.Fatalf("UnmarshalJSON(%s) failed: %v", tt.input, err)
			}
			if !jt.Time().Equal(tt.want) {
				t.Errorf("got %v, expected %v", jt.Time(), tt.want)
			}
		})
	}
}

func TestJSONTimeUnmarshalRejectsGarbage(t *testing.T) {
	var jt JSONTime
	if err := jt.UnmarshalJSON([]byte(`"01/09/2026"`)); err == nil {
		t.Error("slash-formatted date accepted")
	}
}
