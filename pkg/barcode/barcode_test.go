package barcode

import (
	"errors"
	"testing"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		itemCode string
		model    string
		serial   string
		expected string
	}{
		{"full triple", "PUMP-01", "M-100", "SN-001", "PUMP-01|M-100|SN-001"},
		{"serial without model keeps both pipes", "PUMP-01", "", "SN-001", "PUMP-01||SN-001"},
		{"item and model only", "PUMP-01", "M-100", "", "PUMP-01|M-100"},
		{"bare item code", "PUMP-01", "", "", "PUMP-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.itemCode, tt.model, tt.serial)
			if got != tt.expected {
				t.Errorf("Encode(%q, %q, %q) = %q, expected %q",
					tt.itemCode, tt.model, tt.serial, got, tt.expected)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected Scan
	}{
		{"full triple", "PUMP-01|M-100|SN-001", Scan{"PUMP-01", "M-100", "SN-001"}},
		{"empty model", "PUMP-01||SN-001", Scan{"PUMP-01", "", "SN-001"}},
		{"item and model", "PUMP-01|M-100", Scan{"PUMP-01", "M-100", ""}},
		{"bare item code", "PUMP-01", Scan{"PUMP-01", "", ""}},
		{"trailing pipe means empty model", "PUMP-01|", Scan{"PUMP-01", "", ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.payload)
			if err != nil {
				t.Fatalf("Decode(%q) returned error: %v", tt.payload, err)
			}
			if got != tt.expected {
				t.Errorf("Decode(%q) = %+v, expected %+v", tt.payload, got, tt.expected)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	for _, payload := range []string{"", "|M-100|SN-001", "|"} {
		t.Run("payload "+payload, func(t *testing.T) {
			_, err := Decode(payload)
			if err == nil {
				t.Fatalf("Decode(%q) should have failed", payload)
			}
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Errorf("Decode(%q) error is %T, expected *FormatError", payload, err)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	triples := []Scan{
		{"PUMP-01", "M-100", "SN-001"},
		{"VALVE-7", "", "SN-2209"},
		{"A", "B", "C"},
		{"PUMP-01", "M-100", ""},
		{"PUMP-01", "", ""},
	}

	for _, in := range triples {
		got, err := Decode(Encode(in.ItemCode, in.ModelNumber, in.SerialNumber))
		if err != nil {
			t.Fatalf("round trip of %+v failed: %v", in, err)
		}
		if got != in {
			t.Errorf("round trip of %+v returned %+v", in, got)
		}
	}
}

func TestValid(t *testing.T) {
	if !Valid("PUMP-01|M-100") {
		t.Error("expected PUMP-01|M-100 to be valid")
	}
	if Valid("") {
		t.Error("expected empty payload to be invalid")
	}
}
