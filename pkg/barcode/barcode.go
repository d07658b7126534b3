// Package barcode encodes and decodes the pipe-delimited payload printed
// on item labels: item_code|model_number|serial_number. Both directions
// are pure string transforms; whether the referenced item exists is the
// caller's problem.
package barcode

import (
	"fmt"
	"strings"
)

// Separator between payload fields. None of the fields may contain it.
const Separator = "|"

// Scan is a decoded barcode payload.
type Scan struct {
	ItemCode     string `json:"itemCode"`
	ModelNumber  string `json:"modelNumber"`
	SerialNumber string `json:"serialNumber"`
}

// FormatError reports a payload that is not in the expected format. It is
// recoverable and never implies anything about the database.
type FormatError struct {
	Payload string
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("malformed barcode %q: %s", e.Payload, e.Reason)
}

// Encode builds the barcode payload for an item/model/serial triple.
// With a serial number the second pipe is always present, even for an
// empty model number, so the decoder can tell model and serial apart.
func Encode(itemCode, modelNumber, serialNumber string) string {
	if serialNumber != "" {
		return itemCode + Separator + modelNumber + Separator + serialNumber
	}
	if modelNumber != "" {
		return itemCode + Separator + modelNumber
	}
	return itemCode
}

// Decode splits a payload back into its fields. A payload without any
// separator is a bare item code.
func Decode(payload string) (Scan, error) {
	if payload == "" {
		return Scan{}, &FormatError{Payload: payload, Reason: "empty payload"}
	}
	parts := strings.Split(payload, Separator)
	if parts[0] == "" {
		return Scan{}, &FormatError{Payload: payload, Reason: "missing item code"}
	}
	scan := Scan{ItemCode: parts[0]}
	if len(parts) > 1 {
		scan.ModelNumber = parts[1]
	}
	if len(parts) > 2 {
		scan.SerialNumber = parts[2]
	}
	return scan, nil
}

// Valid reports whether a payload would decode without error.
func Valid(payload string) bool {
	_, err := Decode(payload)
	return err == nil
}
