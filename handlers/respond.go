package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"
	"qonevo.in/fieldops/models"
	"qonevo.in/fieldops/pkg/barcode"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses: malformed
// barcode payloads are 400, missing rows are 404, rule violations are
// 422, everything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var fe *barcode.FormatError
	var ve *models.ValidationError
	switch {
	case errors.As(err, &fe):
		http.Error(w, fe.Error(), http.StatusBadRequest)
	case errors.Is(err, gorm.ErrRecordNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.As(err, &ve):
		http.Error(w, ve.Message, http.StatusUnprocessableEntity)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
