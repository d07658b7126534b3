package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"qonevo.in/fieldops/config"
	"qonevo.in/fieldops/models"
	"qonevo.in/fieldops/pkg/barcode"
)

// StampBarcode derives the barcode payload for a serial and persists it
// together with the generated flag in one conditional update. The
// barcode_generated guard in the WHERE clause makes the stamp at-most-once
// even when the creation event fires twice for the same serial.
func StampBarcode(db *gorm.DB, serial *models.SerialNumber) error {
	var item models.Item
	if err := db.Where("item_code = ?", serial.ItemCode).First(&item).Error; err != nil {
		return fmt.Errorf("item lookup for serial %s: %w", serial.SerialNo, err)
	}

	model := serial.ModelNumber
	if model == "" {
		model = item.DefaultModelNumber
	}
	payload := barcode.Encode(item.ItemCode, model, serial.SerialNo)

	res := db.Model(&models.SerialNumber{}).
		Where("id = ? AND barcode_generated = ?", serial.ID, false).
		Updates(map[string]interface{}{
			"barcode_string":    payload,
			"barcode_generated": true,
			"model_number":      model,
		})
	if res.Error != nil {
		return fmt.Errorf("stamp barcode for serial %s: %w", serial.SerialNo, res.Error)
	}
	if res.RowsAffected > 0 {
		serial.BarcodeString = &payload
		serial.BarcodeGenerated = true
		serial.ModelNumber = model
	}
	return nil
}

// OnSerialCreated reacts to a new serial number. A failed item lookup is
// logged and swallowed so it never blocks the save that created the
// serial; the flag stays false and a later retry can succeed.
func OnSerialCreated(db *gorm.DB, serial *models.SerialNumber) {
	if serial.BarcodeGenerated {
		return
	}
	if err := StampBarcode(db, serial); err != nil {
		log.Printf("barcode generation failed for serial %s: %v", serial.SerialNo, err)
	}
}

type createSerialReq struct {
	SerialNo    string `json:"serialNo"`
	ItemCode    string `json:"itemCode"`
	ModelNumber string `json:"modelNumber"`
}

func CreateSerialNumber(w http.ResponseWriter, r *http.Request) {
	var req createSerialReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.SerialNo == "" || req.ItemCode == "" {
		writeError(w, models.NewValidationError("serialNo and itemCode are required"))
		return
	}

	serial := models.SerialNumber{
		SerialNo:    req.SerialNo,
		ItemCode:    req.ItemCode,
		ModelNumber: req.ModelNumber,
	}
	if err := config.DB.Create(&serial).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	OnSerialCreated(config.DB, &serial)
	writeJSON(w, http.StatusCreated, serial)
}

func GetSerialNumber(w http.ResponseWriter, r *http.Request) {
	serialNo := mux.Vars(r)["serialNo"]

	var serial models.SerialNumber
	if err := config.DB.Where("serial_no = ?", serialNo).First(&serial).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, serial)
}

func GetAllSerialNumbers(w http.ResponseWriter, r *http.Request) {
	params, err := models.ParseReportParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	service := models.NewReportService(config.DB, models.SerialNumber{})
	response, err := service.GetReport(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// RegenerateBarcode is the manual, user-initiated variant of the stamp.
// Unlike the creation hook it fails loudly.
func RegenerateBarcode(w http.ResponseWriter, r *http.Request) {
	serialNo := mux.Vars(r)["serialNo"]

	var serial models.SerialNumber
	if err := config.DB.Where("serial_no = ?", serialNo).First(&serial).Error; err != nil {
		writeError(w, err)
		return
	}
	if serial.BarcodeGenerated {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"serialNo":      serial.SerialNo,
			"barcodeString": serial.BarcodeString,
			"generated":     false,
			"message":       "barcode already generated",
		})
		return
	}
	if err := StampBarcode(config.DB, &serial); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"serialNo":      serial.SerialNo,
		"barcodeString": serial.BarcodeString,
		"generated":     true,
	})
}

type bulkBarcodeReq struct {
	SerialNos []string `json:"serialNos"`
}

// BulkGenerateBarcodes stamps barcodes for many serials in one call.
// Individual failures are reported per serial, not as a failed request.
func BulkGenerateBarcodes(w http.ResponseWriter, r *http.Request) {
	var req bulkBarcodeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	results := make(map[string]string, len(req.SerialNos))
	for _, serialNo := range req.SerialNos {
		var serial models.SerialNumber
		if err := config.DB.Where("serial_no = ?", serialNo).First(&serial).Error; err != nil {
			results[serialNo] = "not found"
			continue
		}
		if serial.BarcodeGenerated {
			results[serialNo] = "already generated"
			continue
		}
		if err := StampBarcode(config.DB, &serial); err != nil {
			results[serialNo] = err.Error()
			continue
		}
		results[serialNo] = "generated"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

type scanReq struct {
	Payload string `json:"payload"`
}

type scanResp struct {
	ItemCode     string      `json:"itemCode"`
	ModelNumber  string      `json:"modelNumber"`
	SerialNumber string      `json:"serialNumber"`
	Item         models.Item `json:"item"`
	Warnings     []string    `json:"warnings,omitempty"`
}

// ScanBarcode decodes a scanned payload and resolves the referenced item.
// A malformed payload is a 400; an unknown item is a 404. A model number
// that disagrees with the catalog is only a warning.
func ScanBarcode(w http.ResponseWriter, r *http.Request) {
	var req scanReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	scan, err := barcode.Decode(req.Payload)
	if err != nil {
		writeError(w, err)
		return
	}

	var item models.Item
	if err := config.DB.Where("item_code = ?", scan.ItemCode).First(&item).Error; err != nil {
		writeError(w, err)
		return
	}

	resp := scanResp{
		ItemCode:     scan.ItemCode,
		ModelNumber:  scan.ModelNumber,
		SerialNumber: scan.SerialNumber,
		Item:         item,
	}
	if scan.ModelNumber != "" && item.DefaultModelNumber != "" && scan.ModelNumber != item.DefaultModelNumber {
		resp.Warnings = append(resp.Warnings,
			fmt.Sprintf("model number mismatch for item %s: barcode has %s, catalog has %s",
				item.ItemCode, scan.ModelNumber, item.DefaultModelNumber))
	}
	writeJSON(w, http.StatusOK, resp)
}
