package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"qonevo.in/fieldops/config"
	"qonevo.in/fieldops/models"
)

type createDeliveryNoteReq struct {
	NoteNumber   string           `json:"noteNumber"`
	SalesOrderID *uuid.UUID       `json:"salesOrderId"`
	Customer     string           `json:"customer"`
	PostingDate  *models.JSONTime `json:"postingDate"`
	Items        []struct {
		ItemCode  string   `json:"itemCode"`
		Qty       int      `json:"qty"`
		SerialNos []string `json:"serialNos"`
	} `json:"items"`
}

func CreateDeliveryNote(w http.ResponseWriter, r *http.Request) {
	var req createDeliveryNoteReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.NoteNumber == "" || req.Customer == "" {
		writeError(w, models.NewValidationError("noteNumber and customer are required"))
		return
	}

	note := models.DeliveryNote{
		NoteNumber:   req.NoteNumber,
		SalesOrderID: req.SalesOrderID,
		Customer:     req.Customer,
		Status:       models.DeliveryNoteDraft,
		PostingDate:  models.JSONTime(time.Now()),
	}
	if req.PostingDate != nil {
		note.PostingDate = *req.PostingDate
	}
	for _, line := range req.Items {
		if line.Qty <= 0 {
			writeError(w, models.NewValidationError("qty must be positive for item %s", line.ItemCode))
			return
		}
		if len(line.SerialNos) > line.Qty {
			writeError(w, models.NewValidationError(
				"item %s carries %d serial numbers for qty %d", line.ItemCode, len(line.SerialNos), line.Qty))
			return
		}
		note.Items = append(note.Items, models.DeliveryNoteItem{
			ItemCode:  line.ItemCode,
			Qty:       line.Qty,
			SerialNos: line.SerialNos,
		})
	}

	if err := config.DB.Create(&note).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func GetDeliveryNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var note models.DeliveryNote
	if err := config.DB.Preload("Items").First(&note, "id = ?", id).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func GetAllDeliveryNotes(w http.ResponseWriter, r *http.Request) {
	params, err := models.ParseReportParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	service := models.NewReportService(config.DB, models.DeliveryNote{})
	response, err := service.GetReport(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

type allocateResp struct {
	Results  map[uuid.UUID]AllocationResult `json:"results"`
	Warnings []string                       `json:"warnings,omitempty"`
}

// AllocateDeliveryNote fills the note's lines with serials from the sales
// order's manufactured-serial ledger. Shortfalls are warnings, never
// errors: the note keeps whatever could be allocated.
func AllocateDeliveryNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var note models.DeliveryNote
	if err := config.DB.Preload("Items").First(&note, "id = ?", id).Error; err != nil {
		writeError(w, err)
		return
	}
	if note.Status != models.DeliveryNoteDraft {
		writeError(w, models.NewValidationError("only draft delivery notes can be allocated"))
		return
	}
	if note.SalesOrderID == nil {
		writeError(w, models.NewValidationError("delivery note has no sales order to allocate from"))
		return
	}

	var entries []models.ManufacturedSerial
	if err := config.DB.
		Where("sales_order_id = ? AND consumed = ?", *note.SalesOrderID, false).
		Order("created_at, id").
		Find(&entries).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	results := AllocateLines(BuildSerialPool(entries), note.Items)
	changed, warnings := applyAllocations(note.Items, results)

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		for _, line := range changed {
			if err := tx.Model(line).Update("serial_nos", line.SerialNos).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, allocateResp{Results: results, Warnings: warnings})
}

// applyAllocations writes allocation results onto the note's lines and
// collects shortfall warnings. Lines with no result or a None outcome
// keep their manual serials.
func applyAllocations(items []models.DeliveryNoteItem, results map[uuid.UUID]AllocationResult) ([]*models.DeliveryNoteItem, []string) {
	var changed []*models.DeliveryNoteItem
	var warnings []string
	for i := range items {
		line := &items[i]
		result, ok := results[line.ID]
		if !ok || result.Outcome == AllocationNone {
			continue
		}
		line.SerialNos = result.Serials
		changed = append(changed, line)
		if result.Outcome == AllocationPartial {
			warnings = append(warnings,
				fmt.Sprintf("only %d of %d serial numbers available for item %s",
					len(result.Serials), line.Qty, line.ItemCode))
		}
	}
	return changed, warnings
}

// SubmitDeliveryNote submits the note: allocated serials are marked
// consumed in the ledger and, when any line carries serials, an
// installation job is created with one row per serial. Everything runs in
// one transaction so a failure leaves the note in Draft.
func SubmitDeliveryNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var job *models.InstallationJob
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var note models.DeliveryNote
		if err := tx.Preload("Items").First(&note, "id = ?", id).Error; err != nil {
			return err
		}
		if note.Status != models.DeliveryNoteDraft {
			return models.NewValidationError("only draft delivery notes can be submitted")
		}

		if err := tx.Model(&note).Update("status", models.DeliveryNoteSubmitted).Error; err != nil {
			return err
		}

		if note.SalesOrderID != nil {
			if err := consumeLedgerSerials(tx, &note); err != nil {
				return err
			}
		}

		created, err := createInstallationJob(tx, &note)
		if err != nil {
			return err
		}
		job = created
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := map[string]interface{}{"status": models.DeliveryNoteSubmitted}
	if job != nil {
		resp["installationJob"] = job
	}
	writeJSON(w, http.StatusOK, resp)
}

// consumeLedgerSerials moves the serials on the note's lines out of the
// available pool, atomically with submission, so they cannot be allocated
// to another delivery note against the same order.
func consumeLedgerSerials(tx *gorm.DB, note *models.DeliveryNote) error {
	for _, line := range note.Items {
		if len(line.SerialNos) == 0 {
			continue
		}
		res := tx.Model(&models.ManufacturedSerial{}).
			Where("sales_order_id = ? AND item_code = ? AND serial_no IN ? AND consumed = ?",
				*note.SalesOrderID, line.ItemCode, []string(line.SerialNos), false).
			Updates(map[string]interface{}{"consumed": true, "consumed_by": note.ID})
		if res.Error != nil {
			return fmt.Errorf("consume serials for item %s: %w", line.ItemCode, res.Error)
		}
		if err := checkConsumedCount(line.ItemCode, len(line.SerialNos), res.RowsAffected); err != nil {
			return err
		}
	}
	return nil
}

// checkConsumedCount verifies every serial on the line was still
// unconsumed when the update ran. A shortfall means another delivery note
// consumed some of them after this one was allocated, so the submit must
// roll back and the user re-allocate.
func checkConsumedCount(itemCode string, wanted int, affected int64) error {
	if affected == int64(wanted) {
		return nil
	}
	return models.NewValidationError(
		"%d of %d serial numbers for item %s were already delivered on another note, re-allocate before submitting",
		wanted-int(affected), wanted, itemCode)
}

// createInstallationJob creates the Scheduled job for a submitted note,
// one item row per assigned serial. Notes without serials get no job, and
// a note never gets a second active job.
func createInstallationJob(tx *gorm.DB, note *models.DeliveryNote) (*models.InstallationJob, error) {
	var items []models.InstallationJobItem
	for _, line := range note.Items {
		for _, serialNo := range line.SerialNos {
			items = append(items, models.InstallationJobItem{
				ItemCode:           line.ItemCode,
				SerialNo:           serialNo,
				InstallationStatus: models.ItemStatusPending,
			})
		}
	}
	if len(items) == 0 {
		return nil, nil
	}

	var existing int64
	if err := tx.Model(&models.InstallationJob{}).
		Where("delivery_note_id = ? AND status <> ?", note.ID, models.JobCancelled).
		Count(&existing).Error; err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, nil
	}

	job := models.InstallationJob{
		SalesOrderID:   note.SalesOrderID,
		DeliveryNoteID: note.ID,
		Customer:       note.Customer,
		Status:         models.JobScheduled,
		Items:          items,
	}
	if err := tx.Create(&job).Error; err != nil {
		return nil, fmt.Errorf("create installation job: %w", err)
	}
	return &job, nil
}

// CancelDeliveryNote cancels the note and cascades Cancelled onto every
// linked job that has not already reached a terminal state.
func CancelDeliveryNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var cancelled int64
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var note models.DeliveryNote
		if err := tx.First(&note, "id = ?", id).Error; err != nil {
			return err
		}
		if note.Status == models.DeliveryNoteCancelled {
			return models.NewValidationError("delivery note is already cancelled")
		}
		if err := tx.Model(&note).Update("status", models.DeliveryNoteCancelled).Error; err != nil {
			return err
		}

		res := tx.Model(&models.InstallationJob{}).
			Where("delivery_note_id = ? AND status NOT IN ?", note.ID,
				[]string{models.JobClosed, models.JobCancelled}).
			Update("status", models.JobCancelled)
		if res.Error != nil {
			return res.Error
		}
		cancelled = res.RowsAffected
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        models.DeliveryNoteCancelled,
		"jobsCancelled": cancelled,
	})
}
