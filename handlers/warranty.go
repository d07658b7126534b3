package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"qonevo.in/fieldops/config"
	"qonevo.in/fieldops/models"
)

// IssueResult is the aggregate outcome of a warranty issuance pass.
type IssueResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// WarrantyLedger creates and maintains warranty records. Issuance is
// idempotent per (serial, job): the unique index plus an ON CONFLICT DO
// NOTHING insert means a re-run counts the existing record as skipped
// instead of racing a check against an insert.
type WarrantyLedger struct {
	db *gorm.DB
}

func NewWarrantyLedger(db *gorm.DB) *WarrantyLedger {
	return &WarrantyLedger{db: db}
}

// Issue creates one warranty per installed item on the job. Start date is
// the job's installation date, falling back to today; coverage defaults
// to three years. Created + Skipped always equals the installed count.
func (l *WarrantyLedger) Issue(job *models.InstallationJob) (IssueResult, error) {
	var result IssueResult

	start := time.Now()
	if job.InstallationDate != nil && !job.InstallationDate.IsZero() {
		start = job.InstallationDate.Time()
	}
	start = start.Truncate(24 * time.Hour)

	for i := range job.Items {
		item := &job.Items[i]
		if item.Installed == nil || !*item.Installed {
			continue
		}

		record := models.WarrantyRecord{
			SerialNo:          item.SerialNo,
			InstallationJobID: job.ID,
			ItemCode:          item.ItemCode,
			Customer:          job.Customer,
			SalesOrderID:      job.SalesOrderID,
			DeliveryNoteID:    &job.DeliveryNoteID,
			StartDate:         start,
			WarrantyPeriod:    models.DefaultWarrantyYears,
			Status:            models.WarrantyActive,
		}
		record.ComputeEndDate()

		res := l.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "serial_no"}, {Name: "installation_job_id"}},
			DoNothing: true,
		}).Create(&record)
		if res.Error != nil {
			return result, fmt.Errorf("issue warranty for serial %s: %w", item.SerialNo, res.Error)
		}
		if res.RowsAffected > 0 {
			result.Created++
		} else {
			result.Skipped++
		}
	}
	return result, nil
}

// Extend lengthens an active warranty and recomputes its end date. Only
// Active records can be extended; an extension that pushes the end date
// past today is reflected immediately by the status recompute on save.
func (l *WarrantyLedger) Extend(recordID string, additionalYears int) (*models.WarrantyRecord, error) {
	if additionalYears <= 0 {
		return nil, models.NewValidationError("additional years must be positive")
	}

	var record models.WarrantyRecord
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, "id = ?", recordID).Error; err != nil {
			return err
		}
		if record.Status != models.WarrantyActive {
			return models.NewValidationError("only active warranties can be extended")
		}
		record.WarrantyPeriod += additionalYears
		record.ComputeEndDate()
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Cancel is the explicit, non-derived state change.
func (l *WarrantyLedger) Cancel(recordID string) (*models.WarrantyRecord, error) {
	var record models.WarrantyRecord
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&record, "id = ?", recordID).Error; err != nil {
			return err
		}
		if record.Status == models.WarrantyCancelled {
			return models.NewValidationError("warranty is already cancelled")
		}
		record.Status = models.WarrantyCancelled
		return tx.Save(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ---- HTTP layer ----

type extendWarrantyReq struct {
	AdditionalYears int `json:"additionalYears"`
}

func ExtendWarranty(w http.ResponseWriter, r *http.Request) {
	var req extendWarrantyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	record, err := NewWarrantyLedger(config.DB).Extend(mux.Vars(r)["id"], req.AdditionalYears)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func CancelWarranty(w http.ResponseWriter, r *http.Request) {
	record, err := NewWarrantyLedger(config.DB).Cancel(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func GetWarranty(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var record models.WarrantyRecord
	if err := config.DB.First(&record, "id = ?", id).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func GetAllWarranties(w http.ResponseWriter, r *http.Request) {
	params, err := models.ParseReportParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	service := models.NewReportService(config.DB, models.WarrantyRecord{})
	response, err := service.GetReport(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// GetWarrantyStatus answers "is this serial under active coverage".
func GetWarrantyStatus(w http.ResponseWriter, r *http.Request) {
	serialNo := r.URL.Query().Get("serialNo")
	if serialNo == "" {
		http.Error(w, "serialNo parameter required", http.StatusBadRequest)
		return
	}

	var record models.WarrantyRecord
	err := config.DB.
		Where("serial_no = ? AND status <> ?", serialNo, models.WarrantyCancelled).
		Order("end_date desc").
		First(&record).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			writeJSON(w, http.StatusOK, map[string]interface{}{"hasWarranty": false})
			return
		}
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hasWarranty": hasActiveCoverage(&record, time.Now()),
		"warranty":    record,
	})
}

// hasActiveCoverage recomputes the record's status for today before
// answering. The stored status only refreshes on save, so coverage that
// lapsed since the last write would otherwise still read as active.
func hasActiveCoverage(record *models.WarrantyRecord, now time.Time) bool {
	record.RefreshStatus(now)
	return record.Status == models.WarrantyActive
}
