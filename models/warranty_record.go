package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Warranty states. Active and Expired are derived from the end date on
// every save; Cancelled is only ever set explicitly.
const (
	WarrantyActive    = "Active"
	WarrantyExpired   = "Expired"
	WarrantyCancelled = "Cancelled"
)

// DefaultWarrantyYears is the standard coverage period issued at
// verification.
const DefaultWarrantyYears = 3

// WarrantyRecord is time-bounded coverage for one serial, tied to the
// installation job that activated it. The unique index on
// (serial_no, installation_job_id) makes issuance idempotent at the
// database rather than through a check-then-insert.
type WarrantyRecord struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SerialNo          string     `gorm:"column:serial_no;size:140;not null;uniqueIndex:ux_warranty_serial_job" json:"serialNo"`
	InstallationJobID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:ux_warranty_serial_job" json:"installationJobId"`
	ItemCode          string     `gorm:"column:item_code;size:140;not null" json:"itemCode"`
	Customer          string     `gorm:"column:customer;size:255"           json:"customer"`
	SalesOrderID      *uuid.UUID `gorm:"type:uuid"                          json:"salesOrderId,omitempty"`
	DeliveryNoteID    *uuid.UUID `gorm:"type:uuid"                          json:"deliveryNoteId,omitempty"`

	StartDate      time.Time `gorm:"column:start_date;type:date;not null" json:"startDate"`
	WarrantyPeriod int       `gorm:"column:warranty_period;not null"      json:"warrantyPeriod"`
	EndDate        time.Time `gorm:"column:end_date;type:date;not null"   json:"endDate"`
	Status         string    `gorm:"column:status;size:20;default:Active" json:"status"`
	WarrantyType   string    `gorm:"column:warranty_type;size:50;default:Standard" json:"warrantyType"`
	Terms          string    `gorm:"column:terms;default:'Standard warranty terms apply'" json:"terms"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index"          json:"-"`
}

// ComputeEndDate derives EndDate from the start date and period.
func (w *WarrantyRecord) ComputeEndDate() {
	w.EndDate = w.StartDate.AddDate(w.WarrantyPeriod, 0, 0)
}

// RefreshStatus flips Active/Expired from the end date. A record expired
// by date comes back to Active if an extension pushed the end date past
// today. Cancelled records are left alone.
func (w *WarrantyRecord) RefreshStatus(today time.Time) {
	if w.Status == WarrantyCancelled {
		return
	}
	day := today.Truncate(24 * time.Hour)
	switch {
	case w.EndDate.Before(day):
		w.Status = WarrantyExpired
	case w.Status == WarrantyExpired:
		w.Status = WarrantyActive
	}
}

// Validate applies the date invariants shared by every write path.
func (w *WarrantyRecord) Validate() error {
	if w.WarrantyPeriod <= 0 {
		return NewValidationError("warranty period must be at least one year")
	}
	w.ComputeEndDate()
	if !w.EndDate.After(w.StartDate) {
		return NewValidationError("end date must be after start date")
	}
	w.RefreshStatus(time.Now())
	return nil
}

func (w *WarrantyRecord) BeforeSave(tx *gorm.DB) error {
	return w.Validate()
}
