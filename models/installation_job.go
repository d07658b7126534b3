package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Installation job lifecycle states.
const (
	JobScheduled        = "Scheduled"
	JobInProgress       = "In Progress"
	JobCompletedFull    = "Completed - Full"
	JobCompletedPartial = "Completed - Partial"
	JobVerified         = "Verified"
	JobClosed           = "Closed"
	JobCancelled        = "Cancelled"
)

// Per-row installation states.
const (
	ItemStatusPending      = "Pending"
	ItemStatusInstalled    = "Installed"
	ItemStatusNotInstalled = "Not Installed"
)

// Warranty-start decisions recorded at verification.
const (
	WarrantyStartImmediate = "Immediate"
	WarrantyStartDelay     = "Delay"
)

// InstallationJob tracks one physical installation visit derived from a
// submitted delivery note. TotalItems, InstalledCount, NotInstalledCount
// and CompletionPercentage are derived from Items on every save; the item
// list is the source of truth and the columns are never written directly.
type InstallationJob struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SalesOrderID   *uuid.UUID `gorm:"type:uuid;index"                    json:"salesOrderId,omitempty"`
	DeliveryNoteID uuid.UUID  `gorm:"type:uuid;index;not null"           json:"deliveryNoteId"`
	Customer       string     `gorm:"column:customer;size:255;not null"  json:"customer"`
	Status         string     `gorm:"column:status;size:30;default:Scheduled" json:"status"`

	InstallationDate *JSONTime `gorm:"column:installation_date" json:"installationDate,omitempty"`

	Photos            pq.StringArray `gorm:"column:photos;type:text[]"          json:"photos"`
	CustomerSignature *string        `gorm:"column:customer_signature"          json:"customerSignature,omitempty"`
	InstallerNotes    *string        `gorm:"column:installer_notes"             json:"installerNotes,omitempty"`
	OpsNotes          *string        `gorm:"column:ops_notes"                   json:"opsNotes,omitempty"`

	// Set at verification; "Delay" suppresses warranty issuance.
	WarrantyStartAction *string `gorm:"column:warranty_start_action;size:30" json:"warrantyStartAction,omitempty"`

	// Customer site coordinates and where the installer actually started.
	SiteLatitude   *float64 `gorm:"column:site_latitude"   json:"siteLatitude,omitempty"`
	SiteLongitude  *float64 `gorm:"column:site_longitude"  json:"siteLongitude,omitempty"`
	StartLatitude  *float64 `gorm:"column:start_latitude"  json:"startLatitude,omitempty"`
	StartLongitude *float64 `gorm:"column:start_longitude" json:"startLongitude,omitempty"`

	TotalItems           int     `gorm:"column:total_items;default:0"           json:"totalItems"`
	InstalledCount       int     `gorm:"column:installed_count;default:0"       json:"installedCount"`
	NotInstalledCount    int     `gorm:"column:not_installed_count;default:0"   json:"notInstalledCount"`
	CompletionPercentage float64 `gorm:"column:completion_percentage;default:0" json:"completionPercentage"`

	Items []InstallationJobItem `gorm:"foreignKey:InstallationJobID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index"          json:"-"`
}

// InstallationJobItem is one serialized unit to install on a job.
type InstallationJobItem struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InstallationJobID  uuid.UUID `gorm:"type:uuid;index;not null"             json:"installationJobId"`
	ItemCode           string    `gorm:"column:item_code;size:140;not null"   json:"itemCode"`
	SerialNo           string    `gorm:"column:serial_no;size:140;not null"   json:"serialNo"`
	Installed          *bool     `gorm:"column:installed"                     json:"installed"`
	InstallationStatus string    `gorm:"column:installation_status;size:30;default:Pending" json:"installationStatus"`
	NotInstalledReason *string   `gorm:"column:not_installed_reason"          json:"notInstalledReason,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// IsTerminal reports whether a job status admits no further transitions.
func IsTerminal(status string) bool {
	return status == JobClosed || status == JobCancelled
}

// ValidateItems enforces the per-row invariant: every row needs an item
// code and a serial; an explicitly not-installed row needs a reason; an
// installed row has any stale reason cleared. Row status always mirrors
// the installed flag (Pending when it was never set).
func (j *InstallationJob) ValidateItems() error {
	if len(j.Items) == 0 {
		return NewValidationError("at least one item must be added to the installation job")
	}
	for i := range j.Items {
		item := &j.Items[i]
		if item.ItemCode == "" {
			return NewValidationError("item code is required for all installation items")
		}
		if item.SerialNo == "" {
			return NewValidationError("serial number is required for item %s", item.ItemCode)
		}
		switch {
		case item.Installed == nil:
			item.InstallationStatus = ItemStatusPending
		case *item.Installed:
			item.InstallationStatus = ItemStatusInstalled
			item.NotInstalledReason = nil
		default:
			item.InstallationStatus = ItemStatusNotInstalled
			if item.NotInstalledReason == nil || *item.NotInstalledReason == "" {
				return NewValidationError("reason is required when item %s is not installed", item.ItemCode)
			}
		}
	}
	return nil
}

// ComputeSummary recomputes the derived counters from the item list.
func (j *InstallationJob) ComputeSummary() {
	j.TotalItems = len(j.Items)
	installed := 0
	for i := range j.Items {
		if j.Items[i].Installed != nil && *j.Items[i].Installed {
			installed++
		}
	}
	j.InstalledCount = installed
	j.NotInstalledCount = j.TotalItems - installed
	if j.TotalItems > 0 {
		j.CompletionPercentage = float64(installed) / float64(j.TotalItems) * 100
	} else {
		j.CompletionPercentage = 0
	}
}

// CompletionStatus picks the completed sub-state from the current counts.
func (j *InstallationJob) CompletionStatus() string {
	if j.InstalledCount == j.TotalItems {
		return JobCompletedFull
	}
	return JobCompletedPartial
}

// BeforeSave keeps the derived columns honest no matter which code path
// wrote the job. Jobs saved without their item list loaded keep the
// previously computed counters.
func (j *InstallationJob) BeforeSave(tx *gorm.DB) error {
	if len(j.Items) == 0 {
		return nil
	}
	if err := j.ValidateItems(); err != nil {
		return err
	}
	j.ComputeSummary()
	return nil
}
