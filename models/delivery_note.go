package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Delivery note lifecycle states.
const (
	DeliveryNoteDraft     = "Draft"
	DeliveryNoteSubmitted = "Submitted"
	DeliveryNoteCancelled = "Cancelled"
)

type DeliveryNote struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	NoteNumber   string     `gorm:"column:note_number;size:140;uniqueIndex;not null" json:"noteNumber"`
	SalesOrderID *uuid.UUID `gorm:"type:uuid;index"                                  json:"salesOrderId,omitempty"`
	SalesOrder   *SalesOrder `gorm:"foreignKey:SalesOrderID"                         json:"salesOrder,omitempty"`
	Customer     string     `gorm:"column:customer;size:255;not null"                json:"customer"`
	Status       string     `gorm:"column:status;size:30;default:Draft"              json:"status"`
	PostingDate  JSONTime   `gorm:"column:posting_date"                              json:"postingDate"`

	Items []DeliveryNoteItem `gorm:"foreignKey:DeliveryNoteID;constraint:OnDelete:CASCADE" json:"items,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index"          json:"-"`
}

// DeliveryNoteItem is one line on a delivery note. SerialNos holds the
// serials allocated (or manually entered) for the line; it never exceeds Qty.
type DeliveryNoteItem struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DeliveryNoteID uuid.UUID      `gorm:"type:uuid;index;not null"            json:"deliveryNoteId"`
	ItemCode       string         `gorm:"column:item_code;size:140;not null"  json:"itemCode"`
	Qty            int            `gorm:"column:qty;not null"                 json:"qty"`
	SerialNos      pq.StringArray `gorm:"column:serial_nos;type:text[]"       json:"serialNos"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}
