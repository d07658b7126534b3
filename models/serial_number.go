package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SerialNumber is one physical unit of a serialized item. The barcode
// string is derived from (item, model, serial) and is stamped at most once;
// BarcodeGenerated is never cleared after a successful stamp.
type SerialNumber struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SerialNo         string    `gorm:"column:serial_no;size:140;uniqueIndex;not null" json:"serialNo"`
	ItemCode         string    `gorm:"column:item_code;size:140;index;not null"       json:"itemCode"`
	ModelNumber      string    `gorm:"column:model_number;size:140"                   json:"modelNumber"`
	BarcodeString    *string   `gorm:"column:barcode_string;size:500"                 json:"barcodeString,omitempty"`
	BarcodeGenerated bool      `gorm:"column:barcode_generated;default:false"         json:"barcodeGenerated"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index"          json:"-"`
}
