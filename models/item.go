package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Item is read-only reference data for the serial/installation flows.
type Item struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ItemCode           string    `gorm:"column:item_code;size:140;uniqueIndex;not null" json:"itemCode"`
	ItemName           string    `gorm:"column:item_name;size:255;not null"             json:"itemName"`
	DefaultModelNumber string    `gorm:"column:default_model_number;size:140"           json:"defaultModelNumber"`
	ItemGroup          string    `gorm:"column:item_group;size:140"                     json:"itemGroup"`
	Brand              string    `gorm:"column:brand;size:140"                          json:"brand,omitempty"`
	Description        *string   `gorm:"column:description"                             json:"description,omitempty"`
	StockUOM           string    `gorm:"column:stock_uom;size:50;default:Nos"           json:"stockUom"`
	StandardRate       float64   `gorm:"column:standard_rate;default:0"                 json:"standardRate"`
	IsStockItem        bool      `gorm:"column:is_stock_item;default:true"              json:"isStockItem"`
	HasSerialNo        bool      `gorm:"column:has_serial_no;default:false"             json:"hasSerialNo"`

	// Free-form ERP attributes (size, rating, finish, ...) carried as-is.
	Attributes datatypes.JSON `gorm:"column:attributes;type:jsonb" json:"attributes,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index"          json:"-"`
}
