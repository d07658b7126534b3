package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SalesOrder carries the manufactured-serial ledger used to allocate
// serials onto delivery notes raised against the order.
type SalesOrder struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber  string    `gorm:"column:order_number;size:140;uniqueIndex;not null" json:"orderNumber"`
	Customer     string    `gorm:"column:customer;size:255;not null"                 json:"customer"`
	SerialsAdded bool      `gorm:"column:serials_added;default:false"                json:"serialsAdded"`

	ManufacturedSerials []ManufacturedSerial `gorm:"foreignKey:SalesOrderID" json:"manufacturedSerials,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index"          json:"-"`
}

// ManufacturedSerial is one append-only ledger row recording that a serial
// was produced against a sales order. The composite unique index makes a
// duplicate (order, serial, item) insert fail at the database instead of
// relying on a check-then-insert.
//
// Consumed is flipped atomically at delivery-note submission so the same
// serial cannot be allocated to two delivery notes against one order.
type ManufacturedSerial struct {
	ID                uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SalesOrderID      uuid.UUID  `gorm:"type:uuid;index;not null;uniqueIndex:ux_mfg_order_serial_item" json:"salesOrderId"`
	SerialNo          string     `gorm:"column:serial_no;size:140;not null;uniqueIndex:ux_mfg_order_serial_item" json:"serialNo"`
	ItemCode          string     `gorm:"column:item_code;size:140;not null;uniqueIndex:ux_mfg_order_serial_item" json:"itemCode"`
	ManufacturingDate JSONTime   `gorm:"column:manufacturing_date;not null" json:"manufacturingDate"`
	Consumed          bool       `gorm:"column:consumed;default:false"      json:"consumed"`
	ConsumedBy        *uuid.UUID `gorm:"column:consumed_by;type:uuid"       json:"consumedBy,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}
