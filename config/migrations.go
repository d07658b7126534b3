package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"qonevo.in/fieldops/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20250812_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.User{}, &models.Item{}, &models.SerialNumber{},
					&models.SalesOrder{}, &models.ManufacturedSerial{},
					&models.DeliveryNote{}, &models.DeliveryNoteItem{})
			},
		},
		{
			ID: "20250812_create_installation_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.InstallationJob{}, &models.InstallationJobItem{},
					&models.WarrantyRecord{})
			},
		},
		{
			// The AutoMigrate unique indexes above are the real guards for
			// warranty and ledger idempotence; this keeps them present on
			// databases created before the tags existed.
			ID: "20250819_enforce_uniqueness",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_warranty_serial_job
					ON warranty_records (serial_no, installation_job_id)`).Error; err != nil {
					return err
				}
				return tx.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS ux_mfg_order_serial_item
					ON manufactured_serials (sales_order_id, serial_no, item_code)`).Error
			},
		},
		{
			ID: "20250826_add_consumed_to_manufactured_serials",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.Exec(`ALTER TABLE manufactured_serials
					ADD COLUMN IF NOT EXISTS consumed boolean DEFAULT false`).Error; err != nil {
					return err
				}
				return tx.Exec(`ALTER TABLE manufactured_serials
					ADD COLUMN IF NOT EXISTS consumed_by uuid`).Error
			},
		},
	})

	return m.Migrate()
}
