package config

import (
	"encoding/json"
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"qonevo.in/fieldops/models"
)

// SeedReferenceData creates a default admin user and a small item catalog
// so a fresh database is immediately usable. Each seeder skips silently
// when data already exists.
func SeedReferenceData() {
	SeedUsers()
	SeedItems()
}

// SeedUsers creates the default admin account.
func SeedUsers() {
	var count int64
	DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Warning: could not hash default password: %v", err)
		return
	}

	admin := models.User{
		Name:         "Administrator",
		Email:        "admin@example.com",
		Phone:        "9999999999",
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := DB.Create(&admin).Error; err != nil {
		log.Printf("Warning: could not seed admin user: %v", err)
		return
	}
	log.Println("Seeded default admin user (admin@example.com)")
}

// SeedItems creates a few serialized catalog items for demo environments.
func SeedItems() {
	var count int64
	DB.Model(&models.Item{}).Count(&count)
	if count > 0 {
		return
	}

	attrs := func(m map[string]string) datatypes.JSON {
		b, _ := json.Marshal(m)
		return datatypes.JSON(b)
	}

	items := []models.Item{
		{
			ItemCode:           "PUMP-01",
			ItemName:           "Submersible Pump 1HP",
			DefaultModelNumber: "M-100",
			ItemGroup:          "Pumps",
			StockUOM:           "Nos",
			HasSerialNo:        true,
			Attributes:         attrs(map[string]string{"power": "1HP", "phase": "single"}),
		},
		{
			ItemCode:           "PUMP-02",
			ItemName:           "Submersible Pump 2HP",
			DefaultModelNumber: "M-200",
			ItemGroup:          "Pumps",
			StockUOM:           "Nos",
			HasSerialNo:        true,
			Attributes:         attrs(map[string]string{"power": "2HP", "phase": "three"}),
		},
		{
			ItemCode:    "VALVE-01",
			ItemName:    "Gate Valve 50mm",
			ItemGroup:   "Valves",
			StockUOM:    "Nos",
			HasSerialNo: false,
		},
	}

	for _, item := range items {
		if err := DB.Create(&item).Error; err != nil {
			log.Printf("Warning: could not seed item %s: %v", item.ItemCode, err)
		}
	}
	log.Printf("Seeded %d catalog items", len(items))
}
