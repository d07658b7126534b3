package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"qonevo.in/fieldops/config"
	"qonevo.in/fieldops/models"
)

type createSalesOrderReq struct {
	OrderNumber string `json:"orderNumber"`
	Customer    string `json:"customer"`
}

func CreateSalesOrder(w http.ResponseWriter, r *http.Request) {
	var req createSalesOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.OrderNumber == "" || req.Customer == "" {
		writeError(w, models.NewValidationError("orderNumber and customer are required"))
		return
	}

	order := models.SalesOrder{OrderNumber: req.OrderNumber, Customer: req.Customer}
	if err := config.DB.Create(&order).Error; err != nil {
		http.Error(w, "db error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, order)
}

func GetSalesOrder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var order models.SalesOrder
	if err := config.DB.Preload("ManufacturedSerials").First(&order, "id = ?", id).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func GetAllSalesOrders(w http.ResponseWriter, r *http.Request) {
	params, err := models.ParseReportParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	service := models.NewReportService(config.DB, models.SalesOrder{})
	response, err := service.GetReport(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

type productionBatchReq struct {
	SalesOrderID uuid.UUID        `json:"salesOrderId"`
	PostingDate  *models.JSONTime `json:"postingDate"`
	Serials      []struct {
		ItemCode string `json:"itemCode"`
		SerialNo string `json:"serialNo"`
	} `json:"serials"`
}

// RecordProductionBatch is the "stock production batch recorded" trigger.
// Each produced serial is appended to the order's manufactured-serial
// ledger (duplicates skipped via the unique index) and registered as a
// SerialNumber. Barcode stamping runs after commit: a stamping failure is
// logged, never a reason to lose the ledger entries.
func RecordProductionBatch(w http.ResponseWriter, r *http.Request) {
	var req productionBatchReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if len(req.Serials) == 0 {
		writeError(w, models.NewValidationError("at least one serial is required"))
		return
	}

	postingDate := models.JSONTime(time.Now())
	if req.PostingDate != nil {
		postingDate = *req.PostingDate
	}

	var added, skipped int
	var createdSerials []models.SerialNumber

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var order models.SalesOrder
		if err := tx.First(&order, "id = ?", req.SalesOrderID).Error; err != nil {
			return err
		}

		for _, s := range req.Serials {
			if s.ItemCode == "" || s.SerialNo == "" {
				return models.NewValidationError("itemCode and serialNo are required for every produced serial")
			}

			entry := models.ManufacturedSerial{
				SalesOrderID:      order.ID,
				SerialNo:          s.SerialNo,
				ItemCode:          s.ItemCode,
				ManufacturingDate: postingDate,
			}
			res := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{
					{Name: "sales_order_id"}, {Name: "serial_no"}, {Name: "item_code"},
				},
				DoNothing: true,
			}).Create(&entry)
			if res.Error != nil {
				return fmt.Errorf("ledger append for serial %s: %w", s.SerialNo, res.Error)
			}
			if res.RowsAffected == 0 {
				skipped++
				continue
			}
			added++

			serial := models.SerialNumber{SerialNo: s.SerialNo, ItemCode: s.ItemCode}
			res = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "serial_no"}},
				DoNothing: true,
			}).Create(&serial)
			if res.Error != nil {
				return fmt.Errorf("create serial %s: %w", s.SerialNo, res.Error)
			}
			if res.RowsAffected > 0 {
				createdSerials = append(createdSerials, serial)
			}
		}

		if !order.SerialsAdded {
			return tx.Model(&order).Update("serials_added", true).Error
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	// Post-commit side effect, deliberately non-fatal.
	for i := range createdSerials {
		OnSerialCreated(config.DB, &createdSerials[i])
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"added":   added,
		"skipped": skipped,
		"serials": len(createdSerials),
	})
}

func GetAllItems(w http.ResponseWriter, r *http.Request) {
	params, err := models.ParseReportParams(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := params.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	service := models.NewReportService(config.DB, models.Item{})
	response, err := service.GetReport(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, response)
}

func GetItem(w http.ResponseWriter, r *http.Request) {
	itemCode := mux.Vars(r)["itemCode"]

	var item models.Item
	if err := config.DB.Where("item_code = ?", itemCode).First(&item).Error; err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}
