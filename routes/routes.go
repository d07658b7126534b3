package routes

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"qonevo.in/fieldops/handlers"
	"qonevo.in/fieldops/middleware"
	"qonevo.in/fieldops/models"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/register", handlers.Register).Methods("POST")
	r.HandleFunc("/login", handlers.Login).Methods("POST")
	r.HandleFunc("/health", handleHealth).Methods("GET")
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir("./uploads"))),
	)

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	api.HandleFunc("/profile", handlers.Profile).Methods("GET")
	api.HandleFunc("/files", handlers.UploadFile).Methods("POST")

	// Catalog
	api.HandleFunc("/items", handlers.GetAllItems).Methods("GET")
	api.HandleFunc("/items/{itemCode}", handlers.GetItem).Methods("GET")

	// Serial numbers and barcodes
	api.HandleFunc("/serials", handlers.GetAllSerialNumbers).Methods("GET")
	api.HandleFunc("/serials", handlers.CreateSerialNumber).Methods("POST")
	api.HandleFunc("/serials/{serialNo}", handlers.GetSerialNumber).Methods("GET")
	api.HandleFunc("/serials/{serialNo}/barcode", handlers.RegenerateBarcode).Methods("POST")
	api.HandleFunc("/barcodes/bulk", handlers.BulkGenerateBarcodes).Methods("POST")
	api.HandleFunc("/barcodes/scan", handlers.ScanBarcode).Methods("POST")

	// Sales orders and manufacturing
	api.HandleFunc("/sales-orders", handlers.GetAllSalesOrders).Methods("GET")
	api.HandleFunc("/sales-orders", handlers.CreateSalesOrder).Methods("POST")
	api.HandleFunc("/sales-orders/{id}", handlers.GetSalesOrder).Methods("GET")
	api.HandleFunc("/production-batches", handlers.RecordProductionBatch).Methods("POST")

	// Delivery notes
	api.HandleFunc("/delivery-notes", handlers.GetAllDeliveryNotes).Methods("GET")
	api.HandleFunc("/delivery-notes", handlers.CreateDeliveryNote).Methods("POST")
	api.HandleFunc("/delivery-notes/{id}", handlers.GetDeliveryNote).Methods("GET")
	api.HandleFunc("/delivery-notes/{id}/allocate", handlers.AllocateDeliveryNote).Methods("POST")
	api.HandleFunc("/delivery-notes/{id}/submit", handlers.SubmitDeliveryNote).Methods("POST")
	api.HandleFunc("/delivery-notes/{id}/cancel", handlers.CancelDeliveryNote).Methods("POST")

	// Installation jobs
	api.HandleFunc("/installation-jobs", handlers.GetAllInstallationJobs).Methods("GET")
	api.HandleFunc("/installation-jobs/{id}", handlers.GetInstallationJob).Methods("GET")
	api.HandleFunc("/installation-jobs/{id}/items", handlers.UpdateInstallationJobItems).Methods("PUT")
	api.HandleFunc("/installation-jobs/{id}/photos", handlers.AddInstallationJobPhoto).Methods("POST")
	api.HandleFunc("/installation-jobs/{id}/signature", handlers.SetCustomerSignature).Methods("POST")
	api.Handle("/installation-jobs/{id}/start",
		middleware.RequireRole([]string{models.RoleInstaller},
			http.HandlerFunc(handlers.StartInstallationJob))).Methods("POST")
	api.Handle("/installation-jobs/{id}/complete",
		middleware.RequireRole([]string{models.RoleInstaller},
			http.HandlerFunc(handlers.CompleteInstallationJob))).Methods("POST")
	api.Handle("/installation-jobs/{id}/verify",
		middleware.RequireRole([]string{models.RoleOperations},
			http.HandlerFunc(handlers.VerifyInstallationJob))).Methods("POST")
	api.Handle("/installation-jobs/{id}/close",
		middleware.RequireRole([]string{models.RoleOperations},
			http.HandlerFunc(handlers.CloseInstallationJob))).Methods("POST")

	// Warranty records
	api.HandleFunc("/warranties", handlers.GetAllWarranties).Methods("GET")
	api.HandleFunc("/warranties/status", handlers.GetWarrantyStatus).Methods("GET")
	api.HandleFunc("/warranties/{id}", handlers.GetWarranty).Methods("GET")
	api.HandleFunc("/warranties/{id}/extend", handlers.ExtendWarranty).Methods("POST")
	api.Handle("/warranties/{id}/cancel",
		middleware.RequireRole([]string{models.RoleOperations},
			http.HandlerFunc(handlers.CancelWarranty))).Methods("POST")

	// Exports
	api.HandleFunc("/exports/installation-jobs", handlers.ExportInstallationJobs).Methods("GET")
	api.HandleFunc("/exports/warranties", handlers.ExportWarranties).Methods("GET")

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
