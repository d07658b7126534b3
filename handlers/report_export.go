package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
	"qonevo.in/fieldops/config"
	"qonevo.in/fieldops/models"
)

// ExportInstallationJobs downloads the installation-job register as an
// Excel workbook, optionally filtered by ?status=.
func ExportInstallationJobs(w http.ResponseWriter, r *http.Request) {
	query := config.DB.Model(&models.InstallationJob{}).Order("created_at desc")
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var jobs []models.InstallationJob
	if err := query.Find(&jobs).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	headers := []string{"Job ID", "Customer", "Status", "Installation Date",
		"Total Items", "Installed", "Not Installed", "Completion %"}
	rows := make([][]interface{}, 0, len(jobs))
	for _, job := range jobs {
		installDate := ""
		if job.InstallationDate != nil && !job.InstallationDate.IsZero() {
			installDate = job.InstallationDate.Time().Format("2006-01-02")
		}
		rows = append(rows, []interface{}{
			job.ID.String(), job.Customer, job.Status, installDate,
			job.TotalItems, job.InstalledCount, job.NotInstalledCount,
			fmt.Sprintf("%.2f", job.CompletionPercentage),
		})
	}

	writeExcel(w, "Installation Jobs", headers, rows)
}

// ExportWarranties downloads the warranty register as an Excel workbook.
func ExportWarranties(w http.ResponseWriter, r *http.Request) {
	query := config.DB.Model(&models.WarrantyRecord{}).Order("created_at desc")
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var records []models.WarrantyRecord
	if err := query.Find(&records).Error; err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	headers := []string{"Serial No", "Item", "Customer", "Start Date",
		"End Date", "Period (years)", "Status"}
	rows := make([][]interface{}, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []interface{}{
			rec.SerialNo, rec.ItemCode, rec.Customer,
			rec.StartDate.Format("2006-01-02"), rec.EndDate.Format("2006-01-02"),
			rec.WarrantyPeriod, rec.Status,
		})
	}

	writeExcel(w, "Warranty Records", headers, rows)
}

// writeExcel builds a styled workbook and streams it as a download.
func writeExcel(w http.ResponseWriter, title string, headers []string, rows [][]interface{}) {
	f := excelize.NewFile()
	sheetName := "Report"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		http.Error(w, "failed to generate Excel file", http.StatusInternalServerError)
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	f.SetCellValue(sheetName, "A1", title)
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)
	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	for colIdx, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 4)
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
		col, _ := excelize.ColumnNumberToName(colIdx + 1)
		f.SetColWidth(sheetName, col, col, 20)
	}

	dataStyle, _ := f.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "CCCCCC", Style: 1},
			{Type: "right", Color: "CCCCCC", Style: 1},
			{Type: "top", Color: "CCCCCC", Style: 1},
			{Type: "bottom", Color: "CCCCCC", Style: 1},
		},
	})
	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+5)
			f.SetCellValue(sheetName, cell, value)
			f.SetCellStyle(sheetName, cell, cell, dataStyle)
		}
	}

	buffer, err := f.WriteToBuffer()
	if err != nil {
		http.Error(w, "failed to write Excel file", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("%s_%s.xlsx", title, time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buffer.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buffer.Bytes())
}
