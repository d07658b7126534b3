package models

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeEndDate(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		period int
		end    time.Time
	}{
		{"default three years", date(2026, 1, 15), DefaultWarrantyYears, date(2029, 1, 15)},
		{"one year", date(2026, 6, 1), 1, date(2027, 6, 1)},
		{"extended to five years", date(2024, 3, 10), 5, date(2029, 3, 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WarrantyRecord{StartDate: tt.start, WarrantyPeriod: tt.period}
			w.ComputeEndDate()
			if !w.EndDate.Equal(tt.end) {
				t.Errorf("EndDate = %v, expected %v", w.EndDate, tt.end)
			}
		})
	}
}

func TestRefreshStatus(t *testing.T) {
	today := date(2026, 9, 1)

	tests := []struct {
		name   string
		status string
		end    time.Time
		want   string
	}{
		{"active stays active", WarrantyActive, date(2028, 1, 1), WarrantyActive},
		{"lapsed becomes expired", WarrantyActive, date(2026, 8, 31), WarrantyExpired},
		{"ends today stays active", WarrantyActive, today, WarrantyActive},
		{"extension revives expired", WarrantyExpired, date(2027, 1, 1), WarrantyActive},
		{"cancelled never recomputed", WarrantyCancelled, date(2020, 1, 1), WarrantyCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WarrantyRecord{Status: tt.status, EndDate: tt.end}
			w.RefreshStatus(today)
			if w.Status != tt.want {
				t.Errorf("status = %s, expected %s", w.Status, tt.want)
			}
		})
	}
}

func TestWarrantyValidate(t *testing.T) {
	w := WarrantyRecord{
		SerialNo:       "SN-001",
		ItemCode:       "PUMP-01",
		StartDate:      time.Now().Truncate(24 * time.Hour),
		WarrantyPeriod: DefaultWarrantyYears,
		Status:         WarrantyActive,
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if !w.EndDate.Equal(w.StartDate.AddDate(DefaultWarrantyYears, 0, 0)) {
		t.Errorf("Validate() did not derive the end date, got %v", w.EndDate)
	}
	if w.Status != WarrantyActive {
		t.Errorf("future-dated warranty flipped to %s", w.Status)
	}
}

func TestWarrantyValidateRejectsBadPeriod(t *testing.T) {
	for _, period := range []int{0, -1} {
		w := WarrantyRecord{StartDate: date(2026, 1, 1), WarrantyPeriod: period}
		if err := w.Validate(); err == nil {
			t.Errorf("period %d accepted", period)
		}
	}
}

func TestWarrantyExtension(t *testing.T) {
	// an extension bumps the period and rederives the end date
	w := WarrantyRecord{
		StartDate:      date(2026, 1, 15),
		WarrantyPeriod: DefaultWarrantyYears,
		Status:         WarrantyActive,
	}
	w.ComputeEndDate()

	w.WarrantyPeriod += 2
	w.ComputeEndDate()

	if !w.EndDate.Equal(date(2031, 1, 15)) {
		t.Errorf("extended end date = %v, expected 2031-01-15", w.EndDate)
	}
}
