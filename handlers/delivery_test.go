package handlers

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"

	"github.com/google/uuid"
	"qonevo.in/fieldops/models"
)

func TestCheckConsumedCount(t *testing.T) {
	tests := []struct {
		name     string
		wanted   int
		affected int64
		wantErr  bool
	}{
		{"all rows flipped", 3, 3, false},
		{"empty line", 0, 0, false},
		{"one serial gone", 3, 2, true},
		{"all serials gone", 2, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkConsumedCount("PUMP-01", tt.wanted, tt.affected)
			if (err != nil) != tt.wantErr {
				t.Errorf("checkConsumedCount() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyAllocations(t *testing.T) {
	lineA := uuid.New()
	lineB := uuid.New()
	lineC := uuid.New()
	items := []models.DeliveryNoteItem{
		{ID: lineA, ItemCode: "PUMP-01", Qty: 2, SerialNos: []string{"MANUAL-1"}},
		{ID: lineB, ItemCode: "PUMP-02", Qty: 3},
		{ID: lineC, ItemCode: "VALVE-01", Qty: 1, SerialNos: []string{"MANUAL-2"}},
	}
	results := map[uuid.UUID]AllocationResult{
		lineA: {ItemCode: "PUMP-01", Outcome: AllocationNone},
		lineB: {ItemCode: "PUMP-02", Outcome: AllocationPartial, Serials: []string{"SN-001", "SN-002"}, Shortfall: 1},
		lineC: {ItemCode: "VALVE-01", Outcome: AllocationFull, Serials: []string{"SN-100"}},
	}

	changed, warnings := applyAllocations(items, results)

	if len(changed) != 2 {
		t.Fatalf("changed %d lines, expected 2", len(changed))
	}
	// None outcome keeps the manual serials
	if !reflect.DeepEqual([]string(items[0].SerialNos), []string{"MANUAL-1"}) {
		t.Errorf("untouched line serials = %v", items[0].SerialNos)
	}
	if !reflect.DeepEqual([]string(items[1].SerialNos), []string{"SN-001", "SN-002"}) {
		t.Errorf("partial line serials = %v", items[1].SerialNos)
	}
	if !reflect.DeepEqual([]string(items[2].SerialNos), []string{"SN-100"}) {
		t.Errorf("full line serials = %v", items[2].SerialNos)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "PUMP-02") {
		t.Errorf("warnings = %v, expected one shortfall warning for PUMP-02", warnings)
	}
}

func TestCreateDeliveryNoteRejectsBadLines(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "zero qty",
			body: `{"noteNumber":"DN-001","customer":"Acme","items":[{"itemCode":"PUMP-01","qty":0}]}`,
		},
		{
			name: "more serials than qty",
			body: `{"noteNumber":"DN-001","customer":"Acme","items":[{"itemCode":"PUMP-01","qty":1,"serialNos":["SN-001","SN-002"]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/api/v1/delivery-notes", strings.NewReader(tt.body))
			w := httptest.NewRecorder()
			CreateDeliveryNote(w, r)
			if w.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, expected 422", w.Code)
			}
		})
	}
}
