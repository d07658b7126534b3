package handlers

import (
	"reflect"
	"testing"

	"github.com/google/uuid"
	"qonevo.in/fieldops/models"
)

func ledgerEntries(itemSerials ...[2]string) []models.ManufacturedSerial {
	entries := make([]models.ManufacturedSerial, 0, len(itemSerials))
	for _, pair := range itemSerials {
		entries = append(entries, models.ManufacturedSerial{
			ItemCode: pair[0],
			SerialNo: pair[1],
		})
	}
	return entries
}

func TestBuildSerialPool(t *testing.T) {
	entries := ledgerEntries(
		[2]string{"PUMP-01", "SN-001"},
		[2]string{"PUMP-01", "SN-002"},
		[2]string{"PUMP-02", "SN-100"},
	)
	entries = append(entries, models.ManufacturedSerial{
		ItemCode: "PUMP-01", SerialNo: "SN-003", Consumed: true,
	})

	pool := BuildSerialPool(entries)

	if got := pool["PUMP-01"]; !reflect.DeepEqual(got, []string{"SN-001", "SN-002"}) {
		t.Errorf("PUMP-01 pool = %v, expected [SN-001 SN-002] (consumed entries excluded)", got)
	}
	if got := pool["PUMP-02"]; !reflect.DeepEqual(got, []string{"SN-100"}) {
		t.Errorf("PUMP-02 pool = %v, expected [SN-100]", got)
	}
}

func TestAllocateLines(t *testing.T) {
	lineID := uuid.New()

	tests := []struct {
		name      string
		pool      map[string][]string
		qty       int
		outcome   string
		serials   []string
		shortfall int
	}{
		{
			name:    "full allocation takes first N in ledger order",
			pool:    map[string][]string{"PUMP-01": {"SN-001", "SN-002", "SN-003"}},
			qty:     2,
			outcome: AllocationFull,
			serials: []string{"SN-001", "SN-002"},
		},
		{
			name:      "partial allocation reports shortfall",
			pool:      map[string][]string{"PUMP-01": {"SN-001", "SN-002"}},
			qty:       3,
			outcome:   AllocationPartial,
			serials:   []string{"SN-001", "SN-002"},
			shortfall: 1,
		},
		{
			name:    "no serials leaves line untouched",
			pool:    map[string][]string{},
			qty:     2,
			outcome: AllocationNone,
		},
		{
			name:    "exact match is full",
			pool:    map[string][]string{"PUMP-01": {"SN-001"}},
			qty:     1,
			outcome: AllocationFull,
			serials: []string{"SN-001"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := []models.DeliveryNoteItem{{ID: lineID, ItemCode: "PUMP-01", Qty: tt.qty}}
			results := AllocateLines(tt.pool, lines)

			result, ok := results[lineID]
			if !ok {
				t.Fatal("no result for line")
			}
			if result.Outcome != tt.outcome {
				t.Errorf("outcome = %s, expected %s", result.Outcome, tt.outcome)
			}
			if !reflect.DeepEqual(result.Serials, tt.serials) {
				t.Errorf("serials = %v, expected %v", result.Serials, tt.serials)
			}
			if result.Shortfall != tt.shortfall {
				t.Errorf("shortfall = %d, expected %d", result.Shortfall, tt.shortfall)
			}
			if len(result.Serials) > tt.qty {
				t.Errorf("allocated %d serials for qty %d", len(result.Serials), tt.qty)
			}
		})
	}
}

func TestAllocateLinesZeroQtySkipped(t *testing.T) {
	lineID := uuid.New()
	results := AllocateLines(
		map[string][]string{"PUMP-01": {"SN-001"}},
		[]models.DeliveryNoteItem{{ID: lineID, ItemCode: "PUMP-01", Qty: 0}},
	)
	if _, ok := results[lineID]; ok {
		t.Error("zero-qty line should not get an allocation result")
	}
}

func TestAllocateLinesSharedItemNotDoubleAllocated(t *testing.T) {
	lineA := uuid.New()
	lineB := uuid.New()
	pool := map[string][]string{"PUMP-01": {"SN-001", "SN-002", "SN-003"}}
	lines := []models.DeliveryNoteItem{
		{ID: lineA, ItemCode: "PUMP-01", Qty: 2},
		{ID: lineB, ItemCode: "PUMP-01", Qty: 2},
	}

	results := AllocateLines(pool, lines)

	if got := results[lineA].Serials; !reflect.DeepEqual(got, []string{"SN-001", "SN-002"}) {
		t.Errorf("line A serials = %v", got)
	}
	b := results[lineB]
	if b.Outcome != AllocationPartial || !reflect.DeepEqual(b.Serials, []string{"SN-003"}) {
		t.Errorf("line B should get only the remaining SN-003, got %+v", b)
	}

	// the input pool must not be consumed by the call
	if len(pool["PUMP-01"]) != 3 {
		t.Errorf("input pool was mutated: %v", pool["PUMP-01"])
	}
}

func TestAllocateLinesDeterministic(t *testing.T) {
	lineID := uuid.New()
	pool := map[string][]string{"PUMP-01": {"SN-003", "SN-001", "SN-002"}}
	lines := []models.DeliveryNoteItem{{ID: lineID, ItemCode: "PUMP-01", Qty: 2}}

	first := AllocateLines(pool, lines)[lineID]
	second := AllocateLines(pool, lines)[lineID]
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated allocation differs: %+v vs %+v", first, second)
	}
	if !reflect.DeepEqual(first.Serials, []string{"SN-003", "SN-001"}) {
		t.Errorf("selection should follow ledger order, got %v", first.Serials)
	}
}
