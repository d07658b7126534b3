package handlers

import (
	"github.com/google/uuid"
	"qonevo.in/fieldops/models"
)

// Allocation outcomes for one delivery line.
const (
	AllocationFull    = "Full"
	AllocationPartial = "Partial"
	AllocationNone    = "None"
)

// AllocationResult is what the ledger could supply for one line.
type AllocationResult struct {
	ItemCode  string   `json:"itemCode"`
	Outcome   string   `json:"outcome"`
	Serials   []string `json:"serials"`
	Shortfall int      `json:"shortfall"`
}

// BuildSerialPool groups unconsumed ledger entries by item code,
// preserving the order they were given in. Callers query the ledger
// ordered by insertion so repeated calls select the same serials.
func BuildSerialPool(entries []models.ManufacturedSerial) map[string][]string {
	pool := make(map[string][]string)
	for _, entry := range entries {
		if entry.Consumed {
			continue
		}
		pool[entry.ItemCode] = append(pool[entry.ItemCode], entry.SerialNo)
	}
	return pool
}

// AllocateLines matches manufactured serials to delivery lines. Each line
// gets at most Qty serials, taken in ledger order. A line whose item has
// no serials in the pool is left untouched (manual entry preserved).
// Serials handed to one line are removed from the pool so a second line
// for the same item cannot receive them again.
func AllocateLines(pool map[string][]string, lines []models.DeliveryNoteItem) map[uuid.UUID]AllocationResult {
	// don't mutate the caller's pool
	remaining := make(map[string][]string, len(pool))
	for item, serials := range pool {
		remaining[item] = append([]string(nil), serials...)
	}

	results := make(map[uuid.UUID]AllocationResult)
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		available := remaining[line.ItemCode]
		if len(available) == 0 {
			results[line.ID] = AllocationResult{
				ItemCode: line.ItemCode,
				Outcome:  AllocationNone,
			}
			continue
		}

		take := line.Qty
		outcome := AllocationFull
		shortfall := 0
		if len(available) < take {
			take = len(available)
			outcome = AllocationPartial
			shortfall = line.Qty - take
		}

		results[line.ID] = AllocationResult{
			ItemCode:  line.ItemCode,
			Outcome:   outcome,
			Serials:   append([]string(nil), available[:take]...),
			Shortfall: shortfall,
		}
		remaining[line.ItemCode] = available[take:]
	}
	return results
}
