package pricing

import (
	"encoding/json"

	"github.com/eleqt/eleqt-rides/internal/domain"
)

// Add-on surcharges in rupees. Booking for another guest carries no charge.
const (
	airportTollCharge = 200
	placardCharge     = 500
	catCharge         = 500
	dogCharge         = 750
	childSeatCharge   = 500
)

var allowedAddOnKeys = map[string]struct{}{
	"airport_toll":   {},
	"placard":        {},
	"pets":           {},
	"book_for_other": {},
	"child_seat":     {},
}

// ParseAddOns decodes a raw add-ons object. Keys outside the supported set
// are rejected rather than dropped, so a misspelled add-on fails loudly
// instead of silently pricing to zero.
func ParseAddOns(raw json.RawMessage) (domain.AddOns, error) {
	var out domain.AddOns
	if len(raw) == 0 || string(raw) == "null" {
		return out, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return out, domain.Invalid("add_ons must be an object")
	}
	for k := range keys {
		if _, ok := allowedAddOnKeys[k]; !ok {
			return out, domain.Invalid("unknown add-on %q", k)
		}
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, domain.Invalid("malformed add_ons: %v", err)
	}
	return out, nil
}

// AddOnTotal sums the selected add-on charges in rupees.
func AddOnTotal(a domain.AddOns) float64 {
	var total float64
	if a.AirportToll {
		total += airportTollCharge
	}
	if a.Placard.Required {
		total += placardCharge
	}
	if a.Pets.Cats {
		total += catCharge
	}
	if a.Pets.Dogs {
		total += dogCharge
	}
	if a.ChildSeat {
		total += childSeatCharge
	}
	return total
}
