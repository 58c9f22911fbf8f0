package pricing

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleqt/eleqt-rides/internal/domain"
)

func TestParseAddOns(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		got, err := ParseAddOns(nil)
		require.NoError(t, err)
		assert.Equal(t, domain.AddOns{}, got)
	})

	t.Run("full set", func(t *testing.T) {
		raw := json.RawMessage(`{
			"airport_toll": true,
			"placard": {"required": true, "text": "Mr. Mohanty"},
			"pets": {"dogs": true, "cats": false},
			"book_for_other": {"is_booking": true, "other_guest_info": "guest"},
			"child_seat": true
		}`)
		got, err := ParseAddOns(raw)
		require.NoError(t, err)
		assert.True(t, got.AirportToll)
		assert.True(t, got.Placard.Required)
		assert.Equal(t, "Mr. Mohanty", got.Placard.Text)
		assert.True(t, got.Pets.Dogs)
		assert.False(t, got.Pets.Cats)
		assert.True(t, got.BookForOther.IsBooking)
		assert.True(t, got.ChildSeat)
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		_, err := ParseAddOns(json.RawMessage(`{"wifi": true}`))
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("not an object", func(t *testing.T) {
		_, err := ParseAddOns(json.RawMessage(`[1,2]`))
		assert.True(t, domain.IsValidation(err))
	})
}

func TestAddOnTotal(t *testing.T) {
	assert.Equal(t, 0.0, AddOnTotal(domain.AddOns{}))

	all := domain.AddOns{
		AirportToll:  true,
		Placard:      domain.Placard{Required: true},
		Pets:         domain.Pets{Dogs: true, Cats: true},
		BookForOther: domain.BookForOther{IsBooking: true},
		ChildSeat:    true,
	}
	assert.Equal(t, 200.0+500+500+750+500, AddOnTotal(all))

	assert.Equal(t, 750.0, AddOnTotal(domain.AddOns{Pets: domain.Pets{Dogs: true}}))
}
