package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleqt/eleqt-rides/internal/domain"
)

func TestHourlyFare(t *testing.T) {
	t.Run("base rate", func(t *testing.T) {
		fare, err := HourlyFare(2, domain.ThreeSeater, domain.AddOns{})
		require.NoError(t, err)
		assert.Equal(t, int64(150000), fare)
	})

	t.Run("with add-ons", func(t *testing.T) {
		addOns := domain.AddOns{AirportToll: true, ChildSeat: true}
		fare, err := HourlyFare(1, domain.FiveSeater, addOns)
		require.NoError(t, err)
		assert.Equal(t, int64(145000), fare) // 750 + 200 + 500 in paise
	})

	t.Run("hours out of range", func(t *testing.T) {
		_, err := HourlyFare(0, domain.ThreeSeater, domain.AddOns{})
		assert.True(t, domain.IsValidation(err))

		_, err = HourlyFare(13, domain.ThreeSeater, domain.AddOns{})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("unknown car type", func(t *testing.T) {
		_, err := HourlyFare(2, "7-seater", domain.AddOns{})
		assert.True(t, domain.IsValidation(err))
	})
}

func TestOutstationFare(t *testing.T) {
	t0 := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	t.Run("one way includes driver fee", func(t *testing.T) {
		fare, err := OutstationFare(30, domain.ThreeSeater, false, t0, nil, domain.AddOns{})
		require.NoError(t, err)
		assert.Equal(t, int64(257000), fare) // 30*79 + 200 in paise
	})

	t.Run("round trip within twelve hours", func(t *testing.T) {
		ret := t0.Add(6 * time.Hour)
		fare, err := OutstationFare(30, domain.ThreeSeater, true, t0, &ret, domain.AddOns{})
		require.NoError(t, err)
		assert.Equal(t, int64(375500), fare) // 30*(79+39.5) + 200 in paise
	})

	t.Run("round trip extra driver blocks", func(t *testing.T) {
		ret := t0.Add(30 * time.Hour)
		fare, err := OutstationFare(100, domain.ThreeSeater, true, t0, &ret, domain.AddOns{})
		require.NoError(t, err)
		// 100*(67+33.5) + 200 + floor(30/12)*750
		assert.Equal(t, int64(1175000), fare)
	})

	t.Run("exactly twelve hours has no block fee", func(t *testing.T) {
		ret := t0.Add(12 * time.Hour)
		fare, err := OutstationFare(30, domain.ThreeSeater, true, t0, &ret, domain.AddOns{})
		require.NoError(t, err)
		assert.Equal(t, int64(375500), fare)
	})

	t.Run("tier boundary", func(t *testing.T) {
		fare, err := OutstationFare(30.5, domain.ThreeSeater, false, t0, nil, domain.AddOns{})
		require.NoError(t, err)
		assert.Equal(t, int64(239600), fare) // 30.5*72 + 200 in paise
	})

	t.Run("add-ons included", func(t *testing.T) {
		fare, err := OutstationFare(30, domain.ThreeSeater, false, t0, nil, domain.AddOns{AirportToll: true})
		require.NoError(t, err)
		assert.Equal(t, int64(277000), fare)
	})

	t.Run("round trip requires return time", func(t *testing.T) {
		_, err := OutstationFare(30, domain.ThreeSeater, true, t0, nil, domain.AddOns{})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("return before start", func(t *testing.T) {
		ret := t0.Add(-time.Hour)
		_, err := OutstationFare(30, domain.ThreeSeater, true, t0, &ret, domain.AddOns{})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("non positive distance", func(t *testing.T) {
		_, err := OutstationFare(0, domain.ThreeSeater, false, t0, nil, domain.AddOns{})
		assert.True(t, domain.IsValidation(err))
	})

	t.Run("beyond rate table", func(t *testing.T) {
		_, err := OutstationFare(501, domain.ThreeSeater, false, t0, nil, domain.AddOns{})
		assert.True(t, domain.IsValidation(err))
	})
}
