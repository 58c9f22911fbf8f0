package pricing

import (
	"math"
	"time"

	"github.com/eleqt/eleqt-rides/internal/domain"
)

const (
	hourlyRatePerHour = 750.0

	// Every outstation trip carries a flat daily driver fee; round trips pay an
	// extra block fee for each full 12 hours the driver is out.
	baseDriverFee   = 200.0
	driverBlockFee  = 750.0
	driverBlockHrs  = 12.0
	MaxOutstationKm = 350.0
)

// distanceTier is one bracket of the outstation rate schedule. The per-km
// rate drops as the trip gets longer; round trips pay the one-way rate plus
// exactly half of it again.
type distanceTier struct {
	maxKm     float64
	ratePerKm float64
}

// The table extends to 500 km even though bookings are capped at 350, so a
// future cap raise only touches MaxOutstationKm.
var outstationTiers = []distanceTier{
	{30, 79},
	{75, 72},
	{100, 67},
	{150, 64},
	{200, 60},
	{250, 57},
	{325, 52},
	{400, 45},
	{500, 41},
}

// HourlyFare prices an hourly rental in paise.
func HourlyFare(hours int, class domain.VehicleClass, addOns domain.AddOns) (int64, error) {
	if _, ok := domain.ParseVehicleClass(string(class)); !ok {
		return 0, domain.Invalid("invalid car type %q", class)
	}
	if hours < 1 || hours > 12 {
		return 0, domain.Invalid("duration must be between 1 and 12 hours")
	}
	total := float64(hours)*hourlyRatePerHour + AddOnTotal(addOns)
	return ToPaise(total), nil
}

// OutstationFare prices an outstation trip in paise. returnTime is required
// for round trips and must not precede startTime.
func OutstationFare(distanceKm float64, class domain.VehicleClass, roundTrip bool, startTime time.Time, returnTime *time.Time, addOns domain.AddOns) (int64, error) {
	if _, ok := domain.ParseVehicleClass(string(class)); !ok {
		return 0, domain.Invalid("invalid car type %q", class)
	}
	if distanceKm <= 0 {
		return 0, domain.Invalid("distance must be greater than 0")
	}
	if roundTrip && returnTime == nil {
		return 0, domain.Invalid("return time is required for round trips")
	}

	rate, ok := rateFor(distanceKm)
	if !ok {
		return 0, domain.Invalid("distance exceeds maximum allowed limit of %.0fkm", outstationTiers[len(outstationTiers)-1].maxKm)
	}
	if roundTrip {
		rate += rate / 2
	}
	total := distanceKm * rate

	driverFee := baseDriverFee
	if roundTrip {
		hoursOut := returnTime.Sub(startTime).Hours()
		if hoursOut < 0 {
			return 0, domain.Invalid("return time cannot be before start time")
		}
		if hoursOut > driverBlockHrs {
			driverFee += math.Floor(hoursOut/driverBlockHrs) * driverBlockFee
		}
	}
	total += driverFee

	total += AddOnTotal(addOns)
	return ToPaise(total), nil
}

func rateFor(distanceKm float64) (float64, bool) {
	for _, t := range outstationTiers {
		if distanceKm <= t.maxKm {
			return t.ratePerKm, true
		}
	}
	return 0, false
}

// ToPaise converts a rupee amount to integer paise, rounding once at the end
// so half-rate round-trip math never loses fractions mid-calculation.
func ToPaise(rupees float64) int64 {
	return int64(math.Round(rupees * 100))
}
