package booking

import (
	"encoding/json"
	"time"

	"github.com/eleqt/eleqt-rides/internal/domain"
	"github.com/eleqt/eleqt-rides/internal/geo"
	"github.com/eleqt/eleqt-rides/internal/pricing"
)

// Minimum interval between submission and trip start, per product.
const (
	HourlyLeadTime     = 48 * time.Hour
	OutstationLeadTime = 24 * time.Hour
	LuxuryLeadTime     = 48 * time.Hour
)

const (
	maxStops      = 5
	minPassengers = 1
	maxPassengers = 5
	maxLuggage    = 4
)

// BaseRequest carries the fields every ride product shares. Counts are
// pointers so a missing field is distinguishable from zero.
type BaseRequest struct {
	PassengerCount *int              `json:"passenger_count"`
	LuggageCount   *int              `json:"luggage_count"`
	PickUp         domain.Waypoint   `json:"pickup"`
	DropOff        domain.Waypoint   `json:"dropoff"`
	Stops          []domain.Waypoint `json:"stops"`
	AddOns         json.RawMessage   `json:"add_ons,omitempty"`
	StartTime      string            `json:"start_time"`
}

type HourlyRequest struct {
	BaseRequest
	DurationHrs int `json:"duration_hrs"`
}

type OutstationRequest struct {
	BaseRequest
	TotalDistanceKm float64 `json:"total_distance_km"`
	IsRoundTrip     bool    `json:"is_round_trip"`
	ReturnTime      string  `json:"return_time,omitempty"`
}

type LuxuryRequest struct {
	BaseRequest
}

// Validated is the cleaned-up output of request validation, ready for
// pricing and persistence.
type Validated struct {
	Passengers int
	Luggage    int
	AddOns     domain.AddOns
	StartTime  time.Time
	Class      domain.VehicleClass
}

func leadTimeFor(rideType domain.RideType) time.Duration {
	switch rideType {
	case domain.RideOutstation:
		return OutstationLeadTime
	case domain.RideLuxury:
		return LuxuryLeadTime
	default:
		return HourlyLeadTime
	}
}

// validateCommon runs the shared request checks in a fixed precedence order;
// the first failure is the only one surfaced.
func validateCommon(req BaseRequest, rideType domain.RideType, now time.Time) (Validated, error) {
	var v Validated

	if req.PassengerCount == nil || req.LuggageCount == nil {
		return v, domain.Invalid("passenger_count and luggage_count are required")
	}

	if req.PickUp.Address == "" {
		return v, domain.Invalid("pickup address is required")
	}
	if req.DropOff.Address == "" {
		return v, domain.Invalid("dropoff address is required")
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return v, domain.Invalid("start_time must be a valid RFC3339 timestamp")
	}
	lead := leadTimeFor(rideType)
	if startTime.Before(now.Add(lead)) {
		return v, domain.Invalid("start_time must be at least %d hours from now", int(lead.Hours()))
	}

	if len(req.Stops) > maxStops {
		return v, domain.Invalid("at most %d stops are allowed", maxStops)
	}

	addOns, err := pricing.ParseAddOns(req.AddOns)
	if err != nil {
		return v, err
	}

	if err := validateWaypoint("pickup", req.PickUp); err != nil {
		return v, err
	}
	if err := validateWaypoint("dropoff", req.DropOff); err != nil {
		return v, err
	}
	for _, stop := range req.Stops {
		if err := validateWaypoint("stop", stop); err != nil {
			return v, err
		}
	}

	passengers, luggage := *req.PassengerCount, *req.LuggageCount
	if passengers < minPassengers || passengers > maxPassengers {
		return v, domain.Invalid("passenger_count must be between %d and %d", minPassengers, maxPassengers)
	}
	if luggage < 0 || luggage > maxLuggage {
		return v, domain.Invalid("luggage_count must be between 0 and %d", maxLuggage)
	}

	class, err := pricing.Classify(passengers, luggage)
	if err != nil {
		return v, err
	}

	return Validated{
		Passengers: passengers,
		Luggage:    luggage,
		AddOns:     addOns,
		StartTime:  startTime,
		Class:      class,
	}, nil
}

func validateWaypoint(name string, w domain.Waypoint) error {
	coords := w.Location.Coordinates
	if len(coords) != 2 {
		return domain.Invalid("%s location must be a [longitude, latitude] pair", name)
	}
	lon, lat := coords[0], coords[1]
	if lon < -180 || lon > 180 {
		return domain.Invalid("%s longitude must be between -180 and 180", name)
	}
	if lat < -90 || lat > 90 {
		return domain.Invalid("%s latitude must be between -90 and 90", name)
	}
	return nil
}

// validateOutstation runs the extra checks outstation trips need after the
// common pass: distance cap, round-trip times, and the service radius.
func validateOutstation(req OutstationRequest, v Validated) (*domain.OutstationDetails, error) {
	if req.TotalDistanceKm <= 0 {
		return nil, domain.Invalid("total_distance_km must be greater than 0")
	}
	if req.TotalDistanceKm > pricing.MaxOutstationKm {
		return nil, domain.Invalid("total_distance_km cannot exceed %.0f km", pricing.MaxOutstationKm)
	}

	details := &domain.OutstationDetails{
		TotalDistanceKm: req.TotalDistanceKm,
		IsRoundTrip:     req.IsRoundTrip,
	}
	if req.IsRoundTrip {
		if req.ReturnTime == "" {
			return nil, domain.Invalid("return_time is required for round trips")
		}
		returnTime, err := time.Parse(time.RFC3339, req.ReturnTime)
		if err != nil {
			return nil, domain.Invalid("return_time must be a valid RFC3339 timestamp")
		}
		if !returnTime.After(v.StartTime) {
			return nil, domain.Invalid("return_time must be after start_time")
		}
		details.ReturnTime = &returnTime
	}

	dropoff := [2]float64{req.DropOff.Location.Coordinates[0], req.DropOff.Location.Coordinates[1]}
	if dist := geo.DistanceFromCenterKm(dropoff); dist > geo.ServiceRadiusKm {
		return nil, domain.Invalid("dropoff is %.1f km from our service center; we currently serve up to %.0f km", dist, geo.ServiceRadiusKm)
	}

	return details, nil
}
