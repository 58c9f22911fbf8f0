package domain

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingOngoing   BookingStatus = "ongoing"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingOngoing, BookingCompleted, BookingCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type RideType string

const (
	RideHourly     RideType = "hourly"
	RideOutstation RideType = "outstation"
	RideLuxury     RideType = "luxury"
)

func ParseRideType(s string) (RideType, bool) {
	switch RideType(s) {
	case RideHourly, RideOutstation, RideLuxury:
		return RideType(s), true
	default:
		return "", false
	}
}

type VehicleClass string

const (
	ThreeSeater VehicleClass = "3-seater"
	FiveSeater  VehicleClass = "5-seater"
)

func ParseVehicleClass(s string) (VehicleClass, bool) {
	switch VehicleClass(s) {
	case ThreeSeater, FiveSeater:
		return VehicleClass(s), true
	default:
		return "", false
	}
}

// Point is a GeoJSON-style coordinate pair, [longitude, latitude].
type Point struct {
	Coordinates []float64 `json:"coordinates"`
}

type Waypoint struct {
	Address  string `json:"address"`
	Location Point  `json:"location"`
}

type Placard struct {
	Required bool   `json:"required"`
	Text     string `json:"text,omitempty"`
}

type Pets struct {
	Dogs bool `json:"dogs"`
	Cats bool `json:"cats"`
}

type BookForOther struct {
	IsBooking      bool   `json:"is_booking"`
	OtherGuestInfo string `json:"other_guest_info,omitempty"`
}

// AddOns is the closed set of optional extras a booking may carry. Unknown
// keys are rejected during validation, not silently dropped.
type AddOns struct {
	AirportToll  bool         `json:"airport_toll"`
	Placard      Placard      `json:"placard"`
	Pets         Pets         `json:"pets"`
	BookForOther BookForOther `json:"book_for_other"`
	ChildSeat    bool         `json:"child_seat"`
}

const PaymentMethodGateway = "gateway"

type Payment struct {
	Method    string        `json:"method"`
	Amount    int64         `json:"amount"` // paise
	Status    PaymentStatus `json:"status"`
	OrderID   string        `json:"-"`
	PaymentID string        `json:"-"`
	Signature string        `json:"-"`
	Receipt   string        `json:"-"`
}

// HourlyDetails is present only on hourly bookings.
type HourlyDetails struct {
	DurationHrs int `json:"duration_hrs"`
}

// OutstationDetails is present only on outstation bookings.
type OutstationDetails struct {
	TotalDistanceKm float64    `json:"total_distance_km"`
	IsRoundTrip     bool       `json:"is_round_trip"`
	ReturnTime      *time.Time `json:"return_time,omitempty"`
}

// Booking is the shared record for all ride products. RideType tags which of
// the detail structs is set; exactly one is non-nil for hourly/outstation,
// both are nil for luxury.
type Booking struct {
	ID       int64        `json:"id"`
	UserID   int64        `json:"user_id"`
	RideType RideType     `json:"ride_type"`
	CarType  VehicleClass `json:"car_type"`

	Passengers int `json:"passenger_count"`
	Luggage    int `json:"luggage_count"`

	PickUp  Waypoint   `json:"pickup"`
	DropOff Waypoint   `json:"dropoff"`
	Stops   []Waypoint `json:"stops"`

	AddOns    AddOns    `json:"add_ons"`
	StartTime time.Time `json:"start_time"`

	Hourly     *HourlyDetails     `json:"hourly,omitempty"`
	Outstation *OutstationDetails `json:"outstation,omitempty"`

	Status  BookingStatus `json:"status"`
	Payment Payment       `json:"payment"`

	VehicleID   *int64 `json:"vehicle_id,omitempty"`
	CarNumber   string `json:"car_number,omitempty"`
	CarModel    string `json:"car_model,omitempty"`
	DriverName  string `json:"driver_name,omitempty"`
	DriverPhone string `json:"driver_phone,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Booking) IsUserOwner(userID int64) bool {
	return b.UserID == userID
}

// IsActive reports whether the booking still represents an upcoming or
// in-progress trip.
func (b *Booking) IsActive(now time.Time) bool {
	switch b.Status {
	case BookingCompleted, BookingCancelled:
		return false
	}
	return b.StartTime.After(now) ||
		b.Status == BookingPending || b.Status == BookingConfirmed || b.Status == BookingOngoing
}

// TripEnd is when the claimed vehicle should come back into the pool: the
// return time for round trips, otherwise the start time.
func (b *Booking) TripEnd() time.Time {
	if b.Outstation != nil && b.Outstation.IsRoundTrip && b.Outstation.ReturnTime != nil {
		return *b.Outstation.ReturnTime
	}
	return b.StartTime
}
