package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eleqt/eleqt-rides/internal/booking"
	"github.com/eleqt/eleqt-rides/internal/domain"
	"github.com/eleqt/eleqt-rides/internal/http/middleware"
	"github.com/eleqt/eleqt-rides/internal/http/response"
	"github.com/eleqt/eleqt-rides/internal/repo/postgres"
)

type BookingsHandler struct {
	Svc *booking.Service
}

func NewBookingsHandler(svc *booking.Service) *BookingsHandler {
	return &BookingsHandler{Svc: svc}
}

func (h *BookingsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/hourly/quote", h.quoteHourly)
	r.Post("/outstation/quote", h.quoteOutstation)
	r.Post("/hourly", h.createHourly)
	r.Post("/outstation", h.createOutstation)
	r.Post("/luxury", h.createLuxury)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Post("/{id}/verify-payment", h.verifyPayment)
	r.Delete("/{id}", h.cancel)
	return r
}

func callerID(r *http.Request) int64 {
	claims := middleware.Claims(r)
	if claims == nil {
		return 0
	}
	return claims.Sub
}

func bookingID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

const maxListLimit = 100

func listFilter(r *http.Request) postgres.BookingFilter {
	q := r.URL.Query()
	f := postgres.BookingFilter{
		Status:   q.Get("status"),
		RideType: q.Get("ride_type"),
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		f.Limit = min(v, maxListLimit)
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		f.Offset = v
	}
	return f
}

func (h *BookingsHandler) quoteHourly(w http.ResponseWriter, r *http.Request) {
	var in booking.HourlyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	q, err := h.Svc.QuoteHourly(r.Context(), in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, q)
}

func (h *BookingsHandler) quoteOutstation(w http.ResponseWriter, r *http.Request) {
	var in booking.OutstationRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	q, err := h.Svc.QuoteOutstation(r.Context(), in)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, q)
}

func (h *BookingsHandler) createHourly(w http.ResponseWriter, r *http.Request) {
	var in booking.HourlyRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	session, err := h.Svc.CreateHourly(r.Context(), callerID(r), in, r.Header.Get("Idempotency-Key"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, session)
}

func (h *BookingsHandler) createOutstation(w http.ResponseWriter, r *http.Request) {
	var in booking.OutstationRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	session, err := h.Svc.CreateOutstation(r.Context(), callerID(r), in, r.Header.Get("Idempotency-Key"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, session)
}

func (h *BookingsHandler) createLuxury(w http.ResponseWriter, r *http.Request) {
	var in booking.LuxuryRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	session, err := h.Svc.CreateLuxury(r.Context(), callerID(r), in, r.Header.Get("Idempotency-Key"))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, session)
}

func (h *BookingsHandler) list(w http.ResponseWriter, r *http.Request) {
	active, past, err := h.Svc.List(r.Context(), callerID(r), listFilter(r))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string][]domain.Booking{
		"active": active,
		"past":   past,
	})
}

func (h *BookingsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(r)
	if !ok {
		response.BadRequest(w, "invalid booking id")
		return
	}
	b, err := h.Svc.Get(r.Context(), id, callerID(r))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, b)
}

func (h *BookingsHandler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(r)
	if !ok {
		response.BadRequest(w, "invalid booking id")
		return
	}
	var in struct {
		OrderID   string `json:"order_id"`
		PaymentID string `json:"payment_id"`
		Signature string `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if in.OrderID == "" || in.PaymentID == "" || in.Signature == "" {
		response.BadRequest(w, "order_id, payment_id and signature are required")
		return
	}

	token, b, err := h.Svc.VerifyPayment(r.Context(), id, callerID(r), in.OrderID, in.PaymentID, in.Signature)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]any{
		"booking":       b,
		"payment_token": token,
	})
}

func (h *BookingsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(r)
	if !ok {
		response.BadRequest(w, "invalid booking id")
		return
	}
	b, err := h.Svc.Cancel(r.Context(), id, callerID(r))
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, b)
}
