package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eleqt/eleqt-rides/internal/domain"
	"github.com/eleqt/eleqt-rides/internal/http/response"
	"github.com/eleqt/eleqt-rides/internal/repo/postgres"
	"github.com/eleqt/eleqt-rides/internal/utils"
)

// VehiclesHandler is the admin surface for the luxury car fleet.
type VehiclesHandler struct {
	Repo postgres.VehicleRepo
}

func NewVehiclesHandler(repo postgres.VehicleRepo) *VehiclesHandler {
	return &VehiclesHandler{Repo: repo}
}

func (h *VehiclesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/release", h.release)
	return r
}

type vehicleInput struct {
	CarNumber   string `json:"car_number"`
	CarModel    string `json:"car_model"`
	Class       string `json:"class"`
	OwnerName   string `json:"owner_name"`
	OwnerPhone  string `json:"owner_phone"`
	DriverName  string `json:"driver_name"`
	DriverPhone string `json:"driver_phone"`
}

func (in *vehicleInput) toCar() (*domain.LuxuryCar, error) {
	if in.CarNumber == "" || in.CarModel == "" {
		return nil, domain.Invalid("car_number and car_model are required")
	}
	class, ok := domain.ParseVehicleClass(in.Class)
	if !ok {
		return nil, domain.Invalid("class must be %q or %q", domain.ThreeSeater, domain.FiveSeater)
	}
	if in.DriverPhone != "" && !utils.IsValidPhone(in.DriverPhone) {
		return nil, domain.Invalid("invalid driver phone number")
	}
	return &domain.LuxuryCar{
		CarNumber:   in.CarNumber,
		CarModel:    in.CarModel,
		Class:       class,
		OwnerName:   in.OwnerName,
		OwnerPhone:  utils.NormalizePhone(in.OwnerPhone),
		DriverName:  in.DriverName,
		DriverPhone: utils.NormalizePhone(in.DriverPhone),
	}, nil
}

func vehicleID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *VehiclesHandler) create(w http.ResponseWriter, r *http.Request) {
	var in vehicleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	car, err := in.toCar()
	if err != nil {
		response.FromError(w, err)
		return
	}
	created, err := h.Repo.Create(r.Context(), car)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, created)
}

func (h *VehiclesHandler) list(w http.ResponseWriter, r *http.Request) {
	cars, err := h.Repo.List(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	if cars == nil {
		cars = []domain.LuxuryCar{}
	}
	response.WriteJSON(w, http.StatusOK, cars)
}

func (h *VehiclesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(r)
	if !ok {
		response.BadRequest(w, "invalid vehicle id")
		return
	}
	car, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, car)
}

func (h *VehiclesHandler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(r)
	if !ok {
		response.BadRequest(w, "invalid vehicle id")
		return
	}
	var in vehicleInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	car, err := in.toCar()
	if err != nil {
		response.FromError(w, err)
		return
	}
	car.ID = id
	updated, err := h.Repo.Update(r.Context(), car)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, updated)
}

func (h *VehiclesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(r)
	if !ok {
		response.BadRequest(w, "invalid vehicle id")
		return
	}
	if err := h.Repo.Delete(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// release lets operations force a car back into the pool, for example after
// a trip wraps up early. Safe to repeat.
func (h *VehiclesHandler) release(w http.ResponseWriter, r *http.Request) {
	id, ok := vehicleID(r)
	if !ok {
		response.BadRequest(w, "invalid vehicle id")
		return
	}
	if _, err := h.Repo.GetByID(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	if err := h.Repo.Release(r.Context(), id); err != nil {
		response.FromError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "released"})
}
