package tracker

import (
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"brokertrack-backend/services/tracker/db"

	"github.com/go-chi/chi/v5"
)

// Router exposes the batch-trigger surface and shipment CRUD as a
// small JSON API.
func (s Service) Router() chi.Router {
	r := chi.NewRouter()

	r.Post("/scrape", s.handleScrape)
	r.Get("/shipments", s.handleListShipments)
	r.Post("/shipments", s.handleCreateShipment)
	r.Get("/shipments/{id}", s.handleGetShipment)
	r.Delete("/shipments/{id}", s.handleDeleteShipment)
	r.Get("/shipments/{id}/statuses", s.handleListStatuses)

	return r
}

type shipmentJson struct {
	Id                  int64   `json:"id"`
	OfficeCode          string  `json:"office_code"`
	Year                string  `json:"year"`
	CommercialReference string  `json:"commercial_reference"`
	Trn                 string  `json:"trn"`
	TrackingRole        string  `json:"tracking_role"`
	Status              string  `json:"status"`
	CustomsReference    *string `json:"customs_reference"`
	LastScrapedAt       *int64  `json:"last_scraped_at"`
	CreatedAt           int64   `json:"created_at"`
}

func toShipmentJson(s db.Shipment) shipmentJson {
	out := shipmentJson{
		Id:                  s.ID,
		OfficeCode:          s.OfficeCode,
		Year:                s.Year,
		CommercialReference: s.CommercialReference,
		Trn:                 s.Trn,
		TrackingRole:        s.TrackingRole,
		Status:              s.Status,
		CreatedAt:           s.CreatedAt,
	}
	if s.CustomsReference.Valid {
		out.CustomsReference = &s.CustomsReference.String
	}
	if s.LastScrapedAt.Valid {
		out.LastScrapedAt = &s.LastScrapedAt.Int64
	}
	return out
}

type statusEntryJson struct {
	ShipmentId        int64   `json:"shipment_id"`
	StatusType        string  `json:"status_type"`
	StatusValue       string  `json:"status_value"`
	DateTimeAssigned  *string `json:"date_time_assigned"`
	DateTimeCompleted *string `json:"date_time_completed"`
	UpdatedAt         int64   `json:"updated_at"`
}

func toStatusEntryJson(e db.StatusEntry) statusEntryJson {
	out := statusEntryJson{
		ShipmentId:  e.ShipmentID,
		StatusType:  e.StatusType,
		StatusValue: e.StatusValue,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.DateTimeAssigned.Valid {
		out.DateTimeAssigned = &e.DateTimeAssigned.String
	}
	if e.DateTimeCompleted.Valid {
		out.DateTimeCompleted = &e.DateTimeCompleted.String
	}
	return out
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Warn("failed to write response body", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJson(w, status, map[string]string{"error": err.Error()})
}

func shipmentIdParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (s Service) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShipmentId int64 `json:"shipmentId"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	batch, err := s.ScrapeBatch(r.Context(), req.ShipmentId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, http.StatusOK, batch)
}

func (s Service) handleListShipments(w http.ResponseWriter, r *http.Request) {
	shipments, err := s.ListShipments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]shipmentJson, 0, len(shipments))
	for _, shipment := range shipments {
		out = append(out, toShipmentJson(shipment))
	}
	writeJson(w, http.StatusOK, out)
}

func (s Service) handleCreateShipment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OfficeCode          string `json:"office_code"`
		Year                string `json:"year"`
		CommercialReference string `json:"commercial_reference"`
		Trn                 string `json:"trn"`
		TrackingRole        string `json:"tracking_role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.OfficeCode == "" || req.CommercialReference == "" || req.Trn == "" {
		writeError(w, http.StatusBadRequest, errors.New("office_code, commercial_reference and trn are required"))
		return
	}

	shipment, err := s.CreateShipment(r.Context(), NewShipment{
		OfficeCode:          req.OfficeCode,
		Year:                req.Year,
		CommercialReference: req.CommercialReference,
		Trn:                 req.Trn,
		TrackingRole:        req.TrackingRole,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, http.StatusCreated, toShipmentJson(shipment))
}

func (s Service) handleGetShipment(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentIdParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	shipment, err := s.GetShipment(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJson(w, http.StatusOK, toShipmentJson(shipment))
}

func (s Service) handleDeleteShipment(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentIdParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.DeleteShipment(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s Service) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	id, err := shipmentIdParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	entries, err := s.ListStatusEntries(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	out := make([]statusEntryJson, 0, len(entries))
	for _, e := range entries {
		out = append(out, toStatusEntryJson(e))
	}
	writeJson(w, http.StatusOK, out)
}
