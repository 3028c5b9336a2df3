package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/indigo-pc/sunspot/internal/archive"
	"github.com/indigo-pc/sunspot/internal/ephemeris"
	"github.com/indigo-pc/sunspot/internal/horizons"
	"github.com/indigo-pc/sunspot/internal/service"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// refreshRequest mirrors horizons.Query for the refresh endpoint body.
type refreshRequest struct {
	StartTime        string `json:"start_time"`
	StopTime         string `json:"stop_time"`
	ObserverLocation string `json:"observer_location"`
	StepSize         string `json:"step_size"`
	TargetBody       string `json:"target_body"`
	Quantities       string `json:"quantities"`
}

func refreshHandler(logger *slog.Logger, svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}

		snap, err := svc.Refresh(r.Context(), horizons.Query{
			StartTime:        req.StartTime,
			StopTime:         req.StopTime,
			ObserverLocation: req.ObserverLocation,
			StepSize:         req.StepSize,
			TargetBody:       req.TargetBody,
			Quantities:       req.Quantities,
		})
		if err != nil {
			var fault *horizons.RemoteServiceFault
			if errors.As(err, &fault) {
				writeJSON(w, http.StatusBadGateway, map[string]string{
					"error":  "remote service fault",
					"phrase": fault.Phrase,
					"hint":   fault.Hint,
				})
				return
			}
			var malformed *ephemeris.MalformedResponse
			if errors.As(err, &malformed) {
				writeJSON(w, http.StatusBadGateway, map[string]string{
					"error":  "malformed response",
					"reason": malformed.Reason,
				})
				return
			}
			logger.Error("refresh failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "refresh failed"})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"rows":       snap.Table.Len(),
			"columns":    snap.Table.ColumnTitles(),
			"fetched_at": snap.FetchedAt.Format(time.RFC3339),
		})
	}
}

// latestTable pulls the current snapshot or reports 503 when none is loaded.
func latestTable(w http.ResponseWriter, svc *service.Service) *ephemeris.Table {
	snap := svc.Latest()
	if snap == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no ephemeris loaded"})
		return nil
	}
	return snap.Table
}

func columnsHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := latestTable(w, svc)
		if table == nil {
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"columns": table.ColumnTitles(),
			"rows":    table.Len(),
		})
	}
}

func valuesHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := latestTable(w, svc)
		if table == nil {
			return
		}
		title := r.URL.Query().Get("title")
		values, err := table.ValuesFor(title)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"title": title, "values": values})
	}
}

func datesHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := latestTable(w, svc)
		if table == nil {
			return
		}
		dates, err := table.Dates()
		if err != nil {
			// The date column is absent only when the query skipped it.
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
	}
}

func correspondHandler(svc *service.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		table := latestTable(w, svc)
		if table == nil {
			return
		}
		q := r.URL.Query()
		target := q.Get("target")
		source := q.Get("source")
		value := q.Get("value")

		result, found, err := table.Correspond(target, source, value)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if !found {
			writeJSON(w, http.StatusOK, map[string]any{"found": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"found": true, "value": result})
	}
}

func archiveRecentHandler(logger *slog.Logger, arch *archive.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if arch == nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "archive disabled"})
			return
		}
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}
		recs, err := arch.Recent(limit)
		if err != nil {
			logger.Error("archive listing failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "archive listing failed"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"fetches": recs})
	}
}
