// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package dashdata assembles the dashboard snapshot: one shared fetch
// from the time-series backend, then the derived sections computed
// concurrently. A failed query or a panicking section degrades that
// section to its empty default instead of failing the whole snapshot.
package dashdata

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"heatmon/internal/config"
	"heatmon/internal/events"
	"heatmon/internal/provider"
	"heatmon/internal/timeseries"
	"heatmon/pkg/eventbus"
	"heatmon/pkg/logger"
)

// Backend is the slice of the time-series store the snapshot needs.
type Backend interface {
	QueryMetrics(ctx context.Context, names []string, timeRange, window string, statusFields []string) (timeseries.Frame, error)
	LatestValues(ctx context.Context) (map[string]timeseries.Latest, error)
	MinMax(ctx context.Context, timeRange string) (map[string]timeseries.Stats, error)
	LastActiveAlarmTime(ctx context.Context) (time.Time, bool, error)
}

type Service struct {
	log      *logger.Logger
	backend  Backend
	provider provider.Provider
	bus      *eventbus.Bus

	flowFactor      float64
	minCycleMinutes float64
	pricePerKWh     float64
}

func New(cfg *config.Config, p provider.Provider, backend Backend) *Service {
	return &Service{
		log:             logger.New("DashData"),
		backend:         backend,
		provider:        p,
		bus:             cfg.EventBus,
		flowFactor:      cfg.COP.FlowFactor,
		minCycleMinutes: cfg.HotWater.MinCycleMinutes,
		pricePerKWh:     cfg.Energy.PricePerKWh,
	}
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "", "/", "/dashboard":
		s.handleSnapshot(w, r)
	case "/live":
		s.handleLive(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (s *Service) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	timeRange := r.URL.Query().Get("range")
	if timeRange == "" {
		timeRange = "24h"
	}

	start := time.Now()
	snap := s.Snapshot(r.Context(), timeRange)
	s.log.Debug("snapshot for %s built in %v", timeRange, time.Since(start))

	s.writeJSON(w, snap)
}

// handleLive returns the most recent collected sample batch, straight
// off the event bus without touching the backend.
func (s *Service) handleLive(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		http.Error(w, "live data unavailable", http.StatusServiceUnavailable)
		return
	}
	ev, ok := s.bus.GetLast(events.TopicSamples)
	if !ok {
		http.Error(w, "no samples collected yet", http.StatusServiceUnavailable)
		return
	}
	batch, ok := ev.(events.SampleBatch)
	if !ok {
		http.Error(w, "live data unavailable", http.StatusServiceUnavailable)
		return
	}
	s.writeJSON(w, batch)
}

func (s *Service) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("encode response: %v", err)
	}
}
