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

// Package collector polls the gateway on a fixed interval and writes
// converted samples to InfluxDB. Every sample in a poll cycle carries
// the same timestamp so the query layer gets aligned rows for free.
package collector

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/prometheus/client_golang/prometheus"

	"heatmon/internal/config"
	"heatmon/internal/events"
	"heatmon/internal/gateway"
	"heatmon/internal/provider"
	"heatmon/internal/timeseries"
	"heatmon/pkg/eventbus"
	"heatmon/pkg/logger"
)

type Service struct {
	log      *logger.Logger
	provider provider.Provider
	source   gateway.Source
	bus      *eventbus.Bus
	writer   api.WriteAPIBlocking
	metrics  *metricSet
	interval time.Duration
}

func New(cfg *config.Config, p provider.Provider, source gateway.Source, client influxdb2.Client) *Service {
	return &Service{
		log:      logger.New("Collector"),
		provider: p,
		source:   source,
		bus:      cfg.EventBus,
		writer:   client.WriteAPIBlocking(cfg.Influx.Org, cfg.Influx.Bucket),
		metrics:  newMetricSet(prometheus.DefaultRegisterer),
		interval: time.Duration(cfg.Gateway.PollIntervalSeconds) * time.Second,
	}
}

func (s *Service) Run(ctx context.Context) {
	s.log.Info("Running... polling every %v for %s", s.interval, s.provider.DisplayName())
	defer s.source.Close()

	s.collectOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Stopped")
			return
		case <-ticker.C:
			s.collectOnce(ctx)
		}
	}
}

func (s *Service) collectOnce(ctx context.Context) {
	start := time.Now()
	defer func() {
		s.metrics.pollDuration.Observe(time.Since(start).Seconds())
	}()

	// one timestamp for the whole batch
	stamp := time.Now().UTC()

	raw, err := s.source.ReadAll(ctx)
	if err != nil {
		s.metrics.pollErrors.Inc()
		s.log.Error("gateway poll failed: %v", err)
		return
	}

	registers := s.provider.Registers()
	points := make([]*write.Point, 0, len(raw))
	values := make(map[string]float64, len(raw))

	for id, rawValue := range raw {
		def, known := registers[id]
		if !known {
			s.log.Debug("unknown register %s = %d", id, rawValue)
			continue
		}
		value := provider.Convert(def, rawValue)
		values[def.Name] = value

		point := influxdb2.NewPointWithMeasurement(timeseries.Measurement).
			AddTag("register_id", id).
			AddTag("name", def.Name).
			AddTag("type", string(def.Kind)).
			AddField("value", value).
			SetTime(stamp)
		if def.Unit != "" {
			point.AddTag("unit", def.Unit)
		}
		points = append(points, point)

		s.metrics.registerValue.WithLabelValues(def.Name, def.Unit, string(def.Kind)).Set(value)
	}

	if len(points) == 0 {
		s.log.Warn("poll returned no known registers")
		return
	}

	if err := s.writer.WritePoint(ctx, points...); err != nil {
		s.metrics.writeErrors.Inc()
		s.log.Error("influx write failed: %v", err)
		return
	}
	s.metrics.samplesWritten.Add(float64(len(points)))

	if s.bus != nil {
		s.bus.Publish(events.TopicSamples, events.SampleBatch{
			Time:   stamp,
			Values: values,
		})
	}
	s.log.Debug("stored %d samples at %s in %v", len(points), stamp.Format(time.RFC3339), time.Since(start))
}
