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

package collector

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metricSet exposes collector health and the latest register values
// for Prometheus scraping.
type metricSet struct {
	registerValue  *prometheus.GaugeVec
	pollErrors     prometheus.Counter
	writeErrors    prometheus.Counter
	samplesWritten prometheus.Counter
	pollDuration   prometheus.Histogram
}

func newMetricSet(reg prometheus.Registerer) *metricSet {
	m := &metricSet{
		registerValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "heatmon",
			Name:      "register_value",
			Help:      "Latest converted value of a heat pump register.",
		}, []string{"name", "unit", "type"}),
		pollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "heatmon",
			Name:      "gateway_poll_errors_total",
			Help:      "Failed gateway poll cycles.",
		}),
		writeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "heatmon",
			Name:      "influx_write_errors_total",
			Help:      "Failed InfluxDB batch writes.",
		}),
		samplesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "heatmon",
			Name:      "samples_written_total",
			Help:      "Samples written to InfluxDB.",
		}),
		pollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "heatmon",
			Name:      "poll_duration_seconds",
			Help:      "Duration of one poll and store cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.registerValue, m.pollErrors, m.writeErrors, m.samplesWritten, m.pollDuration)
	return m
}
