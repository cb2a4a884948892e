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

package analytics

import (
	"fmt"
	"sort"
	"time"

	"heatmon/internal/provider"
	"heatmon/internal/timeseries"
)

// Event is one state change in the event log.
type Event struct {
	Time    time.Time `json:"time"`
	Message string    `json:"event"`
	Type    string    `json:"type"` // info, warning, danger, success
	Icon    string    `json:"icon"`
}

// auxHeatChangeThreshold: modulating heaters drift a little between
// samples, only jumps beyond this are worth logging.
const auxHeatChangeThreshold = 10.0 // percentage points

// BuildEvents scans the tracked signals for state changes and
// returns the newest events first, at most limit of them. Alarm code
// transitions resolve through the brand's alarm table.
func BuildEvents(frame *timeseries.Frame, p provider.Provider, limit int) []Event {
	var events []Event
	for _, signal := range EventSignals() {
		series := frame.SeriesFor(signal)
		for i := 1; i < len(series); i++ {
			prev := series[i-1].Value
			cur := series[i].Value
			t := series[i].Time
			if e, ok := signalEvent(signal, prev, cur, t, p); ok {
				events = append(events, e)
			}
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.After(events[j].Time)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events
}

func signalEvent(signal string, prev, cur float64, t time.Time, p provider.Provider) (Event, bool) {
	switch signal {
	case MetricCompressorStatus:
		if cur > 0 && prev == 0 {
			return Event{t, "compressor ON", "info", "🔄"}, true
		}
		if cur == 0 && prev > 0 {
			return Event{t, "compressor OFF", "info", "⏸️"}, true
		}

	case MetricBrinePumpStatus:
		if cur > 0 && prev == 0 {
			return Event{t, "brine pump ON", "info", "💧"}, true
		}
		if cur == 0 && prev > 0 {
			return Event{t, "brine pump OFF", "info", "💧"}, true
		}

	case MetricRadiatorPumpStatus:
		if cur > 0 && prev == 0 {
			return Event{t, "radiator pump ON", "info", "📡"}, true
		}
		if cur == 0 && prev > 0 {
			return Event{t, "radiator pump OFF", "info", "📡"}, true
		}

	case MetricSwitchValveStatus:
		if cur == 1 && prev == 0 {
			return Event{t, "hot water cycle START", "info", "🚿"}, true
		}
		if cur == 0 && prev == 1 {
			return Event{t, "hot water cycle STOP", "info", "🚿"}, true
		}

	case MetricAdditionalHeatPct:
		if cur > 0 && prev == 0 {
			return Event{t, fmt.Sprintf("auxiliary heat ON (%d%%)", int(cur)), "warning", "🔥"}, true
		}
		if cur == 0 && prev > 0 {
			return Event{t, "auxiliary heat OFF", "info", "🔥"}, true
		}
		if cur > 0 && prev > 0 && abs(cur-prev) > auxHeatChangeThreshold {
			return Event{t, fmt.Sprintf("auxiliary heat changed to %d%%", int(cur)), "warning", "🔥"}, true
		}

	case MetricAlarmCode:
		if cur > 0 && prev == 0 {
			desc := provider.AlarmDescription(p, int(cur))
			return Event{t, "ALARM - " + desc, "danger", "⚠️"}, true
		}
		if cur == 0 && prev > 0 {
			return Event{t, "alarm cleared", "success", "✅"}, true
		}

	case MetricAlarmStatus:
		// some brands flag active alarms here while alarm_code
		// keeps the last historic code
		if cur > 0 && prev == 0 {
			return Event{t, "alarm activated", "danger", "⚠️"}, true
		}
		if cur == 0 && prev > 0 {
			return Event{t, "alarm cleared", "success", "✅"}, true
		}
	}
	return Event{}, false
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
