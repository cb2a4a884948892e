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
	"time"

	"heatmon/internal/provider"
	"heatmon/internal/timeseries"
)

// AlarmStatus is the pump's current alarm condition.
type AlarmStatus struct {
	IsAlarm     bool       `json:"is_alarm"`
	Code        int        `json:"alarm_code"`
	Description string     `json:"alarm_description"`
	Time        *time.Time `json:"alarm_time"`
	StatusRaw   float64    `json:"alarm_status_raw"`
}

// AlarmFromFrame derives the alarm condition from the latest alarm
// samples in a frame. An alarm is active when either the alarm flag
// or a nonzero alarm code is present; the timestamp is when the most
// recent nonzero code was observed.
func AlarmFromFrame(frame *timeseries.Frame, p provider.Provider) AlarmStatus {
	var statusRaw float64
	if s := frame.SeriesFor(MetricAlarmStatus); len(s) > 0 {
		statusRaw = s[len(s)-1].Value
	}

	var code int
	codes := frame.SeriesFor(MetricAlarmCode)
	if len(codes) > 0 {
		code = int(codes[len(codes)-1].Value)
	}

	status := AlarmStatus{
		IsAlarm:     statusRaw > 0 || code > 0,
		Code:        code,
		StatusRaw:   statusRaw,
		Description: "no alarm",
	}
	if status.IsAlarm {
		status.Description = provider.AlarmDescription(p, code)
		for i := len(codes) - 1; i >= 0; i-- {
			if codes[i].Value > 0 {
				t := codes[i].Time
				status.Time = &t
				break
			}
		}
	}
	return status
}
