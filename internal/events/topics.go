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

// Package events defines the event bus topics and payloads shared
// between services.
package events

import (
	"time"

	"heatmon/pkg/eventbus"
)

// TopicSamples carries the latest polled sample batch. Subscribers
// get the converted values keyed by metric name.
const TopicSamples eventbus.Topic = "heatpump.samples"

// SampleBatch is one poll cycle of the gateway. All values share a
// single timestamp so downstream consumers never see skewed rows.
type SampleBatch struct {
	Time   time.Time          `json:"time"`
	Values map[string]float64 `json:"values"`
}
