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

package timeseries

import (
	"strconv"
	"strings"
)

// AggregationWindow picks a downsampling window for a query range
// like "24h" or "7d", trading resolution against point count.
// Longer ranges downsample more aggressively to keep queries fast.
func AggregationWindow(timeRange string) string {
	if n, ok := rangeValue(timeRange, "h"); ok {
		switch {
		case n <= 1:
			return "1m" // ~60 points
		case n <= 6:
			return "3m" // ~120 points
		case n <= 24:
			return "5m" // ~288 points
		default:
			return "15m"
		}
	}
	if n, ok := rangeValue(timeRange, "d"); ok {
		switch {
		case n <= 1:
			return "5m" // ~288 points
		case n <= 7:
			return "30m" // ~336 points
		case n <= 30:
			return "2h" // ~360 points
		default:
			return "6h"
		}
	}
	return "5m"
}

// COPAggregationWindow is finer than AggregationWindow so COP charts
// stay smooth over long ranges.
func COPAggregationWindow(timeRange string) string {
	if n, ok := rangeValue(timeRange, "h"); ok {
		switch {
		case n <= 1:
			return "1m"
		case n <= 6:
			return "2m"
		case n <= 24:
			return "5m"
		default:
			return "10m"
		}
	}
	if n, ok := rangeValue(timeRange, "d"); ok {
		switch {
		case n <= 1:
			return "5m"
		case n <= 7:
			return "10m" // ~1000 points
		case n <= 30:
			return "10m" // ~4320 points
		default:
			return "1h"
		}
	}
	return "5m"
}

func rangeValue(timeRange, suffix string) (int, bool) {
	if !strings.HasSuffix(timeRange, suffix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSuffix(timeRange, suffix))
	if err != nil {
		return 0, false
	}
	return n, true
}
