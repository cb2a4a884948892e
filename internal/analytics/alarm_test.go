package analytics

import (
	"testing"

	"heatmon/internal/timeseries"
)

func TestAlarmFromFrameActiveCode(t *testing.T) {
	frame := eventFrame(map[string]timeseries.Series{
		MetricAlarmStatus: {
			{Time: minutes(0), Value: 0},
			{Time: minutes(5), Value: 1},
		},
		MetricAlarmCode: {
			{Time: minutes(0), Value: 0},
			{Time: minutes(5), Value: 10},
		},
	})
	status := AlarmFromFrame(frame, mustProvider(t, "thermia"))
	if !status.IsAlarm {
		t.Fatal("expected active alarm")
	}
	if status.Code != 10 {
		t.Errorf("code = %d, want 10", status.Code)
	}
	if status.Description != "HP - high pressure switch" {
		t.Errorf("description = %q", status.Description)
	}
	if status.Time == nil || !status.Time.Equal(minutes(5)) {
		t.Errorf("time = %v, want %v", status.Time, minutes(5))
	}
}

func TestAlarmFromFrameStatusFlagOnly(t *testing.T) {
	// some brands flag alarm_status while the code register stays 0
	frame := eventFrame(map[string]timeseries.Series{
		MetricAlarmStatus: {{Time: minutes(0), Value: 1}},
		MetricAlarmCode:   {{Time: minutes(0), Value: 0}},
	})
	status := AlarmFromFrame(frame, mustProvider(t, "ivt"))
	if !status.IsAlarm {
		t.Fatal("expected active alarm from status flag")
	}
	if status.Code != 0 {
		t.Errorf("code = %d, want 0", status.Code)
	}
	if status.Time != nil {
		t.Errorf("time = %v, want nil (no nonzero code)", status.Time)
	}
}

func TestAlarmFromFrameInactive(t *testing.T) {
	frame := eventFrame(map[string]timeseries.Series{
		MetricAlarmStatus: {{Time: minutes(0), Value: 0}},
		MetricAlarmCode:   {{Time: minutes(0), Value: 0}},
	})
	status := AlarmFromFrame(frame, mustProvider(t, "thermia"))
	if status.IsAlarm {
		t.Fatal("expected no alarm")
	}
	if status.Description != "no alarm" {
		t.Errorf("description = %q", status.Description)
	}
}

func TestAlarmFromFrameEmpty(t *testing.T) {
	frame := &timeseries.Frame{Columns: map[string][]*float64{}}
	status := AlarmFromFrame(frame, mustProvider(t, "nibe"))
	if status.IsAlarm {
		t.Fatal("expected no alarm on empty frame")
	}
}
