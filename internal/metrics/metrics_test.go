package metrics

import (
	"testing"
	"time"

	"padctl/internal/touchpad"
)

func newTestManager(t *testing.T) *MetricsManager {
	t.Helper()
	mm, err := NewMetricsManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewMetricsManager: %v", err)
	}
	return mm
}

func TestRecordToggleAccumulatesDailyTotals(t *testing.T) {
	mm := newTestManager(t)

	events := []touchpad.StateChange{
		{State: touchpad.Disabled, Source: touchpad.SourceHotkey, At: time.Now()},
		{State: touchpad.Enabled, Source: touchpad.SourceHotkey, At: time.Now()},
		{State: touchpad.Disabled, Source: touchpad.SourceTray, Emulated: true, At: time.Now()},
	}
	for _, ev := range events {
		if _, err := mm.RecordToggle(ev); err != nil {
			t.Fatalf("RecordToggle: %v", err)
		}
	}

	today, err := mm.GetTodayMetrics()
	if err != nil {
		t.Fatalf("GetTodayMetrics: %v", err)
	}
	if today.ToggleCount != 3 {
		t.Errorf("ToggleCount = %d, want 3", today.ToggleCount)
	}
	if today.EmulatedCount != 1 {
		t.Errorf("EmulatedCount = %d, want 1", today.EmulatedCount)
	}
	if today.BySource["hotkey"] != 2 || today.BySource["tray"] != 1 {
		t.Errorf("BySource = %v, want hotkey:2 tray:1", today.BySource)
	}
	if today.Toggles[0].State != "disabled" {
		t.Errorf("first record state = %q, want disabled", today.Toggles[0].State)
	}
}

func TestTotalsSurviveManagerRestart(t *testing.T) {
	dir := t.TempDir()

	mm, err := NewMetricsManager(dir)
	if err != nil {
		t.Fatalf("NewMetricsManager: %v", err)
	}
	for i := 0; i < 4; i++ {
		if _, err := mm.RecordToggle(touchpad.StateChange{
			State:  touchpad.Disabled,
			Source: touchpad.SourceIPC,
			At:     time.Now(),
		}); err != nil {
			t.Fatalf("RecordToggle: %v", err)
		}
	}

	// New manager over the same directory sees the persisted records.
	mm2, err := NewMetricsManager(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	total, err := mm2.GetTotalMetrics()
	if err != nil {
		t.Fatalf("GetTotalMetrics: %v", err)
	}
	if total.TotalToggles != 4 {
		t.Errorf("TotalToggles = %d, want 4", total.TotalToggles)
	}
	if total.ActiveDays != 1 {
		t.Errorf("ActiveDays = %d, want 1", total.ActiveDays)
	}
	if total.BySource["ipc"] != 4 {
		t.Errorf("BySource[ipc] = %d, want 4", total.BySource["ipc"])
	}
}

func TestClearAllMetricsRemovesHistory(t *testing.T) {
	mm := newTestManager(t)

	if _, err := mm.RecordToggle(touchpad.StateChange{
		State:  touchpad.Enabled,
		Source: touchpad.SourceOther,
		At:     time.Now(),
	}); err != nil {
		t.Fatalf("RecordToggle: %v", err)
	}

	if err := mm.ClearAllMetrics(); err != nil {
		t.Fatalf("ClearAllMetrics: %v", err)
	}

	total, err := mm.GetTotalMetrics()
	if err != nil {
		t.Fatalf("GetTotalMetrics: %v", err)
	}
	if total.TotalToggles != 0 {
		t.Errorf("TotalToggles after clear = %d, want 0", total.TotalToggles)
	}
}

func TestGetRecentDaysIncludesEmptyDays(t *testing.T) {
	mm := newTestManager(t)

	days, err := mm.GetRecentDays(7)
	if err != nil {
		t.Fatalf("GetRecentDays: %v", err)
	}
	if len(days) != 7 {
		t.Fatalf("len = %d, want 7", len(days))
	}
	if days[6].Date != time.Now().Format("2006-01-02") {
		t.Errorf("last day = %q, want today", days[6].Date)
	}
}

func TestFormatToggleLines(t *testing.T) {
	sf := NewStatsFormatter()
	record := &ToggleRecord{State: "disabled", Source: "hotkey", Emulated: true}
	today := &DailyMetrics{ToggleCount: 5, EmulatedCount: 2}

	lines := sf.FormatToggleLines(record, today)
	if len(lines) != 2 {
		t.Fatalf("len(lines) = %d, want 2", len(lines))
	}
	if lines[0] != "✅ Touchpad disabled (emulated, via hotkey)" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "📈 Today: 5 toggles (2 emulated)" {
		t.Errorf("line 1 = %q", lines[1])
	}
}
