package metrics

import (
	"time"

	"padctl/internal/touchpad"
)

type ToggleRecord struct {
	Timestamp time.Time `json:"timestamp"`
	State     string    `json:"state"` // "enabled" | "disabled"
	Source    string    `json:"source"`
	Emulated  bool      `json:"emulated"`
	LatencyMs int64     `json:"latency_ms"`
}

type DailyMetrics struct {
	Date          string         `json:"date"`
	Toggles       []ToggleRecord `json:"toggles"`
	ToggleCount   int            `json:"toggle_count"`
	EmulatedCount int            `json:"emulated_count"`
	BySource      map[string]int `json:"by_source"`
}

type TotalMetrics struct {
	TotalToggles   int            `json:"total_toggles"`
	EmulatedCount  int            `json:"emulated_count"`
	ActiveDays     int            `json:"active_days"`
	AvgPerDay      int            `json:"avg_per_day"`
	BySource       map[string]int `json:"by_source"`
	BusiestDay     string         `json:"busiest_day"`
	BusiestToggles int            `json:"busiest_toggles"`
}

type MetricsManager struct {
	storage *Storage
}

func NewMetricsManager(storagePath string) (*MetricsManager, error) {
	storage, err := NewStorage(storagePath)
	if err != nil {
		return nil, err
	}

	return &MetricsManager{storage: storage}, nil
}

// RecordToggle appends a state change to today's file.
func (mm *MetricsManager) RecordToggle(ev touchpad.StateChange) (*ToggleRecord, error) {
	record := &ToggleRecord{
		Timestamp: ev.At,
		State:     ev.State.String(),
		Source:    string(ev.Source),
		Emulated:  ev.Emulated,
		LatencyMs: ev.Latency.Milliseconds(),
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}

	if err := mm.storage.SaveToggle(record); err != nil {
		return record, err
	}

	return record, nil
}

func (mm *MetricsManager) GetTodayMetrics() (*DailyMetrics, error) {
	today := time.Now().Format("2006-01-02")
	return mm.storage.GetDailyMetrics(today)
}

func (mm *MetricsManager) GetTotalMetrics() (*TotalMetrics, error) {
	return mm.storage.GetTotalMetrics()
}

func (mm *MetricsManager) GetRecentDays(days int) ([]*DailyMetrics, error) {
	return mm.storage.GetRecentDays(days)
}

func (mm *MetricsManager) ClearAllMetrics() error {
	return mm.storage.ClearAllMetrics()
}
