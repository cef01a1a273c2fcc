package metrics

import (
	"fmt"
	"time"
)

type StatsFormatter struct{}

func NewStatsFormatter() *StatsFormatter {
	return &StatsFormatter{}
}

// FormatToggleLines renders the short after-toggle summary shown by the
// daemon's in-place terminal display.
func (sf *StatsFormatter) FormatToggleLines(record *ToggleRecord, todayMetrics *DailyMetrics) []string {
	mode := "direct"
	if record.Emulated {
		mode = "emulated"
	}

	lines := []string{
		fmt.Sprintf("✅ Touchpad %s (%s, via %s)", record.State, mode, record.Source),
	}

	if todayMetrics != nil && todayMetrics.ToggleCount > 0 {
		line := fmt.Sprintf("📈 Today: %d toggles", todayMetrics.ToggleCount)
		if todayMetrics.EmulatedCount > 0 {
			line += fmt.Sprintf(" (%d emulated)", todayMetrics.EmulatedCount)
		}
		lines = append(lines, line)
	}

	return lines
}

func (sf *StatsFormatter) FormatTotalStats(totalMetrics *TotalMetrics) string {
	if totalMetrics.TotalToggles == 0 {
		return "📊 No usage statistics yet. Toggle the touchpad to start tracking!"
	}

	stats := "📊 Total Statistics:\n"
	stats += fmt.Sprintf("   Toggles: %d\n", totalMetrics.TotalToggles)
	stats += fmt.Sprintf("   Emulated: %d\n", totalMetrics.EmulatedCount)
	stats += fmt.Sprintf("   Active days: %d\n", totalMetrics.ActiveDays)
	stats += fmt.Sprintf("   Avg toggles/day: %d\n", totalMetrics.AvgPerDay)
	if totalMetrics.BusiestDay != "" {
		stats += fmt.Sprintf("   Busiest day: %s (%d toggles)\n", totalMetrics.BusiestDay, totalMetrics.BusiestToggles)
	}
	for _, source := range []string{"hotkey", "tray", "ipc", "bridge", "other"} {
		if count := totalMetrics.BySource[source]; count > 0 {
			stats += fmt.Sprintf("   Via %s: %d\n", source, count)
		}
	}

	return stats
}

func (sf *StatsFormatter) FormatRecentDays(recentMetrics []*DailyMetrics) string {
	activeDays := 0
	totalToggles := 0

	for _, day := range recentMetrics {
		if day.ToggleCount > 0 {
			activeDays++
			totalToggles += day.ToggleCount
		}
	}

	if activeDays == 0 {
		return "📅 No recent activity."
	}

	stats := fmt.Sprintf("📅 Last %d days:\n", len(recentMetrics))
	stats += fmt.Sprintf("   Active days: %d/%d\n", activeDays, len(recentMetrics))
	stats += fmt.Sprintf("   Total toggles: %d", totalToggles)

	return stats
}

// FormatTimestamp renders a record time for the daily listing.
func FormatTimestamp(t time.Time) string {
	return t.Local().Format("15:04:05")
}
