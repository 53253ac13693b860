package services

import (
	"fmt"
	"time"

	"github.com/jang1563/worship-vocal-ai/internal/core/domain"
)

// Milestone badges, awarded by analysis count and by daily streak.
var (
	countBadges = []struct {
		min int
		tag string
	}{
		{1, "first-analysis"},
		{5, "analyses-5"},
		{10, "analyses-10"},
		{25, "analyses-25"},
		{50, "analyses-50"},
	}
	streakBadges = []struct {
		min int
		tag string
	}{
		{7, "streak-7"},
		{30, "streak-30"},
	}
)

// BuildGrowthReport compares a singer's first and latest analyses.
// history must be ordered oldest first.
func BuildGrowthReport(singerID string, history []domain.Analysis) (domain.GrowthReport, error) {
	if len(history) < 2 {
		return domain.GrowthReport{}, fmt.Errorf("service: growth for %q has %d analyses: %w", singerID, len(history), domain.ErrNotEnoughHistory)
	}
	first, latest := history[0], history[len(history)-1]

	report := domain.GrowthReport{
		SingerID:      singerID,
		TotalAnalyses: len(history),
		From:          first.CreatedAt,
		To:            latest.CreatedAt,
		Changes:       make(map[domain.DNADimension]domain.DimensionChange, len(domain.DNADimensions)),
		Streak:        dailyStreak(history),
	}
	for i, d := range domain.DNADimensions {
		c := domain.DimensionChange{
			Before: first.DNA.Get(d),
			After:  latest.DNA.Get(d),
		}
		c.Change = c.After - c.Before
		report.Changes[d] = c

		if i == 0 || c.Change > report.Changes[report.MostImproved].Change {
			report.MostImproved = d
		}
		if i == 0 || c.After < report.Changes[report.NeedsFocus].After {
			report.NeedsFocus = d
		}
	}

	report.Badges = []string{}
	for _, b := range countBadges {
		if report.TotalAnalyses >= b.min {
			report.Badges = append(report.Badges, b.tag)
		}
	}
	for _, b := range streakBadges {
		if report.Streak >= b.min {
			report.Badges = append(report.Badges, b.tag)
		}
	}
	return report, nil
}

// dailyStreak counts the run of consecutive UTC days with an analysis,
// ending on the day of the latest one.
func dailyStreak(history []domain.Analysis) int {
	days := make(map[time.Time]bool, len(history))
	for _, a := range history {
		days[truncateDay(a.CreatedAt)] = true
	}
	day := truncateDay(history[len(history)-1].CreatedAt)
	streak := 0
	for days[day] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
