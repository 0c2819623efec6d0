package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/readlit/internal/activity"
	"github.com/julianstephens/readlit/internal/heatmap"
	"github.com/julianstephens/readlit/internal/models"
	"github.com/julianstephens/readlit/internal/sigcache"
	"github.com/julianstephens/readlit/internal/utils"
)

// levelStyles maps heat levels 0-4 to cell styles, darkest to brightest.
var levelStyles = [5]lipgloss.Style{
	lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("22")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("28")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
}

type HeatmapCmd struct {
	Year   int    `short:"y" help:"Year to show, defaults to the current year."`
	Metric string `short:"m" help:"Metric (reading-minutes|reading-days|completions), defaults to the configured one."`
	Tag    string `short:"t" help:"Limit to books carrying this tag."`
}

func (c *HeatmapCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}
	loc, err := utils.LoadLocation(settings.Timezone)
	if err != nil {
		return fmt.Errorf("invalid configured timezone %q: %w", settings.Timezone, err)
	}

	metricName := c.Metric
	if metricName == "" {
		metricName = settings.HeatmapMetric
	}
	metric, err := activity.ParseMetric(metricName)
	if err != nil {
		return err
	}

	year := c.Year
	if year == 0 {
		year = time.Now().In(loc).Year()
	}

	snap, err := ctx.Store.Snapshot()
	if err != nil {
		return err
	}
	snap = scopeSnapshot(snap, c.Tag)

	r := activity.YearRange(year)
	today := utils.DayString(time.Now().In(loc))

	counts, err := cachedCounts(ctx, snap, metric, r, c.Tag, year, today, loc)
	if err != nil {
		return err
	}

	builder := heatmap.New(loc)
	weeks, err := builder.BuildGrid(counts, r)
	if err != nil {
		return err
	}
	stats, err := builder.BuildStats(counts, r)
	if err != nil {
		return err
	}

	fmt.Printf("%d (%s)\n\n", year, metric)
	fmt.Print(renderGrid(weeks))
	fmt.Println()
	printHeatmapStats(stats)
	return nil
}

// cachedCounts runs the aggregation through the signature cache so repeated
// views of an unchanged collection skip recomputation.
func cachedCounts(ctx *Context, snap models.Snapshot, metric activity.Metric, r activity.DayRange, tag string, year int, today string, loc *time.Location) (map[string]int, error) {
	sig, err := sigcache.Compute(snap.Books, snap.SessionCounts())
	if err != nil {
		return nil, err
	}

	scope := tag
	if scope == "" {
		scope = "all"
	}
	params := sigcache.Params{Scope: scope, Year: year, Metric: string(metric)}

	agg := activity.New(loc)
	v, err := ctx.Cache.GetOrCompute(params, sig, func() (any, error) {
		return agg.DailyCounts(metric, r, snap, today)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]int), nil
}

// scopeSnapshot keeps only books carrying the tag, and their sessions.
func scopeSnapshot(snap models.Snapshot, tag string) models.Snapshot {
	if tag == "" {
		return snap
	}
	out := models.Snapshot{}
	keep := make(map[string]bool)
	for _, b := range snap.Books {
		if b.HasTag(tag) {
			out.Books = append(out.Books, b)
			keep[b.ID] = true
		}
	}
	for _, s := range snap.Sessions {
		if keep[s.BookID] {
			out.Sessions = append(out.Sessions, s)
		}
	}
	return out
}

// renderGrid draws weeks as columns, Monday row first, one styled cell per day.
func renderGrid(weeks []heatmap.Week) string {
	labels := [7]string{"Mon", "", "Wed", "", "Fri", "", "Sun"}

	var sb strings.Builder
	for row := 0; row < 7; row++ {
		sb.WriteString(fmt.Sprintf("%4s ", labels[row]))
		for _, week := range weeks {
			cell := week.Days[row]
			if !cell.InRange {
				sb.WriteString("  ")
				continue
			}
			sb.WriteString(levelStyles[cell.Level].Render("■"))
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func printHeatmapStats(stats heatmap.Stats) {
	fmt.Printf("Active days:    %d\n", stats.ActiveDays)
	fmt.Printf("Current streak: %d\n", stats.CurrentStreak)
	fmt.Printf("Longest streak: %d\n", stats.LongestStreak)
	if stats.BestDay != nil {
		fmt.Printf("Best day:       %s (%d)\n", stats.BestDay.Day, stats.BestDay.Count)
	}
	if stats.BestWeekday != nil {
		fmt.Printf("Best weekday:   %s (%d)\n", stats.BestWeekday.Weekday, stats.BestWeekday.Count)
	}
	if stats.BestWeek != nil {
		fmt.Printf("Best week:      %d-W%02d (%d)\n", stats.BestWeek.Year, stats.BestWeek.Week, stats.BestWeek.Count)
	}
}
