package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/readlit/internal/stats"
	"github.com/julianstephens/readlit/internal/utils"
)

type StatsCmd struct {
	Year  int    `short:"y" help:"Year scope for top lists, series, and superlatives, defaults to the current year."`
	Tag   string `short:"t" help:"Limit to books carrying this tag."`
	Top   int    `short:"n" help:"Top list size, defaults to the configured one."`
	Field string `short:"f" help:"Show a single top list (authors|publishers|languages|tags|genres|subgenres)."`
}

func (c *StatsCmd) Run(ctx *Context) error {
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

	year := c.Year
	if year == 0 {
		year = time.Now().In(loc).Year()
	}
	topN := c.Top
	if topN <= 0 {
		topN = settings.TopListSize
	}

	books, err := ctx.Store.GetAllBooks()
	if err != nil {
		return err
	}

	agg := stats.New()
	filter := stats.Filter{Tag: c.Tag, Year: year}

	fields := stats.Fields()
	if c.Field != "" {
		fields = []stats.Field{stats.Field(c.Field)}
	}

	for _, field := range fields {
		entries, err := agg.TopList(field, books, filter, topN)
		if err != nil {
			return err
		}
		fmt.Printf("Top %s (%d):\n", field, year)
		if len(entries) == 0 {
			fmt.Println("  (none)")
		}
		for i, e := range entries {
			fmt.Printf("  %d. %s (%d)\n", i+1, e.Label, e.Count)
		}
		fmt.Println()
	}

	if c.Field != "" {
		return nil
	}

	fmt.Printf("Monthly (%d):\n", year)
	for _, p := range agg.MonthlySeries(books, filter, year) {
		bar := ""
		for i := 0; i < p.Finished; i++ {
			bar += "▪"
		}
		fmt.Printf("  %s  %2d finished %6d pages  %s\n", p.Month, p.Finished, p.Pages, bar)
	}
	fmt.Println()

	picks := agg.Superlatives(books, filter)
	fmt.Println("Superlatives:")
	printPick("Fastest read", picks.Fastest)
	printPick("Slowest read", picks.Slowest)
	printPick("Biggest book", picks.Biggest)
	printPick("Highest rated", picks.HighestRated)
	return nil
}

func printPick(label string, p *stats.Pick) {
	if p == nil {
		fmt.Printf("  %-14s (none)\n", label+":")
		return
	}
	if p.Value == float64(int(p.Value)) {
		fmt.Printf("  %-14s %s (%d %s)\n", label+":", p.Title, int(p.Value), p.Unit)
		return
	}
	fmt.Printf("  %-14s %s (%.1f %s)\n", label+":", p.Title, p.Value, p.Unit)
}
