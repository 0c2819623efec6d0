package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/julianstephens/readlit/internal/challenge"
	"github.com/julianstephens/readlit/internal/models"
)

type ChallengeShowCmd struct {
	All bool `help:"Include past challenges."`
}

func (c *ChallengeShowCmd) Run(ctx *Context) error {
	eng, snap, now, err := challengeSetup(ctx)
	if err != nil {
		return err
	}

	if _, err := eng.EnsureCurrent(snap, now); err != nil {
		return err
	}
	if _, err := eng.ScanCompletions(snap, now); err != nil {
		return err
	}

	records, err := ctx.Store.GetAllChallenges()
	if err != nil {
		return err
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].PeriodStart != records[j].PeriodStart {
			return records[i].PeriodStart > records[j].PeriodStart
		}
		return records[i].Kind < records[j].Kind
	})

	today := now.Format("2006-01-02")
	shown := 0
	for _, rec := range records {
		current := today >= rec.PeriodStart && today < rec.PeriodEnd
		if !c.All && !current {
			continue
		}
		shown++

		progress, err := eng.Progress(snap, rec, now)
		if err != nil {
			return err
		}
		printChallenge(rec, progress)
	}

	if shown == 0 {
		fmt.Println("No challenges found")
	}
	return nil
}

func printChallenge(rec models.ChallengeRecord, p challenge.Progress) {
	state := "active"
	switch {
	case rec.Claimed():
		state = "claimed"
	case rec.Completed():
		state = "completed"
	}

	fmt.Printf("[%s] %s: %s (ID: %s)\n", rec.Kind, rec.Title, state, rec.ID[:8])
	fmt.Printf("    %s\n", rec.Detail)
	fmt.Printf("    %s  %d/%d %s (%s)\n",
		progressBar(p.Fraction()), p.Value, p.Target, p.UnitSuffix, p.Remaining())
	if rec.CanReroll() {
		fmt.Printf("    Reroll available\n")
	}
}

func progressBar(fraction float64) string {
	const width = 20
	filled := int(fraction * width)
	return "[" + strings.Repeat("=", filled) + strings.Repeat(" ", width-filled) + "]"
}

type ChallengeRerollCmd struct {
	ID string `arg:"" help:"Challenge ID or ID prefix."`
}

func (c *ChallengeRerollCmd) Run(ctx *Context) error {
	eng, snap, now, err := challengeSetup(ctx)
	if err != nil {
		return err
	}

	id, err := resolveChallengeID(ctx, c.ID)
	if err != nil {
		return err
	}

	rec, err := eng.Reroll(snap, id, now)
	if err != nil {
		return err
	}

	fmt.Printf("Rerolled: %s\n", rec.Detail)
	return nil
}

type ChallengeClaimCmd struct {
	ID string `arg:"" help:"Challenge ID or ID prefix."`
}

func (c *ChallengeClaimCmd) Run(ctx *Context) error {
	eng, snap, now, err := challengeSetup(ctx)
	if err != nil {
		return err
	}

	// A completion logged since the last view should be claimable immediately
	if _, err := eng.ScanCompletions(snap, now); err != nil {
		return err
	}

	id, err := resolveChallengeID(ctx, c.ID)
	if err != nil {
		return err
	}

	rec, err := eng.Claim(id, now)
	if err != nil {
		return err
	}

	fmt.Printf("Claimed: %s 🎉\n", rec.Title)
	return nil
}

func challengeSetup(ctx *Context) (*challenge.Engine, models.Snapshot, time.Time, error) {
	if err := ctx.Store.Load(); err != nil {
		return nil, models.Snapshot{}, time.Time{}, err
	}

	loc, err := ctx.Location()
	if err != nil {
		return nil, models.Snapshot{}, time.Time{}, err
	}

	snap, err := ctx.Store.Snapshot()
	if err != nil {
		return nil, models.Snapshot{}, time.Time{}, err
	}

	return challenge.New(ctx.Store, loc), snap, time.Now().In(loc), nil
}

func resolveChallengeID(ctx *Context, ref string) (string, error) {
	records, err := ctx.Store.GetAllChallenges()
	if err != nil {
		return "", err
	}

	var matches []string
	for _, rec := range records {
		if rec.ID == ref {
			return rec.ID, nil
		}
		if len(ref) >= 4 && strings.HasPrefix(rec.ID, ref) {
			matches = append(matches, rec.ID)
		}
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no challenge matches %q", ref)
	}
	if len(matches) > 1 {
		return "", fmt.Errorf("challenge reference %q is ambiguous", ref)
	}
	return matches[0], nil
}
