package main

import (
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/readlit/internal/cli"
	"github.com/julianstephens/readlit/internal/errors"
	"github.com/julianstephens/readlit/internal/logger"
	"github.com/julianstephens/readlit/internal/sigcache"
	"github.com/julianstephens/readlit/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"Storage file path." type:"path" default:"~/.config/readlit/readlit.db"`
	Debug   bool   `help:"Enable debug logging."`

	Init cli.InitCmd `cmd:"" help:"Initialize readlit storage."`
	Tui  cli.TuiCmd  `cmd:"" help:"Launch the interactive dashboard." default:"1"`
	Book struct {
		Add     cli.BookAddCmd     `cmd:"" help:"Add a book."`
		List    cli.BookListCmd    `cmd:"" help:"List books."`
		Start   cli.BookStartCmd   `cmd:"" help:"Mark a book as being read."`
		Finish  cli.BookFinishCmd  `cmd:"" help:"Mark a book as finished."`
		Rate    cli.BookRateCmd    `cmd:"" help:"Rate a book."`
		Delete  cli.BookDeleteCmd  `cmd:"" help:"Delete a book."`
		Restore cli.BookRestoreCmd `cmd:"" help:"Restore a deleted book."`
	} `cmd:"" help:"Manage books."`
	Log      cli.LogCmd      `cmd:"" help:"Log a reading session."`
	Sessions struct {
		List   cli.SessionsCmd      `cmd:"" help:"List sessions." default:"1"`
		Delete cli.SessionDeleteCmd `cmd:"" help:"Delete a session."`
	} `cmd:"" help:"Manage reading sessions."`
	Heatmap   cli.HeatmapCmd `cmd:"" help:"Show the activity heatmap."`
	Stats     cli.StatsCmd   `cmd:"" help:"Show reading statistics."`
	Challenge struct {
		Show   cli.ChallengeShowCmd   `cmd:"" help:"Show current challenges." default:"1"`
		Reroll cli.ChallengeRerollCmd `cmd:"" help:"Reroll an active challenge."`
		Claim  cli.ChallengeClaimCmd  `cmd:"" help:"Claim a completed challenge."`
	} `cmd:"" help:"Manage adaptive challenges."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a backup."`
		List    cli.BackupListCmd    `cmd:"" help:"List backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage backups."`
	Settings struct {
		Show cli.SettingsShowCmd `cmd:"" help:"Show settings." default:"1"`
		Set  cli.SettingsSetCmd  `cmd:"" help:"Change a setting."`
	} `cmd:"" help:"Manage settings."`
	Validate cli.ValidateCmd `cmd:"" help:"Validate library data."`
	Doctor   cli.DoctorCmd   `cmd:"" help:"Run health checks."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("readlit"),
		kong.Description("Reading tracker with heatmaps, stats, and adaptive challenges"),
		kong.UsageOnError(),
		kong.Vars{"version": "v0.1.0"},
	)

	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: filepath.Dir(CLI.Config),
	}); err != nil {
		errors.Fatal(err)
	}

	// Determine storage type based on extension
	var store storage.Provider
	if strings.HasSuffix(CLI.Config, ".json") {
		store = storage.NewJSONStore(CLI.Config)
	} else {
		store = storage.NewSQLiteStore(CLI.Config)
	}

	appCtx := &cli.Context{
		Store: store,
		Cache: sigcache.NewCache(),
	}

	if err := ctx.Run(appCtx); err != nil {
		errors.Fatal(err)
	}
}
