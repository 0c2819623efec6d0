package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/readlit/internal/activity"
	"github.com/julianstephens/readlit/internal/challenge"
	"github.com/julianstephens/readlit/internal/heatmap"
	"github.com/julianstephens/readlit/internal/models"
	"github.com/julianstephens/readlit/internal/sigcache"
	"github.com/julianstephens/readlit/internal/stats"
	"github.com/julianstephens/readlit/internal/storage"
	"github.com/julianstephens/readlit/internal/utils"
)

type SessionState int

const (
	StateHeatmap SessionState = iota
	StateStats
	StateChallenges
	StateLogging
)

// tabCount is the number of cycling tabs; StateLogging is modal, not a tab.
const tabCount = 3

// SessionFormModel backs the huh session log form.
type SessionFormModel struct {
	BookID string
	Date   string
	Start  string
	End    string
	Pages  string
	Note   string
}

// challengeRow pairs a record with its live progress for rendering.
type challengeRow struct {
	Record   models.ChallengeRecord
	Progress challenge.Progress
}

type Model struct {
	store         storage.Provider
	cache         *sigcache.Cache
	loc           *time.Location
	engine        *challenge.Engine
	statsAgg      *stats.Aggregator
	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	form          *huh.Form
	sessionForm   *SessionFormModel

	weeks      []heatmap.Week
	heatStats  heatmap.Stats
	metric     activity.Metric
	year       int
	topAuthors []stats.TopEntry
	topGenres  []stats.TopEntry
	monthly    []stats.MonthlyPoint
	picks      stats.NerdPicks
	challenges []challengeRow

	statusMsg string
	quitting  bool
	width     int
	height    int
}

func NewModel(store storage.Provider, cache *sigcache.Cache, loc *time.Location) Model {
	if loc == nil {
		loc = time.Local
	}
	m := Model{
		store:    store,
		cache:    cache,
		loc:      loc,
		engine:   challenge.New(store, loc),
		statsAgg: stats.New(),
		state:    StateHeatmap,
		keys:     DefaultKeyMap(),
		help:     help.New(),
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

// refresh recomputes every derived view from a fresh snapshot.
func (m *Model) refresh() {
	m.statusMsg = ""

	settings, err := m.store.GetSettings()
	if err != nil {
		m.statusMsg = fmt.Sprintf("⚠ %v", err)
		return
	}

	snap, err := m.store.Snapshot()
	if err != nil {
		m.statusMsg = fmt.Sprintf("⚠ %v", err)
		return
	}

	now := time.Now().In(m.loc)
	today := utils.DayString(now)
	m.year = now.Year()

	m.metric, err = activity.ParseMetric(settings.HeatmapMetric)
	if err != nil {
		m.metric = activity.MetricReadingMinutes
	}

	r := activity.YearRange(m.year)
	counts, err := m.cachedCounts(snap, r, today)
	if err != nil {
		m.statusMsg = fmt.Sprintf("⚠ %v", err)
		return
	}

	builder := heatmap.New(m.loc)
	if m.weeks, err = builder.BuildGrid(counts, r); err != nil {
		m.statusMsg = fmt.Sprintf("⚠ %v", err)
		return
	}
	if m.heatStats, err = builder.BuildStats(counts, r); err != nil {
		m.statusMsg = fmt.Sprintf("⚠ %v", err)
		return
	}

	filter := stats.Filter{Year: m.year}
	if m.topAuthors, err = m.statsAgg.TopList(stats.FieldAuthors, snap.Books, filter, settings.TopListSize); err != nil {
		m.statusMsg = fmt.Sprintf("⚠ %v", err)
		return
	}
	if m.topGenres, err = m.statsAgg.TopList(stats.FieldGenres, snap.Books, filter, settings.TopListSize); err != nil {
		m.statusMsg = fmt.Sprintf("⚠ %v", err)
		return
	}
	m.monthly = m.statsAgg.MonthlySeries(snap.Books, filter, m.year)
	m.picks = m.statsAgg.Superlatives(snap.Books, filter)

	m.refreshChallenges(snap, now, today)
}

func (m *Model) refreshChallenges(snap models.Snapshot, now time.Time, today string) {
	if _, err := m.engine.EnsureCurrent(snap, now); err != nil {
		m.statusMsg = fmt.Sprintf("⚠ %v", err)
	}
	if _, err := m.engine.ScanCompletions(snap, now); err != nil {
		m.statusMsg = fmt.Sprintf("⚠ %v", err)
	}

	records, err := m.store.GetAllChallenges()
	if err != nil {
		m.statusMsg = fmt.Sprintf("⚠ %v", err)
		return
	}

	m.challenges = nil
	for _, rec := range records {
		if today < rec.PeriodStart || today >= rec.PeriodEnd {
			continue
		}
		progress, err := m.engine.Progress(snap, rec, now)
		if err != nil {
			m.statusMsg = fmt.Sprintf("⚠ %v", err)
			continue
		}
		m.challenges = append(m.challenges, challengeRow{Record: rec, Progress: progress})
	}
}

func (m *Model) cachedCounts(snap models.Snapshot, r activity.DayRange, today string) (map[string]int, error) {
	sig, err := sigcache.Compute(snap.Books, snap.SessionCounts())
	if err != nil {
		return nil, err
	}
	params := sigcache.Params{Scope: "all", Year: m.year, Metric: string(m.metric)}
	agg := activity.New(m.loc)
	v, err := m.cache.GetOrCompute(params, sig, func() (any, error) {
		return agg.DailyCounts(m.metric, r, snap, today)
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]int), nil
}

// newSessionForm builds the huh form for logging a session against the
// current non-deleted books.
func (m *Model) newSessionForm() error {
	books, err := m.store.GetAllBooks()
	if err != nil {
		return err
	}
	if len(books) == 0 {
		return fmt.Errorf("no books to log against, add one first")
	}

	options := make([]huh.Option[string], 0, len(books))
	for _, b := range books {
		options = append(options, huh.NewOption(fmt.Sprintf("%s - %s", b.Title, b.Author), b.ID))
	}

	m.sessionForm = &SessionFormModel{
		Date: utils.DayString(time.Now().In(m.loc)),
	}
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Book").
				Options(options...).
				Value(&m.sessionForm.BookID),
			huh.NewInput().
				Title("Date (YYYY-MM-DD)").
				Value(&m.sessionForm.Date),
			huh.NewInput().
				Title("Start (HH:MM)").
				Value(&m.sessionForm.Start),
			huh.NewInput().
				Title("End (HH:MM)").
				Value(&m.sessionForm.End),
			huh.NewInput().
				Title("Pages (optional)").
				Value(&m.sessionForm.Pages),
			huh.NewInput().
				Title("Note (optional)").
				Value(&m.sessionForm.Note),
		),
	)
	return nil
}
