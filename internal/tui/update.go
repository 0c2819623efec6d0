package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/julianstephens/readlit/internal/models"
	"github.com/julianstephens/readlit/internal/utils"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		if m.state == StateLogging {
			return m.updateForm(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Tab):
			m.state = (m.state + 1) % tabCount
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = (m.state - 1 + tabCount) % tabCount
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Refresh):
			m.refresh()
		case key.Matches(msg, m.keys.Log):
			if err := m.newSessionForm(); err != nil {
				m.statusMsg = fmt.Sprintf("⚠ %v", err)
				return m, nil
			}
			m.previousState = m.state
			m.state = StateLogging
			return m, m.form.Init()
		case key.Matches(msg, m.keys.Reroll):
			if m.state == StateChallenges {
				m.rerollFirst()
			}
		case key.Matches(msg, m.keys.Claim):
			if m.state == StateChallenges {
				m.claimFirst()
			}
		}
	}

	if m.state == StateLogging {
		return m.updateForm(msg)
	}
	return m, nil
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if err := m.saveSession(); err != nil {
			m.statusMsg = fmt.Sprintf("⚠ %v", err)
		} else {
			m.statusMsg = "Session logged"
			m.cache.Invalidate()
			m.refresh()
		}
		m.state = m.previousState
		m.form = nil
	case huh.StateAborted:
		m.state = m.previousState
		m.form = nil
	}

	return m, cmd
}

// saveSession converts the completed form into a stored reading session.
func (m *Model) saveSession() error {
	f := m.sessionForm

	startedAt, err := utils.CombineDateAndTime(f.Date, f.Start, m.loc)
	if err != nil {
		return fmt.Errorf("invalid start: %w", err)
	}
	endedAt, err := utils.CombineDateAndTime(f.Date, f.End, m.loc)
	if err != nil {
		return fmt.Errorf("invalid end: %w", err)
	}
	// An end at or before the start means the session crossed midnight
	if !endedAt.After(startedAt) {
		endedAt = endedAt.AddDate(0, 0, 1)
	}

	pages := 0
	if f.Pages != "" {
		pages, err = strconv.Atoi(f.Pages)
		if err != nil || pages < 0 {
			return fmt.Errorf("invalid page count %q", f.Pages)
		}
	}

	return m.store.AddSession(models.ReadingSession{
		ID:        uuid.New().String(),
		BookID:    f.BookID,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		PagesRead: pages,
		Note:      f.Note,
		CreatedAt: time.Now().UTC(),
	})
}

// rerollFirst rerolls the first current challenge that still can be.
func (m *Model) rerollFirst() {
	snap, err := m.store.Snapshot()
	if err != nil {
		m.statusMsg = fmt.Sprintf("⚠ %v", err)
		return
	}
	for _, row := range m.challenges {
		if !row.Record.CanReroll() {
			continue
		}
		rec, err := m.engine.Reroll(snap, row.Record.ID, time.Now().In(m.loc))
		if err != nil {
			m.statusMsg = fmt.Sprintf("⚠ %v", err)
			return
		}
		m.statusMsg = fmt.Sprintf("Rerolled: %s", rec.Detail)
		m.refresh()
		return
	}
	m.statusMsg = "No challenge can be rerolled"
}

// claimFirst claims the first completed unclaimed challenge.
func (m *Model) claimFirst() {
	for _, row := range m.challenges {
		if !row.Record.Completed() || row.Record.Claimed() {
			continue
		}
		rec, err := m.engine.Claim(row.Record.ID, time.Now().In(m.loc))
		if err != nil {
			m.statusMsg = fmt.Sprintf("⚠ %v", err)
			return
		}
		m.statusMsg = fmt.Sprintf("Claimed: %s 🎉", rec.Title)
		m.refresh()
		return
	}
	m.statusMsg = "Nothing to claim yet"
}
