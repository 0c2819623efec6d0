package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/readlit/internal/constants"
	"github.com/julianstephens/readlit/internal/models"
	"github.com/julianstephens/readlit/internal/utils"
)

type LogCmd struct {
	Book    string `arg:"" help:"Book ID, ID prefix, or title prefix."`
	Date    string `short:"d" help:"Session date (YYYY-MM-DD), defaults to today."`
	Start   string `short:"s" help:"Start time (HH:MM)."`
	End     string `short:"e" help:"End time (HH:MM)."`
	Minutes int    `short:"m" help:"Duration in minutes, ending now (alternative to --start/--end)."`
	Pages   int    `short:"p" help:"Pages read during the session." default:"0"`
	Note    string `short:"n" help:"Optional note."`
}

func (c *LogCmd) Validate() error {
	if c.Minutes < 0 {
		return fmt.Errorf("minutes cannot be negative")
	}
	if c.Pages < 0 {
		return fmt.Errorf("pages cannot be negative")
	}
	if c.Minutes == 0 && (c.Start == "" || c.End == "") {
		return fmt.Errorf("provide either --minutes or both --start and --end")
	}
	if c.Minutes > 0 && (c.Start != "" || c.End != "") {
		return fmt.Errorf("--minutes cannot be combined with --start/--end")
	}
	return nil
}

func (c *LogCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	book, err := FindBook(ctx.Store, c.Book)
	if err != nil {
		return err
	}

	loc, err := ctx.Location()
	if err != nil {
		return err
	}

	var startedAt, endedAt time.Time
	if c.Minutes > 0 {
		endedAt = time.Now().In(loc)
		startedAt = endedAt.Add(-time.Duration(c.Minutes) * time.Minute)
	} else {
		date := c.Date
		if date == "" {
			date = utils.DayString(time.Now().In(loc))
		} else if _, err := time.Parse(constants.DateFormat, date); err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
		}

		startedAt, err = utils.CombineDateAndTime(date, c.Start, loc)
		if err != nil {
			return fmt.Errorf("invalid start time: %w", err)
		}
		endedAt, err = utils.CombineDateAndTime(date, c.End, loc)
		if err != nil {
			return fmt.Errorf("invalid end time: %w", err)
		}
		// An end at or before the start means the session crossed midnight
		if !endedAt.After(startedAt) {
			endedAt = endedAt.AddDate(0, 0, 1)
		}
	}

	sess := models.ReadingSession{
		ID:        uuid.New().String(),
		BookID:    book.ID,
		StartedAt: startedAt,
		EndedAt:   endedAt,
		PagesRead: c.Pages,
		Note:      c.Note,
		CreatedAt: time.Now().UTC(),
	}

	if err := ctx.Store.AddSession(sess); err != nil {
		return err
	}
	ctx.Cache.Invalidate()

	minutes := sess.DurationSeconds() / 60
	fmt.Printf("Logged %dm session for %s\n", minutes, book.Title)
	return nil
}

type SessionsCmd struct {
	Book string `short:"b" help:"Limit to one book (ID, ID prefix, or title prefix)."`
	Last int    `short:"n" help:"Show only the most recent N sessions." default:"20"`
}

func (c *SessionsCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	var sessions []models.ReadingSession
	var err error
	titles := make(map[string]string)

	if c.Book != "" {
		book, ferr := FindBook(ctx.Store, c.Book)
		if ferr != nil {
			return ferr
		}
		titles[book.ID] = book.Title
		sessions, err = ctx.Store.GetSessionsForBook(book.ID)
	} else {
		sessions, err = ctx.Store.GetAllSessions()
		if err == nil {
			var books []models.Book
			books, err = ctx.Store.GetAllBooks()
			for _, b := range books {
				titles[b.ID] = b.Title
			}
		}
	}
	if err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	sortSessionsDesc(sessions)
	if c.Last > 0 && len(sessions) > c.Last {
		sessions = sessions[:c.Last]
	}

	for _, s := range sessions {
		title := titles[s.BookID]
		if title == "" {
			title = s.BookID
		}
		minutes := s.DurationSeconds() / 60
		fmt.Printf("  %s  %dm  %s (ID: %s)\n",
			s.StartedAt.Format("2006-01-02 15:04"), minutes, title, s.ID[:8])
		if s.PagesRead > 0 {
			fmt.Printf("      Pages: %d\n", s.PagesRead)
		}
		if s.Note != "" {
			fmt.Printf("      Note: %s\n", s.Note)
		}
	}
	return nil
}

func sortSessionsDesc(sessions []models.ReadingSession) {
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})
}

type SessionDeleteCmd struct {
	ID string `arg:"" help:"Session ID or ID prefix."`
}

func (c *SessionDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	sessions, err := ctx.Store.GetAllSessions()
	if err != nil {
		return err
	}

	var matches []string
	for _, s := range sessions {
		if s.ID == c.ID {
			matches = []string{s.ID}
			break
		}
		if len(c.ID) >= 4 && len(s.ID) > len(c.ID) && s.ID[:len(c.ID)] == c.ID {
			matches = append(matches, s.ID)
		}
	}
	if len(matches) == 0 {
		return fmt.Errorf("no session matches %q", c.ID)
	}
	if len(matches) > 1 {
		return fmt.Errorf("session reference %q is ambiguous", c.ID)
	}

	if err := ctx.Store.DeleteSession(matches[0]); err != nil {
		return err
	}
	ctx.Cache.Invalidate()

	fmt.Printf("Deleted session: %s\n", matches[0])
	return nil
}
