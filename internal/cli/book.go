package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/readlit/internal/constants"
	"github.com/julianstephens/readlit/internal/models"
)

type BookAddCmd struct {
	Title      string `arg:"" help:"Book title."`
	Author     string `short:"a" help:"Author name." required:""`
	Publisher  string `help:"Publisher name."`
	Language   string `short:"l" help:"Language code (e.g. en)."`
	Category   string `short:"c" help:"Main category (e.g. 'Fiction / Mystery / Detective')."`
	Categories string `help:"Comma-separated category strings."`
	Tags       string `short:"t" help:"Comma-separated tags."`
	Pages      int    `short:"p" help:"Page count." default:"0"`
	Status     string `short:"s" help:"Status (to_read|reading|finished)." default:"to_read"`
	From       string `help:"Reading start date (YYYY-MM-DD)."`
	To         string `help:"Reading finish date (YYYY-MM-DD)."`
}

func (c *BookAddCmd) Validate() error {
	if _, ok := models.ParseBookStatus(c.Status); !ok {
		return fmt.Errorf("invalid status: %s", c.Status)
	}
	if c.Pages < 0 {
		return fmt.Errorf("page count cannot be negative")
	}
	for _, d := range []string{c.From, c.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(constants.DateFormat, d); err != nil {
			return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", d)
		}
	}
	return nil
}

func (c *BookAddCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	status, _ := models.ParseBookStatus(c.Status)
	book := models.Book{
		ID:           uuid.New().String(),
		Title:        c.Title,
		Author:       c.Author,
		Publisher:    c.Publisher,
		Language:     c.Language,
		MainCategory: c.Category,
		Categories:   splitList(c.Categories),
		Tags:         splitList(c.Tags),
		Status:       status,
		PageCount:    c.Pages,
		CreatedAt:    time.Now().UTC(),
	}
	if c.From != "" {
		book.ReadFrom = &c.From
	}
	if c.To != "" {
		book.ReadTo = &c.To
	}

	if err := ctx.Store.AddBook(book); err != nil {
		return err
	}
	ctx.Cache.Invalidate()

	fmt.Printf("Added book: %s (ID: %s)\n", c.Title, book.ID)
	return nil
}

type BookListCmd struct {
	Status string `short:"s" help:"Filter by status (to_read|reading|finished)."`
	Tag    string `short:"t" help:"Filter by tag."`
}

func (c *BookListCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	books, err := ctx.Store.GetAllBooks()
	if err != nil {
		return err
	}

	sort.Slice(books, func(i, j int) bool {
		return books[i].Title < books[j].Title
	})

	shown := 0
	for _, b := range books {
		if c.Status != "" && string(b.Status) != c.Status {
			continue
		}
		if c.Tag != "" && !b.HasTag(c.Tag) {
			continue
		}
		shown++

		fmt.Printf("  [%s] %s - %s (ID: %s)\n", b.Status, b.Title, b.Author, b.ID[:8])
		switch b.Status {
		case models.StatusReading:
			fmt.Printf("      Started: %s\n", formatDatePtr(b.ReadFrom))
		case models.StatusFinished:
			fmt.Printf("      Read: %s - %s\n", formatDatePtr(b.ReadFrom), formatDatePtr(b.ReadTo))
		}
		if len(b.Tags) > 0 {
			fmt.Printf("      Tags: %s\n", strings.Join(b.Tags, ", "))
		}
	}

	if shown == 0 {
		fmt.Println("No books found")
	}
	return nil
}

type BookStartCmd struct {
	Book string `arg:"" help:"Book ID, ID prefix, or title prefix."`
	Date string `short:"d" help:"Start date (YYYY-MM-DD), defaults to today."`
}

func (c *BookStartCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	book, err := FindBook(ctx.Store, c.Book)
	if err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		if date, err = ctx.Today(); err != nil {
			return err
		}
	} else if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	book.Status = models.StatusReading
	book.ReadFrom = &date

	if err := ctx.Store.UpdateBook(book); err != nil {
		return err
	}
	ctx.Cache.Invalidate()

	fmt.Printf("Started reading: %s (from %s)\n", book.Title, date)
	return nil
}

type BookFinishCmd struct {
	Book string `arg:"" help:"Book ID, ID prefix, or title prefix."`
	Date string `short:"d" help:"Finish date (YYYY-MM-DD), defaults to today."`
}

func (c *BookFinishCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	book, err := FindBook(ctx.Store, c.Book)
	if err != nil {
		return err
	}

	date := c.Date
	if date == "" {
		if date, err = ctx.Today(); err != nil {
			return err
		}
	} else if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}

	book.Status = models.StatusFinished
	book.ReadTo = &date
	if book.ReadFrom == nil {
		book.ReadFrom = &date
	}

	if err := ctx.Store.UpdateBook(book); err != nil {
		return err
	}
	ctx.Cache.Invalidate()

	fmt.Printf("Finished: %s (on %s)\n", book.Title, date)
	return nil
}

type BookRateCmd struct {
	Book        string `arg:"" help:"Book ID, ID prefix, or title prefix."`
	Plot        int    `help:"Plot rating (0-5)." default:"0"`
	Characters  int    `help:"Characters rating (0-5)." default:"0"`
	Prose       int    `help:"Prose rating (0-5)." default:"0"`
	Pacing      int    `help:"Pacing rating (0-5)." default:"0"`
	Originality int    `help:"Originality rating (0-5)." default:"0"`
	Enjoyment   int    `help:"Enjoyment rating (0-5)." default:"0"`
}

func (c *BookRateCmd) Validate() error {
	for _, r := range []int{c.Plot, c.Characters, c.Prose, c.Pacing, c.Originality, c.Enjoyment} {
		if r < 0 || r > 5 {
			return fmt.Errorf("ratings must be between 0 and 5")
		}
	}
	return nil
}

func (c *BookRateCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	book, err := FindBook(ctx.Store, c.Book)
	if err != nil {
		return err
	}

	// Zero leaves a criterion untouched so ratings can be set incrementally
	setRating(&book.Ratings.Plot, c.Plot)
	setRating(&book.Ratings.Characters, c.Characters)
	setRating(&book.Ratings.Prose, c.Prose)
	setRating(&book.Ratings.Pacing, c.Pacing)
	setRating(&book.Ratings.Originality, c.Originality)
	setRating(&book.Ratings.Enjoyment, c.Enjoyment)

	if err := ctx.Store.UpdateBook(book); err != nil {
		return err
	}
	ctx.Cache.Invalidate()

	if avg, ok := book.Ratings.Average(); ok {
		fmt.Printf("Rated %s: %.1f stars average\n", book.Title, avg)
	} else {
		fmt.Printf("Cleared ratings for %s\n", book.Title)
	}
	return nil
}

func setRating(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

type BookDeleteCmd struct {
	Book string `arg:"" help:"Book ID, ID prefix, or title prefix."`
}

func (c *BookDeleteCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	book, err := FindBook(ctx.Store, c.Book)
	if err != nil {
		return err
	}

	if err := ctx.Store.DeleteBook(book.ID); err != nil {
		return err
	}
	ctx.Cache.Invalidate()

	fmt.Printf("Deleted book: %s (restore with 'readlit book restore %s')\n", book.Title, book.ID)
	return nil
}

type BookRestoreCmd struct {
	ID string `arg:"" help:"ID of the deleted book."`
}

func (c *BookRestoreCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}

	if err := ctx.Store.RestoreBook(c.ID); err != nil {
		return err
	}
	ctx.Cache.Invalidate()

	fmt.Printf("Restored book: %s\n", c.ID)
	return nil
}
