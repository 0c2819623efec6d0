package cli

import (
	"fmt"

	"github.com/julianstephens/readlit/internal/validation"
)

type ValidateCmd struct{}

func (cmd *ValidateCmd) Run(ctx *Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	defer ctx.Store.Close()

	books, err := ctx.Store.GetAllBooks()
	if err != nil {
		return fmt.Errorf("failed to load books: %w", err)
	}
	sessions, err := ctx.Store.GetAllSessions()
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}

	validator := validation.New()

	fmt.Println("Validating books...")
	bookResult := validator.ValidateBooks(books)

	fmt.Println("Validating sessions...")
	sessResult := validator.ValidateSessions(sessions, books)

	combined := validation.ValidationResult{
		Conflicts: append(bookResult.Conflicts, sessResult.Conflicts...),
	}

	fmt.Println()
	fmt.Println(combined.FormatReport())

	return nil
}
