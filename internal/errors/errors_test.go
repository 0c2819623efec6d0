package errors

import (
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	if got := Format(nil); got != "" {
		t.Errorf("Format(nil) = %q, want empty", got)
	}
	if got := Format(fmt.Errorf("book not found")); got != "Error: book not found" {
		t.Errorf("Format = %q", got)
	}
}
