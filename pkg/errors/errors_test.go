package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSearchErrorUnwrap(t *testing.T) {
	err := Newf(ErrDuplicateID, "document %d", 7)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatal("expected errors.Is to match the sentinel")
	}
	if got, want := err.Error(), "document id already exists: document 7"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestClassifiers(t *testing.T) {
	wrapped := fmt.Errorf("adding document: %w", New(ErrInvalidWord, "bad\x01word"))
	if !IsValidation(wrapped) {
		t.Error("expected wrapped invalid word to be a validation error")
	}
	if IsValidation(New(ErrDocumentNotFound, "id 3")) {
		t.Error("not-found must not be a validation error")
	}
}
