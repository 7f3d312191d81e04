package apperr

import (
	"errors"
	"testing"
)

func TestInputErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &InputError{Reason: "file_too_large", Err: cause}
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to find wrapped cause")
	}
	if err.Error() == "" {
		t.Fatalf("expected non-empty error message")
	}
}

func TestFieldExtractorErrorMessage(t *testing.T) {
	err := &FieldExtractorError{Extractor: "mobile", Err: errors.New("timeout")}
	want := "field extractor mobile failed: timeout"
	if err.Error() != want {
		t.Fatalf("got %q, want %q", err.Error(), want)
	}
}
