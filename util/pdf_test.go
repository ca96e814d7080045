package util

import "testing"

func TestExtractTextInvalidPDF(t *testing.T) {
	if _, err := ExtractText([]byte("this is not a pdf")); err == nil {
		t.Fatal("expected error for non-pdf bytes")
	}
}

func TestExtractTextEmptyInput(t *testing.T) {
	if _, err := ExtractText(nil); err == nil {
		t.Fatal("expected error for empty input")
	}
}
