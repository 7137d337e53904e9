package domain

import "testing"

func TestArticleHasTitle(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"":                 false,
		NotAvailable:       false,
		"Markets rally":    true,
		" leading spaces ": true,
	}
	for title, want := range cases {
		if got := (Article{Title: title}).HasTitle(); got != want {
			t.Fatalf("HasTitle(%q) = %v, want %v", title, got, want)
		}
	}
}

func TestOrNA(t *testing.T) {
	t.Parallel()

	if got := OrNA("   "); got != NotAvailable {
		t.Fatalf("expected sentinel for blank value, got %q", got)
	}
	if got := OrNA("Reuters"); got != "Reuters" {
		t.Fatalf("unexpected value: %q", got)
	}
}

func TestFormatPublished(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"2025-11-08T14:30:00Z", "2025-11-08 14:30:00"},
		{"2025-11-08T14:30:00+02:00", "2025-11-08 14:30:00"},
		{"not a date", "not a date"},
		{NotAvailable, NotAvailable},
	}
	for _, tt := range tests {
		if got := FormatPublished(tt.in); got != tt.want {
			t.Fatalf("FormatPublished(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
