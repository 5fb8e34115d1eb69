package symbols

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultTable(t *testing.T) {
	table := Default()

	if got := table.Len(); got != 56 {
		t.Errorf("Len() = %d, want 56", got)
	}
	if got := table.MaxTokenRunes(); got != 3 {
		t.Errorf("MaxTokenRunes() = %d, want 3", got)
	}
	if diff := cmp.Diff([]string{"'ə"}, table.Duplicates()); diff != "" {
		t.Errorf("Duplicates() mismatch (-want +got):\n%s", diff)
	}
	if Default() != table {
		t.Error("Default() should return the same table on every call")
	}
}

func TestLookup(t *testing.T) {
	table := Default()

	tests := []struct {
		token string
		want  string
		found bool
	}{
		{"k", "k", true},
		{"a", "æ", true},
		{"sh", "ʃ", true},
		{"th", "[θ|ð]", true},
		{"'ə", "'ʌ", true},
		{"ȯ", "ɔ", true},
		{"ȯi", "ɔɪ", true},
		{"ḵ", "x", true},
		{"yü", "(j)u", true},
		{"-", ".", true},
		{`\`, "/", true},
		{"o", "", false},
		{"@", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := table.Lookup(tt.token)
			if ok != tt.found {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.token, ok, tt.found)
			}
			if got != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.token, got, tt.want)
			}
			if table.IsToken(tt.token) != tt.found {
				t.Errorf("IsToken(%q) = %v, want %v", tt.token, !tt.found, tt.found)
			}
		})
	}
}

func TestHasPrefix(t *testing.T) {
	table := Default()

	tests := []struct {
		prefix string
		want   bool
	}{
		{"s", true},
		{"sh", true},
		{"shh", false},
		{"o", true},
		{"ȯ", true},
		{"ȯi", true},
		{"ȯii", false},
		{"y", true},
		{"yu", true},
		{"ˈ", true},
		{"@", false},
		{"q", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := table.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("HasPrefix(%q) = %v, want %v", tt.prefix, got, tt.want)
		}
	}
}

func TestAmbiguous(t *testing.T) {
	want := []string{"'", ",", "a", "k", "o", "s", "t", "y", "z", "ə", "ˈ"}
	if diff := cmp.Diff(want, Default().Ambiguous()); diff != "" {
		t.Errorf("Ambiguous() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewRejectsMalformedEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []Entry
	}{
		{"empty token", []Entry{{Token: "a", IPA: "æ"}, {Token: "", IPA: "x"}}},
		{"invalid utf8", []Entry{{Token: "\xff", IPA: "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.entries); err == nil {
				t.Error("expected error for malformed entries")
			}
		})
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustNew should panic on an empty token")
		}
	}()
	MustNew([]Entry{{Token: "", IPA: "x"}})
}

func TestDuplicateLastWriterWins(t *testing.T) {
	table := MustNew([]Entry{
		{Token: "x", IPA: "first"},
		{Token: "x", IPA: "second"},
	})
	if got, _ := table.Lookup("x"); got != "second" {
		t.Errorf("Lookup(x) = %q, want %q", got, "second")
	}
	if table.Len() != 1 {
		t.Errorf("Len() = %d, want 1", table.Len())
	}
}

func TestEntriesSorted(t *testing.T) {
	table := MustNew([]Entry{
		{Token: "sh", IPA: "ʃ"},
		{Token: "a", IPA: "æ"},
		{Token: "s", IPA: "s"},
	})
	want := []Entry{
		{Token: "a", IPA: "æ"},
		{Token: "s", IPA: "s"},
		{Token: "sh", IPA: "ʃ"},
	}
	if diff := cmp.Diff(want, table.Entries()); diff != "" {
		t.Errorf("Entries() mismatch (-want +got):\n%s", diff)
	}
}
