package extract

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		ext   string
		want  string
	}{
		{"A/B:C", ".pdf", "A-B-C.pdf"},
		{"ДБН В.2.2-15:2019 Житлові будинки", ".pdf", "ДБН_В.2.2-15-2019_Житлові_будинки.pdf"},
		{"  leading and   trailing  ", ".html", "leading_and_trailing.html"},
		{"a _ b", ".pdf", "a_b.pdf"},
		{`x\y?z%w*v|u"t<s>r`, ".pdf", "x-y-z-w-v-u-t-s-r.pdf"},
		{"", ".html", "document.html"},
		{" \t\n ", ".pdf", "document.pdf"},
		{"ДБН\u00a0В.2.2\u2003Житлові", ".pdf", "ДБН_В.2.2_Житлові.pdf"},
		{"\u202fДСТУ\u3000Б\u00a0", ".pdf", "ДСТУ_Б.pdf"},
	}
	for _, tt := range tests {
		if got := Filename(tt.title, tt.ext); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.title, got, tt.want)
		}
	}
}

func TestFilename_NoInvalidCharacters(t *testing.T) {
	got := Filename(`A/B:C \ ? % * | " < >`, "")
	if strings.ContainsAny(got, `/\?%*:|"<>`) {
		t.Errorf("Filename kept an invalid character: %q", got)
	}
}

func TestFilename_DeterministicAndIdempotent(t *testing.T) {
	title := "ДСТУ  Б  В.2.7-46:2010  /  Цементи"
	a := Filename(title, "")
	b := Filename(title, "")
	if a != b {
		t.Fatalf("not deterministic: %q vs %q", a, b)
	}
	if again := Filename(a, ""); again != a {
		t.Errorf("not idempotent: %q -> %q", a, again)
	}
}

func TestFilename_Truncates(t *testing.T) {
	long := strings.Repeat("Ж", 150) + " " + strings.Repeat("я", 150)
	got := Filename(long, ".pdf")
	stem := strings.TrimSuffix(got, ".pdf")
	if n := utf8.RuneCountInString(stem); n != MaxFilenameRunes {
		t.Errorf("stem has %d runes, want %d", n, MaxFilenameRunes)
	}

	// Trimming precedes the cut, so a separator at the boundary stays.
	edge := strings.Repeat("a", MaxFilenameRunes-1) + " tail"
	if got, want := Filename(edge, ""), strings.Repeat("a", MaxFilenameRunes-1)+"_"; got != want {
		t.Errorf("Filename(edge) = %q, want %q", got, want)
	}
}
