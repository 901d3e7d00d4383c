package edgar

import (
	"strings"
	"testing"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "block elements break lines",
			html: "<div>Copies to:</div><div>Jane   Doe, Esq.</div><p>Cooley&nbsp;LLP</p>",
			want: "Copies to:\nJane Doe, Esq.\nCooley LLP",
		},
		{
			name: "table cells and breaks",
			html: "<table><tr><td>John Smith</td><td>Latham &amp; Watkins LLP</td></tr></table>By:<br>Mary Major",
			want: "John Smith\nLatham & Watkins LLP\nBy:\nMary Major",
		},
		{
			name: "scripts and styles dropped",
			html: "<html><head><style>p{color:red}</style></head><body><script>var x=1;</script><p>Body</p></body></html>",
			want: "Body",
		},
		{
			name: "plain text keeps lines",
			html: "LEGAL MATTERS\n\n   The validity of the shares   will be passed upon.\n",
			want: "LEGAL MATTERS\nThe validity of the shares will be passed upon.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLToText(tt.html); got != tt.want {
				t.Errorf("HTMLToText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildCounselExcerpt(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		text := strings.Repeat("a", 1000)
		if got := BuildCounselExcerpt(text); got != text {
			t.Error("short text should be returned as-is")
		}
	})

	t.Run("legal matters window appended", func(t *testing.T) {
		section := "LEGAL MATTERS\nThe validity will be passed upon for us by Cooley LLP."
		text := strings.Repeat("x", 40000) + section + strings.Repeat("y", 20000)

		got := BuildCounselExcerpt(text)
		if !strings.HasPrefix(got, strings.Repeat("x", HeadChars)) {
			t.Error("head not preserved")
		}
		if !strings.Contains(got, section) {
			t.Error("legal matters section missing")
		}
		if len(got) > MaxExcerptChars {
			t.Errorf("excerpt length %d exceeds cap", len(got))
		}
		want := HeadChars + len("\n...\n") + LegalMattersBefore + LegalMattersAfter
		if len(got) != want {
			t.Errorf("excerpt length = %d, want %d", len(got), want)
		}
	})

	t.Run("table of contents anchor ignored", func(t *testing.T) {
		text := "Legal Matters ..... 45\n" + strings.Repeat("x", 30000) + "LEGAL MATTERS\nCooley LLP" + strings.Repeat("z", 100)
		got := BuildCounselExcerpt(text)
		if !strings.Contains(got, "LEGAL MATTERS\nCooley LLP") {
			t.Error("expected window around the section heading, not the table of contents")
		}
	})

	t.Run("no anchor keeps head only", func(t *testing.T) {
		text := strings.Repeat("x", 50000)
		if got := BuildCounselExcerpt(text); len(got) != HeadChars {
			t.Errorf("len = %d, want %d", len(got), HeadChars)
		}
	})

	t.Run("multibyte runes not split", func(t *testing.T) {
		text := strings.Repeat("é", 20000)
		got := BuildCounselExcerpt(text)
		if !strings.HasSuffix(got, "é") {
			t.Error("truncation split a rune")
		}
	})
}
