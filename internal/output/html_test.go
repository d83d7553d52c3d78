package output

import (
	"strings"
	"testing"
)

func TestHTMLFormatter_Empty(t *testing.T) {
	out, err := (&HTMLFormatter{}).Format(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "No warnings") {
		t.Errorf("expected explicit no warnings, got %q", out)
	}
	if strings.Contains(out, "<li") {
		t.Errorf("expected no list items, got %q", out)
	}
}

func TestHTMLFormatter_Format(t *testing.T) {
	out, err := (&HTMLFormatter{}).Format(testFailures())
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(out, "<li "); got != 3 {
		t.Errorf("expected 3 list items, got %d\n%s", got, out)
	}
	if !strings.HasPrefix(out, "<ul") || !strings.HasSuffix(out, "</ul>") {
		t.Errorf("expected a <ul> wrapper, got %q", out)
	}
	if !strings.Contains(out, "&#34;Component&#34;") {
		t.Error("message quotes should be escaped")
	}
	if !strings.Contains(out, `<a href="https://example.com/a11y">https://example.com/a11y</a>.`) {
		t.Errorf("expected linkified URL without trailing period, got %s", out)
	}
	if !strings.Contains(out, `data-id="3"`) {
		t.Error("expected correlation id attribute")
	}
	if !strings.Contains(out, "src/widget.ts:2:7") {
		t.Error("expected 1-based display location")
	}
}

func TestLinkify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "nothing to see",
			want: "nothing to see",
		},
		{
			name: "absolute url",
			in:   "see https://angular.io/guide/styleguide#style-05-03",
			want: `see <a href="https://angular.io/guide/styleguide#style-05-03">https://angular.io/guide/styleguide#style-05-03</a>`,
		},
		{
			name: "bare www",
			in:   "see www.example.com/docs for more",
			want: `see <a href="http://www.example.com/docs">www.example.com/docs</a> for more`,
		},
		{
			name: "www inside absolute url linked once",
			in:   "see http://www.example.com",
			want: `see <a href="http://www.example.com">http://www.example.com</a>`,
		},
		{
			name: "www inside a longer token",
			in:   "the foowww.example.com token and node_www.x.y",
			want: "the foowww.example.com token and node_www.x.y",
		},
		{
			name: "www after semicolon inside absolute url",
			in:   "see https://a.io/x;www.b.io now",
			want: `see <a href="https://a.io/x;www.b.io">https://a.io/x;www.b.io</a> now`,
		},
		{
			name: "www after comma inside query",
			in:   "see https://a.io/?q=1,www.b.io",
			want: `see <a href="https://a.io/?q=1,www.b.io">https://a.io/?q=1,www.b.io</a>`,
		},
		{
			name: "www in parentheses inside absolute url",
			in:   "see https://a.io/(www.b.io)",
			want: `see <a href="https://a.io/(www.b.io">https://a.io/(www.b.io</a>)`,
		},
		{
			name: "absolute url and bare www in one message",
			in:   "see https://a.io and (www.b.io)",
			want: `see <a href="https://a.io">https://a.io</a> and (<a href="http://www.b.io">www.b.io</a>)`,
		},
		{
			name: "www after a hyphen",
			in:   "prefix-www.example.com",
			want: "prefix-www.example.com",
		},
		{
			name: "www without a domain",
			in:   "www. is not a link",
			want: "www. is not a link",
		},
		{
			name: "both schemes",
			in:   "https://a.io and (www.b.io)",
			want: `<a href="https://a.io">https://a.io</a> and (<a href="http://www.b.io">www.b.io</a>)`,
		},
		{
			name: "escaped ampersand kept in url",
			in:   "https://a.io/?x=1&amp;y=2 done",
			want: `<a href="https://a.io/?x=1&amp;y=2">https://a.io/?x=1&amp;y=2</a> done`,
		},
		{
			name: "escaped quote ends url",
			in:   "&#34;https://a.io&#34;",
			want: `&#34;<a href="https://a.io">https://a.io</a>&#34;`,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Linkify(tc.in); got != tc.want {
				t.Errorf("Linkify(%q)\n got  %q\n want %q", tc.in, got, tc.want)
			}
		})
	}
}
