package urlutil

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func TestBaseWithSlash(t *testing.T) {
	cases := map[string]string{
		"https://www.kiwi.com/en":    "https://www.kiwi.com/en/",
		"https://www.kiwi.com/en/":   "https://www.kiwi.com/en/",
		" https://www.kiwi.com/en// ": "https://www.kiwi.com/en/",
		"":                           "",
		"   ":                        "",
	}
	for in, want := range cases {
		if got := BaseWithSlash(in); got != want {
			t.Errorf("BaseWithSlash(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildAbsolute_GeneratesExpectedURLs(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		base := fmt.Sprintf(
			"https://%s.%s",
			rapid.StringMatching(`[a-z]{3,12}`).Draw(rt, "baseHost"),
			rapid.StringMatching(`[a-z]{2,8}`).Draw(rt, "baseTld"),
		)
		if rapid.Bool().Draw(rt, "baseHasSlash") {
			base += "/"
		}

		pathKind := rapid.IntRange(0, 3).Draw(rt, "pathKind")
		var path string
		switch pathKind {
		case 0:
			path = ""
		case 1:
			path = "/" + rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "relativePath")
		case 2:
			path = "search/" + rapid.StringMatching(`[a-z]{1,12}`).Draw(rt, "nestedPath")
		case 3:
			path = fmt.Sprintf(
				"https://%s.%s/results",
				rapid.StringMatching(`[a-z]{3,10}`).Draw(rt, "absoluteHost"),
				rapid.StringMatching(`[a-z]{2,6}`).Draw(rt, "absoluteTld"),
			)
		}

		got := BuildAbsolute(base, path)
		var want string
		switch {
		case path == "":
			want = strings.TrimRight(base, "/")
		case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
			want = path
		case strings.HasPrefix(path, "/"):
			want = strings.TrimRight(base, "/") + path
		default:
			want = strings.TrimRight(base, "/") + "/" + path
		}

		if got != want {
			rt.Fatalf("BuildAbsolute mismatch: got=%s want=%s", got, want)
		}
		parsed, err := url.Parse(got)
		if err != nil {
			rt.Fatalf("BuildAbsolute returned invalid URL %s: %v", got, err)
		}
		if parsed.Scheme == "" && pathKind != 3 {
			rt.Fatalf("expected absolute URL with scheme, got=%s", got)
		}
	})
}

func TestBuildAbsolute_SearchResults(t *testing.T) {
	got := BuildAbsolute("https://www.kiwi.com/en/", "search/results")
	if got != "https://www.kiwi.com/en/search/results" {
		t.Fatalf("unexpected results URL %s", got)
	}
}

func TestRebase(t *testing.T) {
	const from = "https://www.kiwi.com/en/"
	const to = "https://staging.example.test/en/"
	cases := map[string]string{
		"https://www.kiwi.com/en/":                "https://staging.example.test/en/",
		"https://www.kiwi.com/en":                 "https://staging.example.test/en/",
		"https://www.kiwi.com/en/?currency=eur":   "https://staging.example.test/en/?currency=eur",
		"https://www.kiwi.com/en/search/results":  "https://staging.example.test/en/search/results",
		"https://www.kiwi.com/de/":                "https://www.kiwi.com/de/",
		"https://other.example.test/en/":          "https://other.example.test/en/",
	}
	for in, want := range cases {
		if got := Rebase(in, from, to); got != want {
			t.Errorf("Rebase(%q) = %q, want %q", in, got, want)
		}
	}
	if got := Rebase(from, from, from); got != from {
		t.Errorf("identity rebase changed URL: %s", got)
	}
}

func TestRebase_PreservesSuffix(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		suffix := rapid.StringMatching(`[a-z0-9/?=&-]{0,20}`).Draw(rt, "suffix")
		got := Rebase("https://a.test/en/"+suffix, "https://a.test/en", "https://b.test/x/")
		if got != "https://b.test/x/"+suffix {
			rt.Fatalf("Rebase lost suffix: %s", got)
		}
	})
}

func TestHost(t *testing.T) {
	cases := map[string]string{
		"https://www.kiwi.com/en/":  "www.kiwi.com",
		"http://localhost:8080/en/": "localhost",
		"not a url\x7f":             "",
		"":                          "",
	}
	for in, want := range cases {
		if got := Host(in); got != want {
			t.Errorf("Host(%q) = %q, want %q", in, got, want)
		}
	}
}
