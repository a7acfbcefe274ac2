package utils

import (
	"strings"
	"testing"
)

func TestRenderCommentSanitizes(t *testing.T) {
	out := RenderComment("hello **world** <script>alert(1)</script>")
	if !strings.Contains(out, "<strong>world</strong>") {
		t.Fatalf("markdown not rendered: %s", out)
	}
	if strings.Contains(out, "<script>") {
		t.Fatalf("script survived sanitizing: %s", out)
	}
}

func TestRenderCommentFlattensHeadings(t *testing.T) {
	out := RenderComment("# Big\n\ntext")
	if strings.Contains(out, "<h1") {
		t.Fatalf("heading kept: %s", out)
	}
	if !strings.Contains(out, "<strong>Big</strong>") {
		t.Fatalf("heading text lost: %s", out)
	}
}

func TestEnhanceHTMLLazyImages(t *testing.T) {
	out := EnhanceHTML(`<p><img src="https://example.com/a.png"></p>`)
	if !strings.Contains(out, `loading="lazy"`) || !strings.Contains(out, `referrerpolicy="no-referrer"`) {
		t.Fatalf("image attributes missing: %s", out)
	}
	if EnhanceHTML("") != "" {
		t.Fatal("empty input should stay empty")
	}
}

func TestValidEmail(t *testing.T) {
	for _, ok := range []string{"a@b.com", "first.last@mail.example.org"} {
		if !ValidEmail(ok) {
			t.Errorf("ValidEmail(%q) = false", ok)
		}
	}
	for _, bad := range []string{"", "nope", "a@b", "@b.com"} {
		if ValidEmail(bad) {
			t.Errorf("ValidEmail(%q) = true", bad)
		}
	}
}

func TestValidPassword(t *testing.T) {
	cases := map[string]bool{
		"Abc123":                 true,
		"abc123":                 false,
		"ABC123":                 false,
		"Abcdef":                 false,
		"Ab1":                    false,
		"Abcdefghij1234567890xx": false,
	}
	for pw, want := range cases {
		if got := ValidPassword(pw); got != want {
			t.Errorf("ValidPassword(%q) = %v, want %v", pw, got, want)
		}
	}
}

func TestSlugify(t *testing.T) {
	if got := Slugify("  Hello, World! Go 1.25 "); got != "hello-world-go-1-25" {
		t.Fatalf("Slugify = %q", got)
	}
	if got := UsernameFromEmail("John.Doe+x@Mail.com"); got != "john.doex" {
		t.Fatalf("UsernameFromEmail = %q", got)
	}
	if s := RandomString(8); len(s) != 8 {
		t.Fatalf("RandomString length = %d", len(s))
	}
}
