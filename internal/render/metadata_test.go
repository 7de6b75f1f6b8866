package render

import (
	"reflect"
	"testing"
)

func TestHeadTitle(t *testing.T) {
	cases := []struct {
		page string
		site string
		want string
	}{
		{"Home", "Demo Studio", "Home | Demo Studio"},
		{"", "Demo Studio", "Demo Studio"},
		{"Home", "", "Home"},
		{"Demo Studio", "Demo Studio", "Demo Studio"},
		{"  ", "  ", ""},
	}
	for _, tc := range cases {
		if got := headTitle(tc.page, tc.site); got != tc.want {
			t.Fatalf("headTitle(%q, %q) = %q, want %q", tc.page, tc.site, got, tc.want)
		}
	}
}

func TestCanonicalURL(t *testing.T) {
	cases := []struct {
		base string
		path string
		want string
	}{
		{"https://demo.example.com", "index", "https://demo.example.com/"},
		{"https://demo.example.com/", "blog/first", "https://demo.example.com/blog/first"},
		{"", "blog", ""},
		{"   ", "index", ""},
	}
	for _, tc := range cases {
		if got := canonicalURL(tc.base, tc.path); got != tc.want {
			t.Fatalf("canonicalURL(%q, %q) = %q, want %q", tc.base, tc.path, got, tc.want)
		}
	}
}

func TestOGImagePicksMostSpecificPreset(t *testing.T) {
	images := map[string]string{
		"banner": "/assets/banner.jpg",
		"hero":   "/assets/hero.jpg",
	}
	if got := ogImage(images); got != "/assets/hero.jpg" {
		t.Fatalf("got %q", got)
	}

	images["og:image"] = "/assets/social.jpg"
	if got := ogImage(images); got != "/assets/social.jpg" {
		t.Fatalf("got %q", got)
	}

	if got := ogImage(nil); got != "" {
		t.Fatalf("expected empty for no presets, got %q", got)
	}
}

func TestKebabCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"accentColor", "accent-color"},
		{"font_scale", "font-scale"},
		{"colors.surface", "colors-surface"},
		{"font scale", "font-scale"},
		{"Background", "background"},
		{"spacing", "spacing"},
	}
	for _, tc := range cases {
		if got := kebabCase(tc.in); got != tc.want {
			t.Fatalf("kebabCase(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFlattenConfigVars(t *testing.T) {
	vars := map[string]string{}
	flattenConfigVars(vars, "sb", "", map[string]any{
		"accentColor": "#0f0",
		"darkMode":    true,
		"maxWidth":    1200,
		"fontScale":   1.5,
		"empty":       "   ",
		"fonts":       []any{"Inter", "Georgia"},
		"colors":      map[string]any{"surface": "#fff"},
	})

	want := map[string]string{
		"--sb-accent-color":   "#0f0",
		"--sb-dark-mode":      "true",
		"--sb-max-width":      "1200",
		"--sb-font-scale":     "1.5",
		"--sb-colors-surface": "#fff",
	}
	if !reflect.DeepEqual(vars, want) {
		t.Fatalf("got %v, want %v", vars, want)
	}
}
