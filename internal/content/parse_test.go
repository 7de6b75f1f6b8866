package content

import (
	"strings"
	"testing"
)

const sampleDocument = `---
title: Hello World
date: 2024-02-10
tags:
  - intro
  - demo
collection:
  sortBy: date
  order: desc
meta:
  og:
    image: media/hero.jpg
---
# Hello

Body text here.
`

func TestParseFileSplitsFrontmatterAndBody(t *testing.T) {
	file, err := ParseFile("content/blog/hello-world.md", []byte(sampleDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if file.Slug != "hello-world" {
		t.Fatalf("unexpected slug %q", file.Slug)
	}
	if file.Path != "content/blog/hello-world.md" {
		t.Fatalf("unexpected path %q", file.Path)
	}
	if file.Title() != "Hello World" {
		t.Fatalf("unexpected title %q", file.Title())
	}
	if !strings.Contains(string(file.Body), "# Hello") {
		t.Fatalf("body lost: %q", file.Body)
	}
	if strings.Contains(string(file.Body), "title:") {
		t.Fatalf("frontmatter leaked into body: %q", file.Body)
	}
}

func TestParseFileNormalizesNestedMaps(t *testing.T) {
	file, err := ParseFile("content/blog/hello-world.md", []byte(sampleDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	meta, ok := file.Frontmatter["meta"].(map[string]any)
	if !ok {
		t.Fatalf("nested map not normalized: %T", file.Frontmatter["meta"])
	}
	og, ok := meta["og"].(map[string]any)
	if !ok {
		t.Fatalf("second-level map not normalized: %T", meta["og"])
	}
	if og["image"] != "media/hero.jpg" {
		t.Fatalf("unexpected nested value %v", og["image"])
	}
}

func TestParseFileWithoutFrontmatter(t *testing.T) {
	file, err := ParseFile("content/about.md", []byte("# Just Markdown\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(file.Frontmatter) != 0 {
		t.Fatalf("expected empty frontmatter, got %v", file.Frontmatter)
	}
	if file.Title() != "about" {
		t.Fatalf("expected slug fallback title, got %q", file.Title())
	}
}
