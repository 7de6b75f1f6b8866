package templates

import (
	"testing"
	"time"
)

func renderHelper(t *testing.T, store *Store, source string, data interface{}) string {
	t.Helper()
	out, err := store.RenderString(source, data)
	if err != nil {
		t.Fatalf("render %q: %v", source, err)
	}
	return out
}

func TestFormatDateHelper(t *testing.T) {
	store := NewStore()
	published := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		source   string
		data     interface{}
		expected string
	}{
		{
			name:     "time value with tokens",
			source:   `{{formatDate "YYYY-MM-DD" published}}`,
			data:     map[string]interface{}{"published": published},
			expected: "2024-03-10",
		},
		{
			name:     "long form",
			source:   `{{formatDate "MMMM DD, YYYY" published}}`,
			data:     map[string]interface{}{"published": published},
			expected: "March 10, 2024",
		},
		{
			name:     "string value",
			source:   `{{formatDate "DD MMM YY" published}}`,
			data:     map[string]interface{}{"published": "2024-03-10"},
			expected: "10 Mar 24",
		},
		{
			name:     "default format",
			source:   `{{formatDate "" published}}`,
			data:     map[string]interface{}{"published": published},
			expected: "March 10, 2024",
		},
		{
			name:     "unparseable string passes through",
			source:   `{{formatDate "YYYY" published}}`,
			data:     map[string]interface{}{"published": "someday"},
			expected: "someday",
		},
		{
			name:     "missing value",
			source:   `{{formatDate "YYYY" published}}`,
			data:     map[string]interface{}{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := renderHelper(t, store, tt.source, tt.data); out != tt.expected {
				t.Fatalf("expected %q, got %q", tt.expected, out)
			}
		})
	}
}

func TestEqualHelper(t *testing.T) {
	store := NewStore()
	source := `{{#eq status "live"}}published{{else}}hidden{{/eq}}`

	if out := renderHelper(t, store, source, map[string]interface{}{"status": "live"}); out != "published" {
		t.Fatalf("expected published, got %q", out)
	}
	if out := renderHelper(t, store, source, map[string]interface{}{"status": "draft"}); out != "hidden" {
		t.Fatalf("expected hidden, got %q", out)
	}
}

func TestEqualHelperNumbers(t *testing.T) {
	store := NewStore()
	source := `{{#eq count 3}}three{{else}}other{{/eq}}`

	data := map[string]interface{}{"count": float64(3)}
	if out := renderHelper(t, store, source, data); out != "three" {
		t.Fatalf("expected three, got %q", out)
	}
}

func TestStringHelpers(t *testing.T) {
	store := NewStore()
	data := map[string]interface{}{"title": "Hello World"}

	if out := renderHelper(t, store, "{{lowercase title}}", data); out != "hello world" {
		t.Fatalf("lowercase: got %q", out)
	}
	if out := renderHelper(t, store, "{{uppercase title}}", data); out != "HELLO WORLD" {
		t.Fatalf("uppercase: got %q", out)
	}
}

func TestJoinHelper(t *testing.T) {
	store := NewStore()
	data := map[string]interface{}{"tags": []string{"go", "web", "cms"}}

	if out := renderHelper(t, store, `{{join tags ", "}}`, data); out != "go, web, cms" {
		t.Fatalf("join: got %q", out)
	}
	if out := renderHelper(t, store, `{{join missing ", "}}`, data); out != "" {
		t.Fatalf("join on missing: got %q", out)
	}
}

func TestLimitHelper(t *testing.T) {
	store := NewStore()
	data := map[string]interface{}{"tags": []string{"go", "web", "cms"}}

	out := renderHelper(t, store, "{{#each (limit tags 2)}}{{this}}|{{/each}}", data)
	if out != "go|web|" {
		t.Fatalf("limit: got %q", out)
	}

	out = renderHelper(t, store, "{{#each (limit tags 9)}}{{this}}|{{/each}}", data)
	if out != "go|web|cms|" {
		t.Fatalf("limit beyond length: got %q", out)
	}
}

func TestImageHelper(t *testing.T) {
	store := NewStore()
	data := map[string]interface{}{
		"images": map[string]string{
			"hero": "/assets/images/hero-1200x600-0f3a9c.jpg",
		},
	}

	out := renderHelper(t, store, `{{image "hero"}}`, data)
	if out != "/assets/images/hero-1200x600-0f3a9c.jpg" {
		t.Fatalf("image: got %q", out)
	}
	if out := renderHelper(t, store, `{{image "missing"}}`, data); out != "" {
		t.Fatalf("image miss: got %q", out)
	}
}

func TestRenderItemHelper(t *testing.T) {
	store := NewStore()
	if err := store.RegisterTemplate(LayoutTemplateName("post-card"), "<li>{{title}}</li>"); err != nil {
		t.Fatalf("register layout: %v", err)
	}

	data := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"layout": "post-card", "title": "First"},
			map[string]interface{}{"layout": "post-card", "title": "Second"},
		},
	}

	out := renderHelper(t, store, "<ul>{{#each items}}{{renderItem this}}{{/each}}</ul>", data)
	if out != "<ul><li>First</li><li>Second</li></ul>" {
		t.Fatalf("renderItem: got %q", out)
	}
}

func TestRenderItemHelperSkipsBrokenItems(t *testing.T) {
	store := NewStore()
	if err := store.RegisterTemplate(LayoutTemplateName("post-card"), "<li>{{title}}</li>"); err != nil {
		t.Fatalf("register layout: %v", err)
	}

	data := map[string]interface{}{
		"items": []interface{}{
			map[string]interface{}{"layout": "missing-layout", "title": "Ghost"},
			map[string]interface{}{"layout": "post-card", "title": "Kept"},
		},
	}

	out := renderHelper(t, store, "{{#each items}}{{renderItem this}}{{/each}}", data)
	if out != "<li>Kept</li>" {
		t.Fatalf("renderItem: got %q", out)
	}
}
