package templates

import (
	"errors"
	"strings"
	"testing"
)

func TestStoreRenderTemplate(t *testing.T) {
	store := NewStore()
	if err := store.RegisterTemplate("greeting", "Hello {{name}}!"); err != nil {
		t.Fatalf("register: %v", err)
	}

	out, err := store.Render("greeting", map[string]interface{}{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "Hello Ada!" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStoreCompilesOnce(t *testing.T) {
	store := NewStore()
	if err := store.RegisterTemplate("page", "<h1>{{title}}</h1>"); err != nil {
		t.Fatalf("register: %v", err)
	}

	first, err := store.Template("page")
	if err != nil {
		t.Fatalf("first lookup: %v", err)
	}
	second, err := store.Template("page")
	if err != nil {
		t.Fatalf("second lookup: %v", err)
	}
	if first != second {
		t.Fatal("expected cached template instance on second lookup")
	}
}

func TestStoreMissingTemplate(t *testing.T) {
	store := NewStore()

	_, err := store.Render("nope", nil)
	if err == nil {
		t.Fatal("expected error for unregistered template")
	}

	var tplErr *TemplateError
	if !errors.As(err, &tplErr) {
		t.Fatalf("expected TemplateError, got %T", err)
	}
	if tplErr.Name != "nope" {
		t.Fatalf("unexpected template name %q", tplErr.Name)
	}
	if !errors.Is(err, ErrTemplateNotRegistered) {
		t.Fatalf("expected ErrTemplateNotRegistered, got %v", err)
	}
}

func TestStoreCompileFailure(t *testing.T) {
	store := NewStore()
	if err := store.RegisterTemplate("broken", "{{#if open}}never closed"); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err := store.Template("broken")
	var tplErr *TemplateError
	if !errors.As(err, &tplErr) {
		t.Fatalf("expected TemplateError, got %v", err)
	}
	if tplErr.Name != "broken" {
		t.Fatalf("unexpected template name %q", tplErr.Name)
	}
}

func TestStorePartialRendering(t *testing.T) {
	store := NewStore()
	if err := store.RegisterPartial("badge", `<span class="badge">{{label}}</span>`); err != nil {
		t.Fatalf("register partial: %v", err)
	}
	if err := store.RegisterTemplate("page", "<div>{{> badge}}</div>"); err != nil {
		t.Fatalf("register template: %v", err)
	}

	out, err := store.Render("page", map[string]interface{}{"label": "new"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != `<div><span class="badge">new</span></div>` {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStorePartialUpdateInvalidatesCompiled(t *testing.T) {
	store := NewStore()
	if err := store.RegisterPartial("footer", "v1"); err != nil {
		t.Fatalf("register partial: %v", err)
	}
	if err := store.RegisterTemplate("page", "{{> footer}}"); err != nil {
		t.Fatalf("register template: %v", err)
	}

	out, err := store.Render("page", nil)
	if err != nil {
		t.Fatalf("render v1: %v", err)
	}
	if out != "v1" {
		t.Fatalf("unexpected output %q", out)
	}

	if err := store.RegisterPartial("footer", "v2"); err != nil {
		t.Fatalf("update partial: %v", err)
	}
	out, err = store.Render("page", nil)
	if err != nil {
		t.Fatalf("render v2: %v", err)
	}
	if out != "v2" {
		t.Fatalf("expected updated partial, got %q", out)
	}
}

func TestStoreClearPartials(t *testing.T) {
	store := NewStore()
	if err := store.RegisterPartial("footer", "the footer"); err != nil {
		t.Fatalf("register partial: %v", err)
	}
	if err := store.RegisterTemplate("page", "{{> footer}}"); err != nil {
		t.Fatalf("register template: %v", err)
	}

	store.ClearPartials()

	if names := store.PartialNames(); len(names) != 0 {
		t.Fatalf("expected no partials, got %v", names)
	}
	if _, err := store.Render("page", nil); err == nil {
		t.Fatal("expected render to fail once the partial is gone")
	}
}

func TestStoreRenderString(t *testing.T) {
	store := NewStore()

	out, err := store.RenderString("{{uppercase name}}", map[string]interface{}{"name": "ada"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if out != "ADA" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStoreCustomHelper(t *testing.T) {
	store := NewStore(WithHelper("shout", func(value string) string {
		return strings.ToUpper(value) + "!"
	}))

	out, err := store.RenderString(`{{shout "hey"}}`, nil)
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if out != "HEY!" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestStoreRegisterValidation(t *testing.T) {
	store := NewStore()

	if err := store.RegisterTemplate("", "x"); !errors.Is(err, ErrTemplateNameRequired) {
		t.Fatalf("expected ErrTemplateNameRequired, got %v", err)
	}
	if err := store.RegisterPartial("", "x"); !errors.Is(err, ErrPartialNameRequired) {
		t.Fatalf("expected ErrPartialNameRequired, got %v", err)
	}
}
