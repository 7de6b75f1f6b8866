package navigation

import (
	"reflect"
	"testing"

	"github.com/goliatone/go-sitebuilder/internal/content"
	"github.com/goliatone/go-sitebuilder/internal/manifest"
)

func navFixture(t *testing.T) (*manifest.Tree, *content.Set) {
	t.Helper()

	tree := manifest.NewTree()
	nodes := []struct {
		parent string
		node   manifest.Node
	}{
		{"", manifest.Node{Path: "index", Title: "Home", Kind: manifest.NodeKindPage}},
		{"", manifest.Node{Path: "blog", Title: "Blog", Kind: manifest.NodeKindCollection}},
		{"blog", manifest.Node{Path: "blog/first", Title: "First", Kind: manifest.NodeKindPage}},
		{"blog", manifest.Node{Path: "blog/secret", Title: "Secret", Kind: manifest.NodeKindPage}},
		{"", manifest.Node{Path: "about", Title: "About", Kind: manifest.NodeKindPage}},
		{"", manifest.Node{Path: "legal", Title: "Legal", Kind: manifest.NodeKindPage, Hidden: true}},
	}
	for _, n := range nodes {
		if err := tree.Insert(n.parent, n.node); err != nil {
			t.Fatalf("insert %s: %v", n.node.Path, err)
		}
	}

	set := content.NewSet("content", ".md")
	docs := []struct {
		path string
		doc  string
	}{
		{"index", "---\ntitle: Home\n---\nWelcome.\n"},
		{"blog", "---\ntitle: Blog\ncollection: {}\n---\nPosts.\n"},
		{"blog/first", "---\ntitle: First\n---\n1.\n"},
		{"blog/secret", "---\ntitle: Secret\ndraft: true\n---\nShh.\n"},
		{"about", "---\ntitle: About\n---\nHi.\n"},
		{"legal", "---\ntitle: Legal\n---\nTerms.\n"},
	}
	for _, d := range docs {
		file, err := content.ParseFile("content/"+d.path+".md", []byte(d.doc))
		if err != nil {
			t.Fatalf("parse %s: %v", d.path, err)
		}
		if err := set.Add(file); err != nil {
			t.Fatalf("add %s: %v", d.path, err)
		}
	}
	return tree, set
}

func hrefs(links []Link) []string {
	out := make([]string, 0, len(links))
	for _, l := range links {
		out = append(out, l.Href)
	}
	return out
}

func TestBuildBasicNavigation(t *testing.T) {
	tree, set := navFixture(t)
	builder := NewBuilder()

	links := builder.Build(tree, set, Options{CurrentPath: "about"})

	expected := []string{"/", "/blog", "/about"}
	if !reflect.DeepEqual(hrefs(links), expected) {
		t.Fatalf("expected hrefs %v, got %v", expected, hrefs(links))
	}
	if links[0].Label != "Home" || links[1].Label != "Blog" {
		t.Fatalf("unexpected labels %q, %q", links[0].Label, links[1].Label)
	}
	if !links[2].IsActive {
		t.Fatal("expected about link to be active")
	}
	if links[0].IsActive || links[1].IsActive {
		t.Fatal("expected only the current path to be active")
	}
}

func TestBuildNestsChildren(t *testing.T) {
	tree, set := navFixture(t)
	builder := NewBuilder()

	links := builder.Build(tree, set, Options{})
	if len(links) != 3 {
		t.Fatalf("expected 3 top-level links, got %d", len(links))
	}

	blog := links[1]
	if len(blog.Children) != 1 {
		t.Fatalf("expected 1 published child, got %d", len(blog.Children))
	}
	if blog.Children[0].Href != "/blog/first" {
		t.Fatalf("unexpected child href %q", blog.Children[0].Href)
	}
}

func TestBuildExcludesDraftsAndHidden(t *testing.T) {
	tree, set := navFixture(t)
	builder := NewBuilder()

	links := builder.Build(tree, set, Options{})
	for _, l := range links {
		if l.Label == "Legal" {
			t.Fatal("hidden node leaked into navigation")
		}
		for _, c := range l.Children {
			if c.Label == "Secret" {
				t.Fatal("draft node leaked into navigation")
			}
		}
	}

	withHidden := builder.Build(tree, set, Options{IncludeHidden: true})
	found := false
	for _, l := range withHidden {
		if l.Label == "Legal" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected hidden node with IncludeHidden")
	}
}

func TestBuildSiteRootPrefix(t *testing.T) {
	tree, set := navFixture(t)
	builder := NewBuilder()

	links := builder.Build(tree, set, Options{SiteRoot: "/preview/demo/"})

	expected := []string{"/preview/demo", "/preview/demo/blog", "/preview/demo/about"}
	if !reflect.DeepEqual(hrefs(links), expected) {
		t.Fatalf("expected hrefs %v, got %v", expected, hrefs(links))
	}
}

func TestBuildCurrentPathNormalization(t *testing.T) {
	tree, set := navFixture(t)
	builder := NewBuilder()

	links := builder.Build(tree, set, Options{CurrentPath: "/"})
	if !links[0].IsActive {
		t.Fatal("expected index active for root current path")
	}

	links = builder.Build(tree, set, Options{CurrentPath: "/blog/"})
	if !links[1].IsActive {
		t.Fatal("expected blog active for trailing-slash current path")
	}
}

func TestBuildNavOrder(t *testing.T) {
	tree := manifest.NewTree()
	one, two := 1, 2
	nodes := []manifest.Node{
		{Path: "gamma", Title: "Gamma", Kind: manifest.NodeKindPage},
		{Path: "beta", Title: "Beta", Kind: manifest.NodeKindPage, NavOrder: &two},
		{Path: "alpha", Title: "Alpha", Kind: manifest.NodeKindPage, NavOrder: &one},
	}
	for _, node := range nodes {
		if err := tree.Insert("", node); err != nil {
			t.Fatalf("insert %s: %v", node.Path, err)
		}
	}

	links := NewBuilder().Build(tree, content.NewSet("content", ".md"), Options{})

	expected := []string{"/alpha", "/beta", "/gamma"}
	if !reflect.DeepEqual(hrefs(links), expected) {
		t.Fatalf("expected hrefs %v, got %v", expected, hrefs(links))
	}
}

func TestBuildMaxDepth(t *testing.T) {
	tree, set := navFixture(t)
	builder := NewBuilder()

	links := builder.Build(tree, set, Options{MaxDepth: 1})
	for _, l := range links {
		if len(l.Children) != 0 {
			t.Fatalf("expected no children at max depth 1, got %d under %q", len(l.Children), l.Label)
		}
	}
}

type aliasResolver struct{}

func (aliasResolver) Resolve(node manifest.Node) (string, bool) {
	if node.Path == "about" || node.Path == "blog" {
		return "/landing", true
	}
	return "", false
}

func TestBuildDeduplicatesHrefs(t *testing.T) {
	tree, set := navFixture(t)
	builder := NewBuilder(WithURLResolver(aliasResolver{}))

	links := builder.Build(tree, set, Options{})

	expected := []string{"/", "/landing"}
	if !reflect.DeepEqual(hrefs(links), expected) {
		t.Fatalf("expected hrefs %v, got %v", expected, hrefs(links))
	}
}

func TestBuildNilTree(t *testing.T) {
	if links := NewBuilder().Build(nil, nil, Options{}); links != nil {
		t.Fatalf("expected nil links, got %v", links)
	}
}
