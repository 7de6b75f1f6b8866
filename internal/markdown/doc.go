// Package markdown renders markdown bodies into HTML for the page pipeline.
// Frontmatter extraction lives in the content package; this package only
// owns the goldmark engine configuration.
package markdown
