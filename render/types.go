// Package render exposes the page resolution and rendering types for
// consumers of the sitebuilder module.
package render

import (
	internalrender "github.com/goliatone/go-sitebuilder/internal/render"
	internalresolver "github.com/goliatone/go-sitebuilder/internal/resolver"
)

// Page is one rendered document.
type Page = internalrender.Page

// Options shape one render call.
type Options = internalrender.Options

// Service renders resolved pages into complete HTML documents.
type Service = internalrender.Service

// Resolution is the tagged union a path resolves to.
type Resolution = internalresolver.Resolution

// SinglePage resolves a path onto one content file.
type SinglePage = internalresolver.SinglePage

// Collection resolves a path onto a listing plus its ordered items.
type Collection = internalresolver.Collection

// Item is one member of a resolved collection.
type Item = internalresolver.Item

// NotFound marks a path with no matching node or file.
type NotFound = internalresolver.NotFound
