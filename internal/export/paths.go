package export

import (
	"crypto/sha256"
	"encoding/hex"
	"path"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-sitebuilder/internal/resolver"
)

// normalizeTreePath maps a requested route onto its structure tree path.
func normalizeTreePath(route string) string {
	trimmed := strings.Trim(strings.TrimSpace(route), "/")
	if trimmed == "" {
		return resolver.IndexPath
	}
	return trimmed
}

// routeFor maps a tree path onto the route the exported page serves.
func routeFor(treePath string) string {
	if treePath == resolver.IndexPath {
		return "/"
	}
	return "/" + treePath
}

// outputPath maps a route onto the pretty-URL file it exports to.
func outputPath(route string) string {
	clean := strings.Trim(strings.TrimSpace(route), "/")
	if clean == "" {
		return "index.html"
	}
	return path.Join(clean, "index.html")
}

// pageDepth reports how many directories deep a route's output file sits.
func pageDepth(route string) int {
	clean := strings.Trim(strings.TrimSpace(route), "/")
	if clean == "" {
		return 0
	}
	return strings.Count(clean, "/") + 1
}

func joinOutputPath(base string, rel string) string {
	if strings.TrimSpace(base) == "" {
		return strings.TrimLeft(rel, "/")
	}
	return path.Join(strings.Trim(base, "/"), rel)
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func computeHashFromString(content string) string {
	return computeHash([]byte(content))
}

func detectAssetContentType(asset string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(asset), "."))
	switch ext {
	case "css":
		return "text/css"
	case "js":
		return "application/javascript"
	case "json":
		return "application/json"
	case "svg":
		return "image/svg+xml"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	case "ico":
		return "image/x-icon"
	default:
		return "application/octet-stream"
	}
}
