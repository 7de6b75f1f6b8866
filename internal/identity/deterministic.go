package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

func SiteUUID(siteID string) uuid.UUID {
	return UUID("go-sitebuilder:site:" + strings.TrimSpace(siteID))
}

func NodeUUID(siteID, path string) uuid.UUID {
	return UUID("go-sitebuilder:node:" + strings.TrimSpace(siteID) + ":" + strings.TrimSpace(path))
}

func ThemeUUID(themeName string) uuid.UUID {
	return UUID("go-sitebuilder:theme:" + strings.ToLower(strings.TrimSpace(themeName)))
}

func LayoutUUID(themeName, layoutName string) uuid.UUID {
	return UUID("go-sitebuilder:layout:" + strings.ToLower(strings.TrimSpace(themeName)) + ":" + strings.ToLower(strings.TrimSpace(layoutName)))
}

func DerivativeUUID(keyToken string) uuid.UUID {
	return UUID("go-sitebuilder:derivative:" + strings.TrimSpace(keyToken))
}
