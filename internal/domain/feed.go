package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FeedDescriptor identifies one syndicated feed to poll. Loaded once at
// startup and never mutated.
type FeedDescriptor struct {
	Name          string
	URL           string
	Category      string
	CheckInterval time.Duration
}

// RawItem is a single feed entry before classification. It lives only for
// the duration of one processing pass.
type RawItem struct {
	Title       string
	Summary     string
	Link        string
	PublishedAt time.Time
}

// BuildContent produces the canonical content string an item is fingerprinted
// and classified on: trimmed title and summary joined by a period.
func BuildContent(title, summary string) string {
	return fmt.Sprintf("%s. %s", strings.TrimSpace(title), strings.TrimSpace(summary))
}

// NewFingerprint digests normalized content into the deduplication key.
// Identical content always yields an identical fingerprint.
func NewFingerprint(content string) string {
	sum := md5.Sum([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NewIncidentID generates a unique incident identifier.
func NewIncidentID() string {
	return newID("incident")
}

// NewAlertID generates a unique alert identifier.
func NewAlertID() string {
	return newID("alert")
}

func newID(prefix string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().Unix(), uuid.NewString()[:8])
}

var incidentImages = map[IncidentType]string{
	TypeFlood:      "https://images.unsplash.com/photo-1600336153113-d66c79de3e91",
	TypeFire:       "https://images.unsplash.com/photo-1639369488374-561b5486177d",
	TypeEarthquake: "https://images.unsplash.com/photo-1677233860259-ce1a8e0f8498",
	TypeLandslide:  "https://images.unsplash.com/photo-1608723724234-558f4b72d8f5",
	TypeStorm:      "https://images.unsplash.com/photo-1604275689235-fdc521556c16",
	TypeOther:      "https://images.unsplash.com/photo-1608723724423-6f60a2fc1a90",
}

// ImageForType maps an incident type to its presentation image, defaulting to
// the generic one for unknown types.
func ImageForType(t IncidentType) string {
	if url, ok := incidentImages[t]; ok {
		return url
	}
	return incidentImages[TypeOther]
}
