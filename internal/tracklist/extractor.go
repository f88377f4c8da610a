// Package tracklist extracts structured "artist - track" records from the
// loosely structured markup of a tracklist page.
package tracklist

import (
	"bytes"
	"errors"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/mixscout/mixscout/internal/domain"
)

// ErrNoTracklist is the sentinel for pages without a usable ordered list.
// Callers must treat it like an empty list, not a failure.
var ErrNoTracklist = errors.New("no tracklist")

var (
	indexPrefix = regexp.MustCompile(`^\[\d+\]\s*`)
	bracketed   = regexp.MustCompile(`\[[^\]]*\]`)
)

// Extract parses the first ordered list in the page into tracks. Each list
// item is cleaned of its leading [nn] cue marker and bracketed annotations
// and split on the first " - " into artist and track; items without the
// separator, empty items and lone "?" placeholders are skipped.
func Extract(html []byte) ([]domain.Track, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, ErrNoTracklist
	}

	list := doc.Find("ol").First()
	if list.Length() == 0 {
		return nil, ErrNoTracklist
	}

	var tracks []domain.Track
	list.Find("li").Each(func(_ int, s *goquery.Selection) {
		if track, ok := parseItem(s.Text()); ok {
			tracks = append(tracks, track)
		}
	})

	if len(tracks) == 0 {
		return nil, ErrNoTracklist
	}
	return tracks, nil
}

func parseItem(text string) (domain.Track, bool) {
	clean := strings.TrimSpace(indexPrefix.ReplaceAllString(strings.TrimSpace(text), ""))
	if clean == "" || clean == "?" {
		return domain.Track{}, false
	}

	artistPart, trackPart, found := strings.Cut(clean, " - ")
	if !found {
		return domain.Track{}, false
	}

	return domain.Track{
		ID:     uuid.NewString(),
		Artist: strings.TrimSpace(bracketed.ReplaceAllString(artistPart, "")),
		Track:  strings.TrimSpace(bracketed.ReplaceAllString(trackPart, "")),
	}, true
}
