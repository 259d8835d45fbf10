package appstate

import (
	"errors"
	"fmt"
	"strings"
)

// ContentType selects which study material view is shown for a document.
type ContentType string

const (
	ContentNone          ContentType = "none"
	ContentQuestionPacks ContentType = "question-packs"
	ContentSummary       ContentType = "summary"
	ContentFlashCards    ContentType = "flash-cards"
	ContentShortNotes    ContentType = "short-notes"
	ContentMindMap       ContentType = "mind-map"
)

// ErrUnknownContentType is returned by ParseContentType.
var ErrUnknownContentType = errors.New("unknown content type")

// ContentTypes lists the selectable study material views in menu order.
var ContentTypes = []ContentType{
	ContentQuestionPacks,
	ContentSummary,
	ContentFlashCards,
	ContentShortNotes,
	ContentMindMap,
}

var contentMenu = map[ContentType]struct{ title, description string }{
	ContentQuestionPacks: {"Question Packs", "Practice questions from your PDF"},
	ContentSummary:       {"Summary", "Key points and overview"},
	ContentFlashCards:    {"Flash Cards", "Quick revision cards"},
	ContentShortNotes:    {"Short Notes", "Condensed study notes"},
	ContentMindMap:       {"Mind Map", "Visual concept map"},
}

// ParseContentType accepts the hyphenated names; an empty string or "none" means no selection.
func ParseContentType(raw string) (ContentType, error) {
	v := ContentType(strings.ToLower(strings.TrimSpace(raw)))
	if v == "" || v == ContentNone {
		return ContentNone, nil
	}
	if _, ok := contentMenu[v]; !ok {
		return ContentNone, fmt.Errorf("%w: %q", ErrUnknownContentType, raw)
	}
	return v, nil
}

func (c ContentType) Title() string {
	return contentMenu[c].title
}

func (c ContentType) Description() string {
	return contentMenu[c].description
}

func (c ContentType) String() string {
	return string(c)
}
