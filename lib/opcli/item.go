// Copyright 2026 The Termpass Authors
// SPDX-License-Identifier: Apache-2.0

package opcli

import (
	"fmt"
	"strings"
)

// Item is one credential record from "op item list". Fields come
// verbatim from op's JSON output; nothing is computed or persisted
// locally, and items live only for the duration of one invocation.
type Item struct {
	// ID is op's unique item identifier, used for the secret fetch.
	ID string `json:"id"`

	// Title is the user-visible item name.
	Title string `json:"title"`

	// Category is op's item category (LOGIN, PASSWORD, DATABASE, ...).
	Category string `json:"category"`

	// Tags are the user-assigned tags, if any.
	Tags []string `json:"tags,omitempty"`

	// URLs are the websites attached to the item, if any.
	URLs []ItemURL `json:"urls,omitempty"`
}

// ItemURL is one website entry on an item.
type ItemURL struct {
	Label   string `json:"label,omitempty"`
	Primary bool   `json:"primary,omitempty"`
	Href    string `json:"href"`
}

// PrimaryURL returns the item's primary website, falling back to the
// first one listed, or "" when the item has no URLs.
func (i Item) PrimaryURL() string {
	for _, u := range i.URLs {
		if u.Primary {
			return u.Href
		}
	}
	if len(i.URLs) > 0 {
		return i.URLs[0].Href
	}
	return ""
}

// DisplayLine formats the item for the selector: "Title (Category)",
// with the primary URL appended when present. This is the exact line
// the fuzzy finder matches against.
func (i Item) DisplayLine() string {
	title := i.Title
	if title == "" {
		title = "Untitled"
	}
	category := i.Category
	if category == "" {
		category = "Unknown"
	}

	var line strings.Builder
	fmt.Fprintf(&line, "%s (%s)", title, category)
	if url := i.PrimaryURL(); url != "" {
		fmt.Fprintf(&line, " - %s", url)
	}
	return line.String()
}
