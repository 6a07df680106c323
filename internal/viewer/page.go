// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package viewer turns a selection result into the HTML explorer page.
package viewer

import (
	"net/url"

	"github.com/ManuGH/ionoview/internal/catalog"
	"github.com/ManuGH/ionoview/internal/selection"
)

// Section headings shown next to the option rows.
const (
	SourceHeading = "Model"
	StateHeading  = "Intensity Level"
)

// PlaceholderPattern is the naming scheme shown when nothing matches.
const PlaceholderPattern = "TEC_<SOURCE>_<STATE>.gif"

// Badge variant URLs served by the API.
const (
	BadgeSmallSrc = "/badge.png?size=small"
	BadgeLargeSrc = "/badge.png?size=large"
)

// Options carries the configuration-derived parts of a page.
type Options struct {
	Title        string
	Layout       string
	AssetBase    string
	BadgeEnabled bool
}

// Option is one selectable pill or segment.
type Option struct {
	Label  string
	Title  string
	Href   string
	Active bool
}

// Image is the matched animation.
type Image struct {
	Src string
	Alt string
}

// Badge describes the overlay in its two sizes.
type Badge struct {
	SmallSrc string
	LargeSrc string
	Alt      string
}

// Page is the view-model consumed by every layout.
type Page struct {
	Title         string
	Layout        string
	SourceHeading string
	StateHeading  string
	Sources       []Option
	States        []Option

	// Image is nil when there is no match; Placeholder is shown instead.
	Image       *Image
	Placeholder string

	// Unavailable is set when the media directory could not be read.
	Unavailable bool

	Badge *Badge
}

// NewPage builds the view-model for a resolved selection.
func NewPage(res selection.Result, opts Options) Page {
	p := basePage(opts)
	p.Sources = options(res.SourceLinks, true)
	p.States = options(res.StateLinks, false)
	if res.Match != nil {
		p.Image = &Image{
			Src: AssetURL(opts.AssetBase, *res.Match),
			Alt: res.Match.File,
		}
	} else {
		p.Placeholder = PlaceholderPattern
	}
	return p
}

// UnavailablePage builds the page shown when the catalog cannot be loaded.
func UnavailablePage(opts Options) Page {
	p := basePage(opts)
	p.Unavailable = true
	return p
}

// AssetURL returns the retrieval URL of an entry under base.
func AssetURL(base string, e catalog.Entry) string {
	return base + url.PathEscape(e.File)
}

func basePage(opts Options) Page {
	p := Page{
		Title:         opts.Title,
		Layout:        opts.Layout,
		SourceHeading: SourceHeading,
		StateHeading:  StateHeading,
	}
	if opts.BadgeEnabled {
		p.Badge = &Badge{SmallSrc: BadgeSmallSrc, LargeSrc: BadgeLargeSrc, Alt: "Badge"}
	}
	return p
}

func options(links []selection.Link, withTitle bool) []Option {
	out := make([]Option, 0, len(links))
	for _, l := range links {
		o := Option{Label: l.Label, Href: l.Href, Active: l.Active}
		if withTitle {
			o.Title = l.Label
		} else {
			o.Title = string(l.State)
		}
		out = append(out, o)
	}
	return out
}
