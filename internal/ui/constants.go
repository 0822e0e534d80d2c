package ui

import "github.com/mattn/go-runewidth"

// Pre-calculated string widths for commonly used strings
var (
	EllipsisWidth = runewidth.StringWidth("...")
	CursorWidth   = runewidth.StringWidth("> ")
	MarkerWidth   = runewidth.StringWidth("[x] ")

	ExpandedMarker  = "▾ "
	CollapsedMarker = "▸ "
	QueuedMarker    = "[x] "
	IdleMarker      = "[ ] "
)

// Download table column widths
const (
	StatusColumnWidth   = 10
	ProgressColumnWidth = 12
)
