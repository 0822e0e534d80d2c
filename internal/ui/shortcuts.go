package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/haryoiro/ytmgrab/internal/structures"
)

// ShortcutHint represents a single keyboard shortcut hint
type ShortcutHint struct {
	Key    string
	Action string
}

// ShortcutFormatter handles formatting of keyboard shortcuts for display
type ShortcutFormatter struct {
	config     *structures.Config
	styleCache map[string]string
}

// NewShortcutFormatter creates a new shortcut formatter with the given config
func NewShortcutFormatter(config *structures.Config) *ShortcutFormatter {
	return &ShortcutFormatter{
		config:     config,
		styleCache: make(map[string]string),
	}
}

var keyLabels = map[string]string{
	"space":     "Space",
	"enter":     "Enter",
	"esc":       "Esc",
	"tab":       "Tab",
	"shift+tab": "Shift+Tab",
	"backspace": "Back",
	"up":        "↑",
	"down":      "↓",
	"left":      "←",
	"right":     "→",
}

// formatKey turns a binding name into its footer label.
func (sf *ShortcutFormatter) formatKey(key string) string {
	if formatted, ok := sf.styleCache[key]; ok {
		return formatted
	}

	formatted, ok := keyLabels[key]
	if !ok {
		formatted = key
		if rest, found := strings.CutPrefix(key, "ctrl+"); found {
			formatted = "Ctrl+" + strings.ToUpper(rest)
		}
	}

	sf.styleCache[key] = formatted
	return formatted
}

// formatKeys formats multiple key bindings (e.g., ["down", "j"] -> "↓/j")
func (sf *ShortcutFormatter) formatKeys(keys []string) string {
	if len(keys) == 0 {
		return ""
	}

	sorted := make([]string, len(keys))
	copy(sorted, keys)
	// Arrow keys first, then alphabetical
	sort.SliceStable(sorted, func(i, j int) bool {
		ai, aj := isArrowKey(sorted[i]), isArrowKey(sorted[j])
		if ai != aj {
			return ai
		}
		return sorted[i] < sorted[j]
	})

	formatted := make([]string, len(sorted))
	for i, key := range sorted {
		formatted[i] = sf.formatKey(key)
	}
	return strings.Join(formatted, "/")
}

func isArrowKey(key string) bool {
	return key == "up" || key == "down" || key == "left" || key == "right"
}

// FormatHint formats a single shortcut hint
func (sf *ShortcutFormatter) FormatHint(hint ShortcutHint) string {
	return fmt.Sprintf("[%s: %s]", hint.Key, hint.Action)
}

// FormatHints formats multiple shortcut hints with consistent styling
func (sf *ShortcutFormatter) FormatHints(hints []ShortcutHint) string {
	formatted := make([]string, len(hints))
	for i, hint := range hints {
		formatted[i] = sf.FormatHint(hint)
	}
	return strings.Join(formatted, " ")
}

// HintsFor returns the footer line for a tab.
func (sf *ShortcutFormatter) HintsFor(tab Tab, editing bool) string {
	kb := sf.config.KeyBindings
	if editing {
		return sf.FormatHints([]ShortcutHint{
			{Key: "Enter", Action: "Save"},
			{Key: "Esc", Action: "Cancel"},
		})
	}

	hints := []ShortcutHint{
		{Key: sf.formatKey(kb.NextTab), Action: "Next tab"},
		{Key: sf.formatKeys(append(append([]string{}, kb.MoveUp...), kb.MoveDown...)), Action: "Move"},
	}
	switch tab {
	case SettingsTab:
		hints = append(hints,
			ShortcutHint{Key: sf.formatKeys(kb.Expand), Action: "Select"},
			ShortcutHint{Key: "r", Action: "Rescan"},
		)
	case ExploreTab:
		hints = append(hints,
			ShortcutHint{Key: sf.formatKeys(kb.Expand), Action: "Open"},
			ShortcutHint{Key: sf.formatKeys(kb.Toggle), Action: "Queue"},
			ShortcutHint{Key: sf.formatKeys(kb.Back), Action: "Close"},
		)
	case DownloadTab:
		hints = append(hints, ShortcutHint{Key: sf.formatKey(kb.Start), Action: "Retry"})
	}
	hints = append(hints, ShortcutHint{Key: sf.formatKeys(kb.Quit), Action: "Quit"})
	return sf.FormatHints(hints)
}
