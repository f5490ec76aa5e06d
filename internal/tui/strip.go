package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/typeduel/internal/session"
)

const stripMarker = "…"

// renderStrip renders one level's units on a single line with the cursor
// unit highlighted. Everything behind the cursor was necessarily typed
// correctly, so it renders as done; the window slides with the cursor and
// grows ahead two units for every one behind.
func renderStrip(units []string, cursor int, buffer string, last session.Outcome, width int) string {
	if len(units) == 0 {
		return ""
	}
	display := cursor
	if display >= len(units) {
		display = len(units) - 1
	}
	if display < 0 {
		display = 0
	}
	widths := make([]int, len(units))
	for i, u := range units {
		widths[i] = runewidth.StringWidth(u)
	}
	budget := width - 2*(runewidth.StringWidth(stripMarker)+1)
	start, end := stripWindow(widths, display, budget)

	parts := make([]string, 0, end-start+2)
	if start > 0 {
		parts = append(parts, pendingStyle.Render(stripMarker))
	}
	for i := start; i < end; i++ {
		switch {
		case i < cursor:
			parts = append(parts, correctStyle.Render(units[i]))
		case i == cursor:
			parts = append(parts, renderCursorUnit(units[i], buffer, last == session.Incorrect))
		default:
			parts = append(parts, pendingStyle.Render(units[i]))
		}
	}
	if end < len(units) {
		parts = append(parts, pendingStyle.Render(stripMarker))
	}
	return strings.Join(parts, " ")
}

// stripWindow picks the half-open unit range to show. The cursor unit is
// always included even when it alone exceeds the budget; widths count one
// separator cell between adjacent units.
func stripWindow(widths []int, cursor, budget int) (start, end int) {
	if len(widths) == 0 {
		return 0, 0
	}
	if cursor < 0 {
		cursor = 0
	}
	if cursor >= len(widths) {
		cursor = len(widths) - 1
	}
	start, end = cursor, cursor+1
	used := widths[cursor]
	for {
		grown := false
		for i := 0; i < 2 && end < len(widths); i++ {
			if used+1+widths[end] > budget {
				break
			}
			used += 1 + widths[end]
			end++
			grown = true
		}
		if start > 0 && used+1+widths[start-1] <= budget {
			used += 1 + widths[start-1]
			start--
			grown = true
		}
		if !grown {
			return start, end
		}
	}
}

// renderCursorUnit highlights the unit under the cursor. In words mode the
// typed buffer is compared rune by rune so the player sees match progress
// inside the word; a missed submission flips the highlight red.
func renderCursorUnit(unit, buffer string, missed bool) string {
	style := currentStyle
	if missed {
		style = missStyle
	}
	if buffer == "" {
		return style.Render(unit)
	}
	unitRunes := []rune(unit)
	bufRunes := []rune(buffer)
	var b strings.Builder
	for i, r := range unitRunes {
		switch {
		case i >= len(bufRunes):
			b.WriteString(style.Render(string(r)))
		case bufRunes[i] == r:
			b.WriteString(correctStyle.Render(string(r)))
		default:
			b.WriteString(incorrectStyle.Render(string(r)))
		}
	}
	return b.String()
}

// renderBufferLine shows the word-mode input buffer under the strip.
func renderBufferLine(buffer string) string {
	return footerStyle.Render("> ") + correctStyle.Render(buffer) + currentStyle.Render(" ")
}
