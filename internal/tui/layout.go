package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// normalizePane forces s to exactly width columns (ANSI-aware) and height
// lines, so panes line up under lipgloss.JoinHorizontal.
func normalizePane(s string, width, height int) string {
	if width < 0 {
		width = 0
	}
	lines := strings.Split(s, "\n")
	if height > 0 {
		if len(lines) > height {
			lines = lines[:height]
		}
		for len(lines) < height {
			lines = append(lines, "")
		}
	}
	for i, ln := range lines {
		w := xansi.StringWidth(ln)
		if w > width {
			switch {
			case width <= 0:
				ln = ""
			case width == 1:
				ln = xansi.Cut(ln, 0, 1)
			default:
				ln = xansi.Cut(ln, 0, width-1) + "…"
			}
			w = xansi.StringWidth(ln)
		}
		if w < width {
			ln += strings.Repeat(" ", width-w)
		}
		lines[i] = ln
	}
	return strings.Join(lines, "\n")
}

// splitWidths divides the screen between the board and the schedule. The
// board gets a fifth of the width, at least 24 columns when there is room.
func splitWidths(total int) (board, chart int) {
	if total <= 0 {
		return 0, 0
	}
	board = total / 5
	if board < 24 {
		board = 24
	}
	if board > total/2 {
		board = total / 2
	}
	return board, total - board - 1
}

// overlay places box centered on top of base.
func overlay(base, box string, width, height int) string {
	baseLines := strings.Split(normalizePane(base, width, height), "\n")
	boxLines := strings.Split(box, "\n")
	bw := 0
	for _, ln := range boxLines {
		if w := xansi.StringWidth(ln); w > bw {
			bw = w
		}
	}
	if bw > width {
		bw = width
	}
	top := (height - len(boxLines)) / 2
	if top < 0 {
		top = 0
	}
	left := (width - bw) / 2
	for i, ln := range boxLines {
		row := top + i
		if row >= len(baseLines) {
			break
		}
		ln = normalizePane(ln, bw, 1)
		bl := baseLines[row]
		baseLines[row] = xansi.Cut(bl, 0, left) + ln + xansi.Cut(bl, left+bw, width)
	}
	return strings.Join(baseLines, "\n")
}
