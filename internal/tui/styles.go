package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var particleInfo = map[string]string{
	"mono_ligand":  "one binding site",
	"multi_ligand": "birth-death over k ligands",
	"interfering":  "entry with obstruction",
	"fatiguing":    "entry with fatigue",
}

// sparkline squeezes data into width cells, scaled to [lo, hi].
func sparkline(data []float64, width int, lo, hi float64) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	rang := hi - lo
	if rang <= 0 {
		rang = 1
	}
	step := len(data) / width
	if step < 1 {
		step = 1
	}
	var sb strings.Builder
	for i := 0; i < width && i*step < len(data); i++ {
		idx := int((data[i*step] - lo) / rang * 7)
		idx = max(0, min(idx, 7))
		sb.WriteRune(chars[idx])
	}
	return sb.String()
}

func progressBar(frac float64, width int) string {
	frac = max(0, min(frac, 1))
	filled := int(frac * float64(width))
	return cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", width-filled))
}
