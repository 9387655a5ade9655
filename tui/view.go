package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/robmorgan/beatkeeper/utils"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	glyphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	appStyle   = lipgloss.NewStyle().Margin(1, 2, 0, 2)

	unlitColor  = utils.GetRGBFromString("#3A3A3A")
	beatColor   = utils.GetRGBFromString("white")
	accentColor = utils.GetRGBFromString("amber")
)

var glyphs = []string{"▲", "▶", "▼", "◀"}

const (
	lightGlyph   = "●"
	loadingLabel = "loading"
)

func (m Model) View() string {
	snapshot := m.metronome.Snapshot()

	var s strings.Builder
	s.WriteString(titleStyle.Render("beatkeeper"))
	s.WriteString("  ")
	s.WriteString(glyphStyle.Render(m.glyph()))
	s.WriteString("\n\n")

	s.WriteString(m.lights(snapshot.BeatsPerBar, snapshot.AccentFirstBeat))
	s.WriteString("\n\n")

	state := "stopped"
	if snapshot.Running {
		state = "playing"
	}
	accent := "off"
	if snapshot.AccentFirstBeat {
		accent = "on"
	}
	click := fmt.Sprintf("%d/%d", snapshot.ClickType+1, snapshot.ClickTypes)
	if !snapshot.ClickLoaded {
		click += " (" + loadingLabel + ")"
	}

	fmt.Fprintf(&s, "%s %s\n", labelStyle.Render("State: "), state)
	fmt.Fprintf(&s, "%s %.0f\n", labelStyle.Render("BPM:   "), snapshot.BPM)
	fmt.Fprintf(&s, "%s %d/%d\n", labelStyle.Render("Meter: "), snapshot.BeatsPerBar, snapshot.NoteValueForBeat)
	fmt.Fprintf(&s, "%s %s\n", labelStyle.Render("Click: "), click)
	fmt.Fprintf(&s, "%s %s\n", labelStyle.Render("Accent:"), accent)
	fmt.Fprintf(&s, "%s %s %.0f%%\n", labelStyle.Render("Volume:"), m.volume.ViewAs(snapshot.Volume), snapshot.Volume*100)

	s.WriteString(helpStyle.Render("(space) start/stop  ([,]) BPM -/+1  ({,}) BPM -/+10  (t)ap  (c)lick  (a)ccent\n" +
		"(b,B) beats -/+  (n)ote value  (+,-) volume  (q)uit"))

	if m.quitting {
		s.WriteString("\n")
	}
	return appStyle.Render(s.String())
}

func (m Model) glyph() string {
	return glyphs[m.rotation%len(glyphs)]
}

// lights renders one light per beat with the last beat fading out.
func (m Model) lights(beatsPerBar int, accentFirstBeat bool) string {
	level := m.flash.Level(m.clock.Now())

	out := make([]string, 0, beatsPerBar)
	for i := 0; i < beatsPerBar; i++ {
		lit := beatColor
		if i == 0 && accentFirstBeat {
			lit = accentColor
		}

		c := unlitColor
		if m.hasBeat && m.lastBeat.BeatIndex == i {
			c = utils.Blend(unlitColor, lit, level)
		}
		out = append(out, lightStyle(c).Render(lightGlyph))
	}
	return strings.Join(out, " ")
}

func lightStyle(c colorful.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}
