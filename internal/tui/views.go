package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/emberly-app/emberly-stories/internal/carousel"
	"github.com/emberly-app/emberly-stories/internal/domain"
	"github.com/emberly-app/emberly-stories/internal/page"
	"github.com/emberly-app/emberly-stories/internal/playback"
	"github.com/emberly-app/emberly-stories/internal/toast"
	apperrors "github.com/emberly-app/emberly-stories/pkg/errors"
	"github.com/emberly-app/emberly-stories/pkg/formatter"
)

const barSegments = 12

func (m Model) View() string {
	var body string
	switch m.screen {
	case screenViewer:
		body = m.viewerView()
	case screenCreate:
		body = m.createView()
	default:
		body = m.carouselView()
	}

	parts := []string{titleStyle.Render("Emberly · Stories"), body}
	if t := m.toastsView(); t != "" {
		parts = append(parts, t)
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...) + "\n"
}

func (m Model) carouselView() string {
	phase, fetchErr := m.controller.Phase()

	switch phase {
	case page.PhaseLoading:
		return fmt.Sprintf("\n  %s Loading stories...\n", m.spinner.View())

	case page.PhaseFailed:
		msg := "Couldn't load stories: " + fetchErr.Error()
		switch {
		case apperrors.IsUnauthorized(fetchErr):
			msg = "Session expired, sign in again"
		case apperrors.IsServiceUnavailable(fetchErr):
			msg = "Emberly is unreachable right now"
		}
		return "\n" + errStyle.Render("  "+msg) + "\n" +
			helpStyle.Render("  r retry · q quit") + "\n"
	}

	list := m.controller.Stories()
	if len(list) == 0 {
		return "\n  No stories yet. Check back later!\n" +
			helpStyle.Render("  n new story · q quit") + "\n"
	}

	cells := make([]string, 0, len(list)+1)
	cells = append(cells, helpStyle.Render("[+ your story]"))
	for _, ring := range carousel.Rings(list) {
		cells = append(cells, m.ringCell(ring))
	}

	return "\n  " + strings.Join(cells, "  ") + "\n\n" +
		helpStyle.Render("  ←/→ choose · enter open · n new story · q quit") + "\n"
}

func (m Model) ringCell(ring carousel.Ring) string {
	style := ringRoseStyle
	if ring.Accent == carousel.AccentViolet {
		style = ringVioletStyle
	}
	if ring.Viewed {
		style = ringViewedStyle
	}

	cell := style.Render("◉ " + formatter.Truncate(ring.AuthorName, 12))
	if ring.Index == m.cursor {
		cell = ringCursorStyle.Render(cell)
	}
	return cell
}

func (m Model) viewerView() string {
	snap := m.snap
	if snap.Story == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.barsView(snap.Bars) + "\n\n")

	slide := snap.Slide()
	ago := ""
	if slide != nil {
		ago = formatter.TimeAgo(slide.CreatedAt, time.Now())
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(snap.Story.AuthorName))
	b.WriteString(helpStyle.Render("  " + ago))
	b.WriteString("\n\n")

	if slide != nil {
		icon := "📷"
		if slide.MediaKind == domain.MediaKindVideo {
			icon = "🎬"
		}
		b.WriteString(fmt.Sprintf("%s  slide %d/%d\n", icon, snap.SlideIndex+1, len(snap.Story.Slides)))
		if slide.Caption != "" {
			b.WriteString(captionStyle.Render(slide.Caption) + "\n")
		}
	}

	if snap.State == playback.StatePaused {
		b.WriteString("\n" + pausedStyle.Render("⏸ paused") + "\n")
	}

	if snap.ReactionsVisible {
		b.WriteString("\n" + m.reactionPanel() + "\n")
	}

	frame := viewerFrameStyle.Render(strings.TrimRight(b.String(), "\n"))
	help := helpStyle.Render("  ←/→ navigate · space hold · r react · esc close")
	return "\n" + frame + "\n" + help + "\n"
}

func (m Model) reactionPanel() string {
	cells := make([]string, 0, 6)
	for i, r := range domain.Reactions() {
		cells = append(cells, fmt.Sprintf("%d %s", i+1, r.Emoji()))
	}
	return "react: " + strings.Join(cells, "  ")
}

func (m Model) barsView(bars []float64) string {
	cells := make([]string, 0, len(bars))
	for _, fill := range bars {
		full := int(fill / 100 * barSegments)
		if full > barSegments {
			full = barSegments
		}
		cell := barFullStyle.Render(strings.Repeat("━", full)) +
			barEmptyStyle.Render(strings.Repeat("─", barSegments-full))
		cells = append(cells, cell)
	}
	return strings.Join(cells, " ")
}

func (m Model) createView() string {
	return "\n  Publish a new story\n\n  " + m.input.View() + "\n\n" +
		helpStyle.Render("  enter publish · esc cancel") + "\n"
}

func (m Model) toastsView() string {
	if len(m.toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		style := toastInfoStyle
		switch t.Kind {
		case toast.KindSuccess:
			style = toastSuccessStyle
		case toast.KindError:
			style = toastErrorStyle
		}
		lines = append(lines, style.Render(t.Message))
	}
	return strings.Join(lines, "\n")
}
