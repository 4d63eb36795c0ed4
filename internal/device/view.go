package device

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/sightbox/sightbox/internal/present"
	"github.com/sightbox/sightbox/internal/ui"
)

// View renders the device display for the current state. The screensaver
// blanks the screen entirely.
func (m Model) View() string {
	if m.state == StateScreensaver {
		return ""
	}

	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.displayWidth())))

	switch m.state {
	case StateViewfinder, StateFocusing, StateCapturing:
		sections = append(sections, m.renderViewfinder())
	case StateSending:
		sections = append(sections, m.renderSending())
	case StateViewing:
		sections = append(sections, m.renderViewing())
	case StateBrowsing:
		sections = append(sections, m.renderBrowse())
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.displayWidth())))

	if m.notice != "" {
		sections = append(sections, ui.NoticeStyle.Render("! "+m.notice))
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) displayWidth() int {
	if m.width > 0 && m.width < m.cfg.Display.WrapWidth+4 {
		return m.width
	}
	return m.cfg.Display.WrapWidth + 4
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("SIGHTBOX")
	badge := ui.StateBadgeStyle.Render("[" + strings.ToUpper(m.state.String()) + "]")
	return title + " " + badge
}

func (m Model) renderViewfinder() string {
	var lines []string

	switch m.state {
	case StateFocusing:
		lines = append(lines, ui.SendingStyle.Render("focusing..."))
	case StateCapturing:
		lines = append(lines, ui.SendingStyle.Render("capturing..."))
	default:
		lines = append(lines, ui.DimStyle.Render("ready"))
	}

	pm := m.prompts.Current()
	qm := m.qualities.Current()
	lines = append(lines, "")
	lines = append(lines, ui.PromptLabelStyle.Render(
		fmt.Sprintf("prompt  ◂ %s ▸  %d/%d", pm.Label, m.prompts.Index()+1, m.prompts.Len())))
	lines = append(lines, ui.QualityLabelStyle.Render(
		fmt.Sprintf("quality ▴ %s ▾  %s", qm.Name, qm.Resolution)))

	if m.store.Disabled() {
		lines = append(lines, "")
		lines = append(lines, ui.ErrorStyle.Render("storage off"))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSending() string {
	elapsed := 0.0
	if !m.sendStart.IsZero() {
		elapsed = time.Since(m.sendStart).Seconds()
	}
	lines := []string{
		ui.SendingStyle.Render(fmt.Sprintf("analyzing... %.0fs", elapsed)),
		"",
		ui.DimStyle.Render("esc cancels"),
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderViewing() string {
	if m.view == nil {
		return ""
	}

	var badge string
	if m.view.Mode() == present.Verbose {
		badge = ui.VerboseBadgeStyle.Render("VERBOSE")
	} else {
		badge = ui.BriefBadgeStyle.Render("BRIEF")
	}
	pages := ui.PageIndicatorStyle.Render(
		fmt.Sprintf("%d/%d", m.view.Page()+1, m.view.PageCount()))

	lines := []string{badge + " " + ui.DimStyle.Render(m.viewLabel) + " " + pages, ""}
	for _, l := range m.view.CurrentPage() {
		lines = append(lines, ui.ResponseStyle.Render(l))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderBrowse() string {
	if len(m.entries) == 0 {
		return ui.DimStyle.Render("no saved photos")
	}

	var lines []string
	for i, e := range m.entries {
		name := filepath.Base(e.Path)
		caption := m.captions[e.Sequence]
		row := name
		if caption != "" {
			row += "  " + caption
		}
		if i == m.selected {
			lines = append(lines, ui.SelectedStyle.Render("▸ "+row))
		} else {
			lines = append(lines, ui.DimStyle.Render("  "+row))
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFooter() string {
	var keys [][2]string
	switch m.state {
	case StateViewfinder:
		keys = [][2]string{
			{"space", "shoot"}, {"f", "focus"}, {"◂▸", "prompt"},
			{"▴▾", "quality"}, {"tab", "browse"}, {"q", "quit"},
		}
	case StateSending:
		keys = [][2]string{{"esc", "cancel"}}
	case StateViewing:
		keys = [][2]string{
			{"▴▾", "page"}, {"tab", "detail"}, {"esc", "back"},
		}
	case StateBrowsing:
		keys = [][2]string{
			{"▴▾", "select"}, {"enter", "analyze"}, {"esc", "back"},
		}
	default:
		return ""
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, ui.FooterKeyStyle.Render(k[0])+" "+ui.FooterDescStyle.Render(k[1]))
	}
	return strings.Join(parts, "  ")
}
