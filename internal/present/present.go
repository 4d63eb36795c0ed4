// Package present renders analysis text for the device display: brief and
// verbose disclosure levels, line wrapping, and page-based scrolling.
package present

import "strings"

// Verbosity is the disclosure level of the rendered text.
type Verbosity int

const (
	Brief Verbosity = iota
	Verbose
)

// Marker appended to brief text that was cut short.
const Marker = "…"

// Config carries the display geometry and truncation limit.
type Config struct {
	WrapWidth    int // columns per display line
	LinesPerPage int // lines per screen
	BriefChars   int // brief mode shows at most this many characters
}

// View holds both renderings of one text, computed once on Load. Toggling
// and scrolling never re-wrap.
type View struct {
	cfg     Config
	mode    Verbosity
	page    int
	brief   [][]string
	verbose [][]string
}

// Load wraps and paginates text for both disclosure levels. When
// allowTruncation is false, or the text already fits the brief limit, the
// brief rendering is identical to the verbose one.
func Load(text string, allowTruncation bool, cfg Config) *View {
	if cfg.WrapWidth <= 0 {
		cfg.WrapWidth = 20
	}
	if cfg.LinesPerPage <= 0 {
		cfg.LinesPerPage = 1
	}

	verbose := paginate(wrap(text, cfg.WrapWidth), cfg.LinesPerPage)

	brief := verbose
	if allowTruncation && cfg.BriefChars > 0 {
		if runes := []rune(text); len(runes) > cfg.BriefChars {
			short := string(runes[:cfg.BriefChars]) + Marker
			brief = paginate(wrap(short, cfg.WrapWidth), cfg.LinesPerPage)
		}
	}

	return &View{cfg: cfg, mode: Brief, brief: brief, verbose: verbose}
}

// Mode returns the active disclosure level.
func (v *View) Mode() Verbosity { return v.mode }

// Page returns the active page index.
func (v *View) Page() int { return v.page }

// PageCount returns the page count for the active mode.
func (v *View) PageCount() int { return len(v.pages()) }

// ToggleVerbosity switches disclosure level and resets to the first page.
func (v *View) ToggleVerbosity() {
	if v.mode == Brief {
		v.mode = Verbose
	} else {
		v.mode = Brief
	}
	v.page = 0
}

// Scroll moves by delta pages, clamped at both ends. Unlike mode selection,
// paging does not wrap around.
func (v *View) Scroll(delta int) {
	v.page += delta
	if v.page < 0 {
		v.page = 0
	}
	if last := v.PageCount() - 1; v.page > last {
		v.page = last
	}
}

// CurrentPage returns the display lines of the active page.
func (v *View) CurrentPage() []string {
	p := v.pages()
	if v.page >= len(p) {
		return nil
	}
	return p[v.page]
}

// Text returns the full rendered text of the active mode, one string per
// line, for callers that need everything at once.
func (v *View) Text() string {
	var lines []string
	for _, page := range v.pages() {
		lines = append(lines, page...)
	}
	return strings.Join(lines, "\n")
}

func (v *View) pages() [][]string {
	if v.mode == Verbose {
		return v.verbose
	}
	return v.brief
}

// wrap breaks text into lines at most width columns wide, splitting on
// spaces. Paragraph breaks in the source are preserved.
func wrap(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			switch {
			case current == "":
				current = word
			case len(current)+1+len(word) <= width:
				current += " " + word
			default:
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}

func paginate(lines []string, perPage int) [][]string {
	var pages [][]string
	for start := 0; start < len(lines); start += perPage {
		end := start + perPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	if len(pages) == 0 {
		pages = [][]string{{""}}
	}
	return pages
}
