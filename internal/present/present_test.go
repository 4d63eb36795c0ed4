package present

import (
	"strings"
	"testing"
)

var testCfg = Config{WrapWidth: 20, LinesPerPage: 4, BriefChars: 60}

func TestShortTextIdenticalAcrossToggle(t *testing.T) {
	v := Load("A cat on a mat.", true, testCfg)

	before := v.Text()
	v.ToggleVerbosity()
	after := v.Text()

	if before != after {
		t.Errorf("short text renders differently: brief %q vs verbose %q", before, after)
	}
}

func TestNeverTruncateRendersFullText(t *testing.T) {
	long := strings.Repeat("five small words here ", 10)
	v := Load(long, false, testCfg)

	brief := v.Text()
	v.ToggleVerbosity()
	verbose := v.Text()

	if brief != verbose {
		t.Error("truncation disabled: brief and verbose must match")
	}
	if strings.Contains(brief, Marker) {
		t.Error("truncation disabled: no continuation marker expected")
	}
}

func TestBriefIsPrefixOfVerbose(t *testing.T) {
	long := "one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen"
	v := Load(long, true, testCfg)

	brief := strings.ReplaceAll(v.Text(), "\n", " ")
	v.ToggleVerbosity()
	verbose := strings.ReplaceAll(v.Text(), "\n", " ")

	if !strings.HasSuffix(brief, Marker) {
		t.Fatalf("brief rendering should end with marker, got %q", brief)
	}
	body := strings.TrimSuffix(brief, Marker)
	body = strings.TrimRight(body, " ")
	if !strings.HasPrefix(verbose, body) {
		t.Errorf("brief body %q is not a prefix of verbose %q", body, verbose)
	}
	if len(verbose) <= len(body) {
		t.Error("verbose should be strictly longer than the brief body")
	}
}

func TestToggleResetsScroll(t *testing.T) {
	long := strings.Repeat("word ", 200)
	v := Load(long, true, Config{WrapWidth: 10, LinesPerPage: 3, BriefChars: 500})

	v.Scroll(2)
	if v.Page() != 2 {
		t.Fatalf("page = %d, want 2", v.Page())
	}

	v.ToggleVerbosity()
	if v.Page() != 0 {
		t.Errorf("toggle should reset to first page, got %d", v.Page())
	}
}

func TestScrollClampsWithoutWraparound(t *testing.T) {
	long := strings.Repeat("word ", 60)
	v := Load(long, false, Config{WrapWidth: 10, LinesPerPage: 3})

	last := v.PageCount() - 1
	if last < 1 {
		t.Fatalf("test text should paginate, pages = %d", v.PageCount())
	}

	v.Scroll(-1)
	if v.Page() != 0 {
		t.Errorf("scrolling before first page should clamp to 0, got %d", v.Page())
	}

	v.Scroll(last + 5)
	if v.Page() != last {
		t.Errorf("scrolling past last page should clamp to %d, got %d", last, v.Page())
	}

	v.Scroll(1)
	if v.Page() != last {
		t.Errorf("scroll at last page should be a no-op, got %d", v.Page())
	}
}

func TestPagesNeverExceedGeometry(t *testing.T) {
	long := strings.Repeat("several words in a row ", 40)
	cfg := Config{WrapWidth: 18, LinesPerPage: 5, BriefChars: 100}
	v := Load(long, true, cfg)
	v.ToggleVerbosity()

	for v.Page() < v.PageCount()-1 {
		page := v.CurrentPage()
		if len(page) > cfg.LinesPerPage {
			t.Fatalf("page %d has %d lines, want <= %d", v.Page(), len(page), cfg.LinesPerPage)
		}
		for _, line := range page {
			if len(line) > cfg.WrapWidth {
				t.Fatalf("line %q exceeds wrap width %d", line, cfg.WrapWidth)
			}
		}
		v.Scroll(1)
	}
}

func TestEmptyTextStillRenders(t *testing.T) {
	v := Load("", true, testCfg)
	if v.PageCount() != 1 {
		t.Errorf("empty text should render one empty page, got %d", v.PageCount())
	}
	if got := v.CurrentPage(); len(got) != 1 || got[0] != "" {
		t.Errorf("empty text page = %#v", got)
	}
}
