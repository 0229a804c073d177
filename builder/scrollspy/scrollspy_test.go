package scrollspy

import (
	"slices"
	"testing"
)

// fakeDOM is an in-memory document: two headings at 100px and 800px in a
// 2000px document viewed through a 600px viewport, unless a test says
// otherwise.
type fakeDOM struct {
	headings  []Heading
	docHeight int
	viewport  int
	scrollY   int

	listeners map[string]func()
	removals  []string

	active    []string
	setCalls  int
	clears    int
	label     string
	progress  float64
	queried   int
	lastLevel int

	linkTop    map[string]int
	linkHeight int
	tocTop     int
	tocVisible int
	tocContent int
	tocMoves   []int
}

func newFakeDOM() *fakeDOM {
	return &fakeDOM{
		headings: []Heading{
			{ID: "intro", Text: "Intro", Top: 100},
			{ID: "details", Text: "Details", Top: 800},
		},
		docHeight:  2000,
		viewport:   600,
		listeners:  make(map[string]func()),
		linkTop:    map[string]int{"intro": 10, "details": 60},
		linkHeight: 40,
		tocVisible: 300,
		tocContent: 300,
	}
}

func (d *fakeDOM) QueryHeadings(maxLevel int) []Heading {
	d.queried++
	d.lastLevel = maxLevel
	return d.headings
}

func (d *fakeDOM) DocumentHeight() int { return d.docHeight }
func (d *fakeDOM) ViewportHeight() int { return d.viewport }
func (d *fakeDOM) ScrollY() int        { return d.scrollY }

func (d *fakeDOM) Listen(event string, handler func()) func() {
	d.listeners[event] = handler
	return func() {
		delete(d.listeners, event)
		d.removals = append(d.removals, event)
	}
}

func (d *fakeDOM) fire(event string) {
	if handler, ok := d.listeners[event]; ok {
		handler()
	}
}

func (d *fakeDOM) SetActiveLinks(ids []string) {
	d.setCalls++
	d.active = slices.Clone(ids)
}

func (d *fakeDOM) ClearActiveLinks() {
	d.clears++
	d.active = nil
}

func (d *fakeDOM) LinkPosition(id string) (int, int, bool) {
	top, ok := d.linkTop[id]
	return top, d.linkHeight, ok
}

func (d *fakeDOM) TOCScrollState() (int, int, int) {
	return d.tocTop, d.tocVisible, d.tocContent
}

func (d *fakeDOM) ScrollTOCTo(top int) {
	d.tocMoves = append(d.tocMoves, top)
	d.tocTop = top
}

func (d *fakeDOM) SetSectionLabel(text string)  { d.label = text }
func (d *fakeDOM) SetProgress(fraction float64) { d.progress = fraction }

func startTracker(t *testing.T, dom *fakeDOM, cfg Config) *Tracker {
	t.Helper()
	tr := New(dom, cfg)
	tr.Init()
	tr.Start()
	return tr
}

func TestTrackingFollowsScroll(t *testing.T) {
	dom := newFakeDOM()
	startTracker(t, dom, Config{MaxDepth: 3, HeaderOffset: 80})

	// At the top the window is [80, 600]: only the first region overlaps.
	if !slices.Equal(dom.active, []string{"intro"}) {
		t.Fatalf("active at top = %v, want [intro]", dom.active)
	}
	if dom.label != "Intro" {
		t.Errorf("label = %q, want %q", dom.label, "Intro")
	}

	// At 750 the window is [830, 1350]: the first region ends at 800 and
	// no longer overlaps, the second does.
	dom.scrollY = 750
	dom.fire("scroll")
	if !slices.Equal(dom.active, []string{"details"}) {
		t.Fatalf("active at 750 = %v, want [details]", dom.active)
	}
	if dom.label != "Details" {
		t.Errorf("label = %q, want %q", dom.label, "Details")
	}
}

func TestTrackingMarksOverlappingRegions(t *testing.T) {
	dom := newFakeDOM()
	startTracker(t, dom, Config{MaxDepth: 3, HeaderOffset: 80})

	// Window [380, 900] straddles the 800px boundary.
	dom.scrollY = 300
	dom.fire("scroll")
	if !slices.Equal(dom.active, []string{"intro", "details"}) {
		t.Fatalf("active = %v, want both regions", dom.active)
	}
	if dom.label != "Intro" {
		t.Errorf("label = %q, want first visible region", dom.label)
	}
}

func TestScrollWithinRegionWritesNothing(t *testing.T) {
	dom := newFakeDOM()
	startTracker(t, dom, Config{MaxDepth: 3, HeaderOffset: 80})
	if dom.setCalls != 1 {
		t.Fatalf("setCalls after start = %d, want 1", dom.setCalls)
	}

	for _, y := range []int{10, 50, 120} {
		dom.scrollY = y
		dom.fire("scroll")
	}
	if dom.setCalls != 1 {
		t.Errorf("setCalls after same-region scrolls = %d, want 1", dom.setCalls)
	}
}

func TestProgressUpdatesEveryScroll(t *testing.T) {
	dom := newFakeDOM()
	startTracker(t, dom, Config{MaxDepth: 3, HeaderOffset: 80})
	if dom.progress != 0 {
		t.Fatalf("progress at top = %v, want 0", dom.progress)
	}

	// 700 of 1400 scrollable pixels, still inside the first region.
	dom.scrollY = 700
	dom.fire("scroll")
	if dom.progress != 0.5 {
		t.Errorf("progress = %v, want 0.5", dom.progress)
	}

	dom.scrollY = 1400
	dom.fire("scroll")
	if dom.progress != 1 {
		t.Errorf("progress at bottom = %v, want 1", dom.progress)
	}
}

func TestQueryLevelFromDepth(t *testing.T) {
	dom := newFakeDOM()
	startTracker(t, dom, Config{MaxDepth: 3, HeaderOffset: 80})
	if dom.lastLevel != 4 {
		t.Errorf("queried max level = %d, want 4 (depth 3 reaches h4)", dom.lastLevel)
	}
}

func TestNoHeadingsIsTerminal(t *testing.T) {
	dom := newFakeDOM()
	dom.headings = nil
	tr := New(dom, Config{MaxDepth: 3, HeaderOffset: 80})
	tr.Init()

	if tr.state != stateEmpty {
		t.Fatalf("state = %d, want empty", tr.state)
	}
	if dom.clears != 1 {
		t.Errorf("clears = %d, want stale highlighting cleared once", dom.clears)
	}

	// Start must not register anything from the empty state.
	tr.Start()
	if len(dom.listeners) != 0 {
		t.Errorf("listeners registered from empty state: %v", dom.listeners)
	}
}

func TestDisabledDepthSkipsQuery(t *testing.T) {
	dom := newFakeDOM()
	tr := New(dom, Config{MaxDepth: 0, HeaderOffset: 80})
	tr.Init()

	if tr.state != stateEmpty {
		t.Fatalf("state = %d, want empty", tr.state)
	}
	if dom.queried != 0 {
		t.Errorf("QueryHeadings called %d times, want 0", dom.queried)
	}
}

func TestResizeRebuildsRegions(t *testing.T) {
	dom := newFakeDOM()
	startTracker(t, dom, Config{MaxDepth: 3, HeaderOffset: 80})

	// Reflow pushes the second heading above the fold.
	dom.headings = []Heading{
		{ID: "intro", Text: "Intro", Top: 50},
		{ID: "details", Text: "Details", Top: 400},
	}
	dom.fire("resize")
	if !slices.Equal(dom.active, []string{"intro", "details"}) {
		t.Fatalf("active after resize = %v, want both", dom.active)
	}
}

func TestResizeToNoHeadingsGoesEmpty(t *testing.T) {
	dom := newFakeDOM()
	tr := startTracker(t, dom, Config{MaxDepth: 3, HeaderOffset: 80})

	dom.headings = nil
	dom.fire("resize")
	if tr.state != stateEmpty {
		t.Fatalf("state = %d, want empty", tr.state)
	}
	if dom.active != nil {
		t.Errorf("active = %v, want cleared", dom.active)
	}

	// Further scrolls are inert.
	before := dom.setCalls
	dom.scrollY = 750
	dom.fire("scroll")
	if dom.setCalls != before {
		t.Errorf("scroll in empty state wrote links")
	}
}

func TestCleanupIsIdempotent(t *testing.T) {
	dom := newFakeDOM()
	tr := startTracker(t, dom, Config{MaxDepth: 3, HeaderOffset: 80})

	tr.Cleanup()
	tr.Cleanup()

	if got := len(dom.removals); got != 2 {
		t.Fatalf("listener removals = %d, want exactly 2 (scroll, resize)", got)
	}
	if len(dom.listeners) != 0 {
		t.Errorf("listeners still registered: %v", dom.listeners)
	}
	if tr.state != stateTornDown {
		t.Errorf("state = %d, want torn down", tr.state)
	}
}

func TestCenterScrollsAndClamps(t *testing.T) {
	dom := newFakeDOM()
	dom.linkTop = map[string]int{"intro": 10, "details": 820}
	dom.tocVisible = 300
	dom.tocContent = 900
	startTracker(t, dom, Config{MaxDepth: 3, HeaderOffset: 80})

	dom.scrollY = 750
	dom.fire("scroll")

	// Centering "details" wants 820+20-150 = 690, clamped to the 600px
	// scrollable range.
	if !slices.Equal(dom.tocMoves, []int{600}) {
		t.Fatalf("toc moves = %v, want [600]", dom.tocMoves)
	}
}

func TestCenterSkipsTinyAdjustments(t *testing.T) {
	dom := newFakeDOM()
	dom.linkTop = map[string]int{"intro": 140, "details": 820}
	dom.tocVisible = 300
	dom.tocContent = 900
	startTracker(t, dom, Config{MaxDepth: 3, HeaderOffset: 80})

	// Centering "intro" wants 140+20-150 = 10, within the 16px threshold
	// of the current offset 0.
	if len(dom.tocMoves) != 0 {
		t.Errorf("toc moves = %v, want none below threshold", dom.tocMoves)
	}
}

func TestRegionBounds(t *testing.T) {
	dom := newFakeDOM()
	tr := New(dom, Config{MaxDepth: 3, HeaderOffset: 80})
	tr.Init()

	want := []region{
		{id: "intro", text: "Intro", start: 100, end: 800},
		{id: "details", text: "Details", start: 800, end: 2000},
	}
	if !slices.Equal(tr.regions, want) {
		t.Errorf("regions = %+v, want %+v", tr.regions, want)
	}
}
