// Package scrollspy maps the scroll position to the set of visible
// headings and keeps the matching TOC links highlighted. The tracker is a
// small state machine over an abstract DOM so the logic runs and tests
// outside the browser; the wasm entry point supplies the real DOM.
package scrollspy

// Heading is one document heading as reported by the DOM: its anchor id,
// display text, and top offset in document pixels.
type Heading struct {
	ID   string
	Text string
	Top  int
}

// DOM is the document surface the tracker drives. SetActiveLinks replaces
// the whole active set: the implementation removes the marker from every
// TOC link, then adds it to the listed ids.
type DOM interface {
	// QueryHeadings returns content headings up to and including maxLevel
	// (2 = h2), in document order.
	QueryHeadings(maxLevel int) []Heading
	DocumentHeight() int
	ViewportHeight() int
	ScrollY() int

	// Listen registers handler for a window event and returns its remover.
	Listen(event string, handler func()) (remove func())

	SetActiveLinks(ids []string)
	ClearActiveLinks()

	// LinkPosition reports a TOC link's top offset and height within the
	// TOC scroll container.
	LinkPosition(id string) (top, height int, ok bool)
	// TOCScrollState reports the container's scroll offset, visible
	// height, and total content height.
	TOCScrollState() (scrollTop, visibleHeight, contentHeight int)
	ScrollTOCTo(top int)

	SetSectionLabel(text string)
	SetProgress(fraction float64)
}

// Config tunes the tracker.
type Config struct {
	// MaxDepth is the deepest heading depth shown in the TOC (h2 = 1).
	// Zero or negative disables tracking entirely.
	MaxDepth int
	// HeaderOffset is the fixed page header height in pixels; the top of
	// the visibility window sits below it.
	HeaderOffset int
	// CenterThreshold is the minimum pixel adjustment before the TOC
	// container recenters, suppressing sub-pixel jitter. Defaults to 16.
	CenterThreshold int
}

type state int

const (
	stateUninitialized state = iota
	stateBuilt
	stateTracking
	stateEmpty
	stateTornDown
)

// region is the vertical span owned by one heading: from its top offset to
// the next heading's top offset, the last one extending to document end.
type region struct {
	id    string
	text  string
	start int
	end   int
}

// Tracker owns the scroll-to-heading mapping for one page.
type Tracker struct {
	dom      DOM
	cfg      Config
	state    state
	regions  []region
	active   []string
	removers []func()
}

// New creates an uninitialized tracker.
func New(dom DOM, cfg Config) *Tracker {
	if cfg.CenterThreshold <= 0 {
		cfg.CenterThreshold = 16
	}
	return &Tracker{dom: dom, cfg: cfg}
}

// Init queries the DOM for qualifying headings and builds the region list.
// With no qualifying headings the tracker lands in a terminal empty state
// and clears any leftover highlighting.
func (t *Tracker) Init() {
	if t.state != stateUninitialized {
		return
	}

	t.buildRegions()
	if len(t.regions) == 0 {
		t.state = stateEmpty
		t.dom.ClearActiveLinks()
		return
	}
	t.state = stateBuilt
}

// Start registers the scroll and resize listeners and runs the first
// highlight pass.
func (t *Tracker) Start() {
	if t.state != stateBuilt {
		return
	}

	t.removers = append(t.removers,
		t.dom.Listen("scroll", t.onScroll),
		t.dom.Listen("resize", t.onResize),
	)
	t.state = stateTracking
	t.update(true)
}

// Cleanup removes every registered listener and resets internal state.
// Safe to call any number of times.
func (t *Tracker) Cleanup() {
	for _, remove := range t.removers {
		remove()
	}
	t.removers = nil
	t.regions = nil
	t.active = nil
	t.state = stateTornDown
}

func (t *Tracker) buildRegions() {
	t.regions = t.regions[:0]
	if t.cfg.MaxDepth <= 0 {
		return
	}

	headings := t.dom.QueryHeadings(t.cfg.MaxDepth + 1)
	docHeight := t.dom.DocumentHeight()
	for i, h := range headings {
		end := docHeight
		if i+1 < len(headings) {
			end = headings[i+1].Top
		}
		t.regions = append(t.regions, region{id: h.ID, text: h.Text, start: h.Top, end: end})
	}
}
