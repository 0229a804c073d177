//go:build js && wasm

package main

import (
	"strconv"
	"strings"
	"syscall/js"

	"github.com/foliogen/folio/builder/scrollspy"
)

var (
	tracker *scrollspy.Tracker
	dom     *jsDOM
)

func main() {
	js.Global().Set("initScrollspy", js.FuncOf(initScrollspy))
	js.Global().Set("cleanupScrollspy", js.FuncOf(cleanupScrollspy))

	// Keep the Go runtime alive for the callbacks.
	c := make(chan struct{}, 0)
	<-c
}

func initScrollspy(this js.Value, args []js.Value) interface{} {
	teardown()

	doc := js.Global().Get("document")
	content := doc.Call("querySelector", ".post-content")
	if !content.Truthy() {
		return nil
	}
	toc := doc.Call("getElementById", "toc")

	dom = newJSDOM(doc, content, toc)
	tracker = scrollspy.New(dom, scrollspy.Config{
		MaxDepth:     intAttr(toc, "data-max-depth", 3),
		HeaderOffset: intAttr(toc, "data-header-offset", 80),
	})
	tracker.Init()
	tracker.Start()
	return nil
}

func cleanupScrollspy(this js.Value, args []js.Value) interface{} {
	teardown()
	return nil
}

func teardown() {
	if tracker != nil {
		tracker.Cleanup()
		tracker = nil
	}
	if dom != nil {
		dom.release()
		dom = nil
	}
}

func intAttr(el js.Value, name string, fallback int) int {
	if !el.Truthy() {
		return fallback
	}
	v := el.Call("getAttribute", name)
	if !v.Truthy() {
		return fallback
	}
	n, err := strconv.Atoi(v.String())
	if err != nil {
		return fallback
	}
	return n
}

// jsDOM implements scrollspy.DOM over the browser document. The TOC
// container, section label, and progress bar are all optional; writes to
// missing elements are dropped.
type jsDOM struct {
	win     js.Value
	doc     js.Value
	content js.Value
	toc     js.Value
	label   js.Value
	bar     js.Value

	// Progress writes are coalesced onto animation frames. frameFn is
	// allocated once and released on teardown so no callback outlives
	// the tracker.
	framePending bool
	frameID      js.Value
	frameFn      js.Func
	barTarget    float64
}

func newJSDOM(doc, content, toc js.Value) *jsDOM {
	d := &jsDOM{
		win:     js.Global(),
		doc:     doc,
		content: content,
		toc:     toc,
		label:   doc.Call("getElementById", "toc-label"),
		bar:     doc.Call("getElementById", "reading-progress"),
	}
	d.frameFn = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		d.framePending = false
		width := strconv.FormatFloat(d.barTarget*100, 'f', 2, 64) + "%"
		d.bar.Get("style").Set("width", width)
		return nil
	})
	return d
}

func (d *jsDOM) release() {
	if d.framePending {
		d.framePending = false
		d.win.Call("cancelAnimationFrame", d.frameID)
	}
	d.frameFn.Release()
}

func (d *jsDOM) QueryHeadings(maxLevel int) []scrollspy.Heading {
	if maxLevel < 2 {
		return nil
	}
	if maxLevel > 6 {
		maxLevel = 6
	}
	parts := make([]string, 0, maxLevel-1)
	for lvl := 2; lvl <= maxLevel; lvl++ {
		parts = append(parts, "h"+strconv.Itoa(lvl)+"[id]")
	}

	nodes := d.content.Call("querySelectorAll", strings.Join(parts, ", "))
	scrollY := d.win.Get("scrollY").Float()
	headings := make([]scrollspy.Heading, 0, nodes.Length())
	for i := 0; i < nodes.Length(); i++ {
		el := nodes.Index(i)
		top := el.Call("getBoundingClientRect").Get("top").Float() + scrollY
		headings = append(headings, scrollspy.Heading{
			ID:   el.Get("id").String(),
			Text: strings.TrimSpace(el.Get("textContent").String()),
			Top:  int(top),
		})
	}
	return headings
}

func (d *jsDOM) DocumentHeight() int {
	return d.doc.Get("documentElement").Get("scrollHeight").Int()
}

func (d *jsDOM) ViewportHeight() int {
	return d.win.Get("innerHeight").Int()
}

func (d *jsDOM) ScrollY() int {
	return int(d.win.Get("scrollY").Float())
}

func (d *jsDOM) Listen(event string, handler func()) func() {
	fn := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		handler()
		return nil
	})
	opts := js.Global().Get("Object").New()
	opts.Set("passive", true)
	d.win.Call("addEventListener", event, fn, opts)

	removed := false
	return func() {
		if removed {
			return
		}
		removed = true
		d.win.Call("removeEventListener", event, fn)
		fn.Release()
	}
}

func (d *jsDOM) SetActiveLinks(ids []string) {
	d.ClearActiveLinks()
	for _, id := range ids {
		link := d.tocLink(id)
		if link.Truthy() {
			link.Get("classList").Call("add", "active")
		}
	}
}

func (d *jsDOM) ClearActiveLinks() {
	if !d.toc.Truthy() {
		return
	}
	active := d.toc.Call("querySelectorAll", "a.active")
	for i := 0; i < active.Length(); i++ {
		active.Index(i).Get("classList").Call("remove", "active")
	}
}

// tocLink matches by href fragment so same-page and cross-page TOC links
// resolve the same way. Heading ids are slugs, so no selector escaping.
func (d *jsDOM) tocLink(id string) js.Value {
	if !d.toc.Truthy() {
		return js.Undefined()
	}
	return d.toc.Call("querySelector", `a[href$="#`+id+`"]`)
}

func (d *jsDOM) LinkPosition(id string) (int, int, bool) {
	link := d.tocLink(id)
	if !link.Truthy() {
		return 0, 0, false
	}
	rect := link.Call("getBoundingClientRect")
	tocRect := d.toc.Call("getBoundingClientRect")
	top := rect.Get("top").Float() - tocRect.Get("top").Float() + d.toc.Get("scrollTop").Float()
	return int(top), int(rect.Get("height").Float()), true
}

func (d *jsDOM) TOCScrollState() (int, int, int) {
	if !d.toc.Truthy() {
		return 0, 0, 0
	}
	return d.toc.Get("scrollTop").Int(), d.toc.Get("clientHeight").Int(), d.toc.Get("scrollHeight").Int()
}

func (d *jsDOM) ScrollTOCTo(top int) {
	if !d.toc.Truthy() {
		return
	}
	opts := js.Global().Get("Object").New()
	opts.Set("top", top)
	opts.Set("behavior", "smooth")
	d.toc.Call("scrollTo", opts)
}

func (d *jsDOM) SetSectionLabel(text string) {
	if d.label.Truthy() {
		d.label.Set("textContent", text)
	}
}

func (d *jsDOM) SetProgress(fraction float64) {
	if !d.bar.Truthy() {
		return
	}
	d.barTarget = fraction
	if d.framePending {
		return
	}
	d.framePending = true
	d.frameID = d.win.Call("requestAnimationFrame", d.frameFn)
}
