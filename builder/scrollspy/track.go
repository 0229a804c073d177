package scrollspy

import "slices"

func (t *Tracker) onScroll() {
	if t.state != stateTracking {
		return
	}
	t.update(false)
}

// onResize rebuilds the region list, since reflow moves every heading
// offset, then re-runs the highlight pass against the new geometry.
func (t *Tracker) onResize() {
	if t.state != stateTracking {
		return
	}

	t.buildRegions()
	if len(t.regions) == 0 {
		// Terminal: the listeners stay registered but inert until Cleanup.
		t.state = stateEmpty
		t.active = nil
		t.dom.ClearActiveLinks()
		t.dom.SetSectionLabel("")
		return
	}
	t.update(true)
}

// update refreshes the progress indicator, then recomputes the visible
// set and pushes highlight writes only when the set actually changed, so
// scroll events inside one region touch no links.
func (t *Tracker) update(force bool) {
	t.dom.SetProgress(t.progress())

	visible := t.visibleIDs()
	if !force && slices.Equal(visible, t.active) {
		return
	}
	t.active = visible

	if len(visible) == 0 {
		t.dom.ClearActiveLinks()
		t.dom.SetSectionLabel("")
		return
	}
	t.dom.SetActiveLinks(visible)
	t.dom.SetSectionLabel(t.labelFor(visible[0]))
	t.centerTOC(visible[0])
}

// visibleIDs returns, in document order, the ids of regions whose span
// intersects the viewport window. The window starts below the fixed
// header, so a heading hidden behind it does not count as visible.
func (t *Tracker) visibleIDs() []string {
	scrollY := t.dom.ScrollY()
	winStart := scrollY + t.cfg.HeaderOffset
	winEnd := scrollY + t.dom.ViewportHeight()

	var ids []string
	for _, r := range t.regions {
		if r.start <= winEnd && r.end > winStart {
			ids = append(ids, r.id)
		}
	}
	return ids
}

func (t *Tracker) labelFor(id string) string {
	for _, r := range t.regions {
		if r.id == id {
			return r.text
		}
	}
	return ""
}

// centerTOC scrolls the TOC container so the link for id sits in the
// middle, clamped to the scrollable range. Adjustments below the
// threshold are skipped so tiny corrections do not fight the user.
func (t *Tracker) centerTOC(id string) {
	top, height, ok := t.dom.LinkPosition(id)
	if !ok {
		return
	}
	scrollTop, visibleHeight, contentHeight := t.dom.TOCScrollState()

	target := top + height/2 - visibleHeight/2
	maxScroll := contentHeight - visibleHeight
	if maxScroll < 0 {
		maxScroll = 0
	}
	if target < 0 {
		target = 0
	}
	if target > maxScroll {
		target = maxScroll
	}

	delta := target - scrollTop
	if delta < 0 {
		delta = -delta
	}
	if delta < t.cfg.CenterThreshold {
		return
	}
	t.dom.ScrollTOCTo(target)
}

// progress is how far the page has scrolled, 0 at the top and 1 once the
// document bottom is in view.
func (t *Tracker) progress() float64 {
	scrollable := t.dom.DocumentHeight() - t.dom.ViewportHeight()
	if scrollable <= 0 {
		return 1
	}
	p := float64(t.dom.ScrollY()) / float64(scrollable)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
