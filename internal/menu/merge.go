package menu

import (
	"sort"
	"strings"
)

// Row labels with a fixed position at the top of the menu.
const (
	LabelDescription = "Description"
	LabelLintError   = "Lint error"
	LabelLintWarning = "Lint warning"
	LabelLintInfo    = "Lint info"
)

var labelPriority = map[string]int{
	LabelDescription: 0,
	LabelLintError:   1,
	LabelLintWarning: 2,
	LabelLintInfo:    3,
}

// mergeRows groups rows by label in first-occurrence order, dedupes and
// sorts each row's elements, drops empty rows, and moves prioritized
// labels to the front.
func mergeRows(rows []Row) []Row {
	var order []string
	grouped := make(map[string][]Element)
	for _, r := range rows {
		if _, ok := grouped[r.Label]; !ok {
			order = append(order, r.Label)
			grouped[r.Label] = nil
		}
		grouped[r.Label] = append(grouped[r.Label], r.Elements...)
	}

	out := make([]Row, 0, len(order))
	for _, label := range order {
		elems := sortElements(dedupe(grouped[label]))
		if len(elems) == 0 {
			continue
		}
		out = append(out, Row{Label: label, Elements: elems})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i].Label) < rank(out[j].Label)
	})
	return out
}

func rank(label string) int {
	if p, ok := labelPriority[label]; ok {
		return p
	}
	return len(labelPriority)
}

func dedupe(elems []Element) []Element {
	out := make([]Element, 0, len(elems))
	buttons := make(map[string]bool)
	seenFreeInput := false
	for _, e := range elems {
		switch t := e.(type) {
		case Button:
			if buttons[t.Content] {
				continue
			}
			buttons[t.Content] = true
		case FreeInput:
			if seenFreeInput {
				continue
			}
			seenFreeInput = true
		case Display, ProjectionRef:
			if containsEqual(out, e) {
				continue
			}
		}
		out = append(out, e)
	}
	return out
}

// containsEqual compares by value; Display and ProjectionRef are comparable.
func containsEqual(elems []Element, e Element) bool {
	for _, o := range elems {
		if o == e {
			return true
		}
	}
	return false
}

// sortElements orders buttons and displays by visible text, followed by
// free inputs and projection refs in their original order.
func sortElements(elems []Element) []Element {
	sort.SliceStable(elems, func(i, j int) bool {
		li, lj := textual(elems[i]), textual(elems[j])
		switch {
		case li && lj:
			return strings.Compare(elems[i].Text(), elems[j].Text()) < 0
		case li != lj:
			return li
		default:
			return false
		}
	})
	return elems
}

func textual(e Element) bool {
	switch e.(type) {
	case Button, Display:
		return true
	default:
		return false
	}
}
