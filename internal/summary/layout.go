package summary

import (
	"math"
	"unicode/utf8"
)

// Layout estimates how much vertical space invoice parts take on a printed
// page. Units are arbitrary but must be consistent.
type Layout struct {
	PageHeight      float64
	FirstPageHeader float64
	GroupHeader     float64
	RowHeight       float64
	WrapLineHeight  float64
	GroupFooter     float64
	NameChars       int
	NoteChars       int
}

// DefaultLayout approximates an A4 portrait invoice at the UI's font sizes.
var DefaultLayout = Layout{
	PageHeight:      1000,
	FirstPageHeader: 180,
	GroupHeader:     44,
	RowHeight:       28,
	WrapLineHeight:  16,
	GroupFooter:     36,
	NameChars:       32,
	NoteChars:       40,
}

// rowHeight grows with the number of wrapped lines of the widest text cell.
func (l Layout) rowHeight(line Line) float64 {
	lines := max(wrappedLines(line.Name, l.NameChars), wrappedLines(line.Note, l.NoteChars))
	return l.RowHeight + float64(lines-1)*l.WrapLineHeight
}

func wrappedLines(text string, perLine int) int {
	n := utf8.RuneCountInString(text)
	if perLine <= 0 || n <= perLine {
		return 1
	}
	return int(math.Ceil(float64(n) / float64(perLine)))
}

// Paginate splits boat groups across pages. A group that does not fit is
// continued on the next page with its header repeated; its subtotal prints
// with the last chunk.
func (l Layout) Paginate(groups []BoatGroup) []Page {
	var (
		pages     []Page
		current   = Page{Number: 1}
		remaining = l.PageHeight - l.FirstPageHeader
	)
	flush := func() {
		pages = append(pages, current)
		current = Page{Number: current.Number + 1}
		remaining = l.PageHeight
	}

	for _, group := range groups {
		subtotal := group.Subtotal
		next := 0
		continued := false
		for {
			firstNeed := l.GroupHeader + l.GroupFooter
			if next < len(group.Lines) {
				firstNeed = l.GroupHeader + l.rowHeight(group.Lines[next])
				if next == len(group.Lines)-1 {
					firstNeed += l.GroupFooter
				}
			}
			if firstNeed > remaining && len(current.Sections) > 0 {
				flush()
			}

			section := Section{
				BoatID:    group.BoatID,
				BoatName:  group.BoatName,
				FleetName: group.FleetName,
				Continued: continued,
			}
			remaining -= l.GroupHeader

			for next < len(group.Lines) {
				h := l.rowHeight(group.Lines[next])
				last := next == len(group.Lines)-1
				need := h
				if last {
					need += l.GroupFooter
				}
				if need > remaining && len(section.Lines) > 0 {
					break
				}
				section.Lines = append(section.Lines, group.Lines[next])
				remaining -= h
				next++
			}

			if next == len(group.Lines) {
				section.Subtotal = &subtotal
				remaining -= l.GroupFooter
				current.Sections = append(current.Sections, section)
				break
			}
			current.Sections = append(current.Sections, section)
			flush()
			continued = true
		}
	}

	if len(current.Sections) > 0 || len(pages) == 0 {
		pages = append(pages, current)
	}
	pages[len(pages)-1].Last = true
	for i := range pages {
		pages[i].Of = len(pages)
	}
	return pages
}
