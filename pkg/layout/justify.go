// Package layout computes gallery item sizes: justified rows for the tiled
// layout and grid spans for the collage layout.
package layout

import "math"

// Item is an image with its natural pixel dimensions.
type Item struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Aspect returns Width/Height, or 0 if either dimension is unknown or the
// ratio is not finite.
func (i Item) Aspect() float64 {
	if i.Width <= 0 || i.Height <= 0 {
		return 0
	}
	ar := i.Width / i.Height
	if !finite(ar) {
		return 0
	}
	return ar
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Box is the final size assigned to an item.
type Box struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Row    int     `json:"row"`
	// Skipped is set for items without usable dimensions.
	Skipped bool `json:"skipped,omitempty"`
}

// Row is one justified row.
type Row struct {
	// Items are indexes into the input slice.
	Items []int
	// Widths are the unscaled widths at the target row height.
	Widths []float64
	Scale  float64
	Height float64
}

// Rows packs items into rows whose widths, including gutters, equal
// containerWidth. Items with unknown dimensions, or too wide to size at the
// target height, are left out.
func Rows(containerWidth, targetRowHeight, gutter float64, items []Item) []Row {
	if !finite(containerWidth) || !finite(targetRowHeight) || !finite(gutter) {
		return nil
	}
	if containerWidth <= 0 || targetRowHeight <= 0 || len(items) == 0 {
		return nil
	}

	var rows []Row
	cur := Row{}
	rowWidth := 0.0

	closeRow := func() {
		if len(cur.Items) == 0 {
			return
		}
		// Gutters wider than the container leave zero-width items.
		available := max(containerWidth-gutter*float64(len(cur.Items)-1), 0)
		cur.Scale = available / rowWidth
		cur.Height = targetRowHeight * cur.Scale
		rows = append(rows, cur)
		cur = Row{}
		rowWidth = 0
	}

	for idx, it := range items {
		last := idx == len(items)-1
		w := targetRowHeight * it.Aspect()
		if w == 0 || !finite(w) {
			if last {
				closeRow()
			}
			continue
		}

		cur.Items = append(cur.Items, idx)
		cur.Widths = append(cur.Widths, w)
		rowWidth += w

		if rowWidth+gutter*float64(len(cur.Items)-1) >= containerWidth || last {
			closeRow()
		}
	}

	return rows
}

// Justify returns one box per item, in input order.
func Justify(containerWidth, targetRowHeight, gutter float64, items []Item) []Box {
	if len(items) == 0 {
		return nil
	}

	boxes := make([]Box, len(items))
	for i := range boxes {
		boxes[i].Skipped = true
	}

	for r, row := range Rows(containerWidth, targetRowHeight, gutter, items) {
		for k, idx := range row.Items {
			boxes[idx] = Box{
				Width:  row.Widths[k] * row.Scale,
				Height: row.Height,
				Row:    r,
			}
		}
	}

	return boxes
}
