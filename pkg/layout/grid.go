package layout

// Span is the number of grid columns and rows a collage item covers.
type Span struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
}

var defaultSpan = Span{Columns: 2, Rows: 2}

// GridSpan maps an aspect ratio to a collage span: wide images get three
// columns, tall ones three rows, everything else a 2x2 square.
func GridSpan(aspect float64) Span {
	switch {
	case aspect > 1.5:
		return Span{Columns: 3, Rows: 2}
	case aspect > 0 && aspect < 0.7:
		return Span{Columns: 2, Rows: 3}
	case aspect >= 0.9 && aspect <= 1.1:
		return Span{Columns: 2, Rows: 2}
	}
	return defaultSpan
}
