package compose

import "github.com/benedoc-inc/pdfkit/element"

// renderTable implements spec §4.8's table algorithm over one
// contiguous run of TableRow elements (rows), already isolated by the
// caller via tableRun.
func (c *composer) renderTable(rows []element.Element) error {
	sepIdx := -1
	for i, r := range rows {
		if r.IsSeparator {
			sepIdx = i
			break
		}
	}

	var header *element.Element
	var data []element.Element
	var alignments []element.Alignment

	switch {
	case sepIdx > 0:
		header = &rows[sepIdx-1]
		alignments = rows[sepIdx].Alignments
		data = rows[sepIdx+1:]
	case sepIdx == 0:
		alignments = rows[sepIdx].Alignments
		data = rows[sepIdx+1:]
	default:
		data = rows
	}

	cols := 0
	consider := func(r *element.Element) {
		if r != nil && len(r.Cells) > cols {
			cols = len(r.Cells)
		}
	}
	consider(header)
	for i := range data {
		consider(&data[i])
	}
	if cols == 0 {
		return nil
	}
	for len(alignments) < cols {
		alignments = append(alignments, element.AlignLeft)
	}

	widths := c.columnWidths(header, data, cols)

	if header != nil {
		if err := c.renderTableRow(padCells(header.Cells, cols), alignments, widths, true); err != nil {
			return err
		}
	}
	for i := range data {
		if c.tableRowNeedsNewPage(padCells(data[i].Cells, cols), alignments, widths) {
			c.flushPage()
			c.startPage()
			if header != nil {
				if err := c.renderTableRow(padCells(header.Cells, cols), alignments, widths, true); err != nil {
					return err
				}
			}
		}
		if err := c.renderTableRow(padCells(data[i].Cells, cols), alignments, widths, false); err != nil {
			return err
		}
	}
	return nil
}

// padCells pads a ragged row with empty cells to the table's column
// count — the invariant spec §4.8 calls out to prevent indexing crashes.
func padCells(cells []string, cols int) []string {
	if len(cells) >= cols {
		return cells[:cols]
	}
	out := make([]string, cols)
	copy(out, cells)
	return out
}

// columnWidths computes per-column widths: equal division of the text
// column unless every non-separator row's cells are "short" (fit
// comfortably within an equal share), in which case widths follow each
// column's own max content width, scaled up to fill the available
// space.
func (c *composer) columnWidths(header *element.Element, data []element.Element, cols int) []float64 {
	available := c.opts.Layout.textWidth()
	equal := available / float64(cols)

	maxW := make([]float64, cols)
	allShort := true
	consider := func(cells []string) {
		padded := padCells(cells, cols)
		for i, cell := range padded {
			w := StringWidth(c.opts.Family, false, false, cell, c.opts.Size)
			if w > maxW[i] {
				maxW[i] = w
			}
			if w > equal*0.8 {
				allShort = false
			}
		}
	}
	if header != nil {
		consider(header.Cells)
	}
	for _, r := range data {
		consider(r.Cells)
	}

	if !allShort {
		widths := make([]float64, cols)
		for i := range widths {
			widths[i] = equal
		}
		return widths
	}

	total := 0.0
	for _, w := range maxW {
		total += w
	}
	if total == 0 {
		widths := make([]float64, cols)
		for i := range widths {
			widths[i] = equal
		}
		return widths
	}
	widths := make([]float64, cols)
	for i, w := range maxW {
		widths[i] = w / total * available
	}
	return widths
}

const cellPadding = 4.0

func (c *composer) rowHeight(cells []string, widths []float64) float64 {
	lh := lineHeight(c.opts.Size)
	maxLines := 1
	for i, cell := range cells {
		lines := wrapText(c.opts.Family, false, false, cell, c.opts.Size, widths[i]-2*cellPadding)
		if len(lines) > maxLines {
			maxLines = len(lines)
		}
	}
	return float64(maxLines)*lh + 2*cellPadding
}

func (c *composer) tableRowNeedsNewPage(cells []string, alignments []element.Alignment, widths []float64) bool {
	height := c.rowHeight(cells, widths)
	return c.cursorY-height < c.opts.Layout.MarginBottom
}

func (c *composer) renderTableRow(cells []string, alignments []element.Alignment, widths []float64, isHeader bool) error {
	height := c.rowHeight(cells, widths)
	c.ensureSpace(height)

	size := c.opts.Size
	lh := lineHeight(size)
	bold := isHeader
	name := c.fontResource(c.opts.Family, bold, false)
	c.useFont(name)

	top := c.cursorY
	x := c.opts.Layout.MarginLeft

	for i, cell := range cells {
		w := widths[i]
		c.cur.cs.SaveState()
		c.cur.cs.SetLineWidth(0.5)
		c.cur.cs.Rectangle(x, top-height, w, height)
		c.cur.cs.Stroke()
		c.cur.cs.RestoreState()

		cellTextWidth := w - 2*cellPadding
		lines := wrapText(c.opts.Family, bold, false, cell, size, cellTextWidth)
		ty := top - cellPadding - size

		c.cur.cs.BeginText()
		c.cur.cs.SetFont(name, size)
		for _, line := range lines {
			lineWidth := StringWidth(c.opts.Family, bold, false, line, size)
			tx := x + cellPadding
			switch alignFor(alignments, i) {
			case element.AlignCenter:
				tx = x + (w-lineWidth)/2
			case element.AlignRight:
				tx = x + w - cellPadding - lineWidth
			}
			c.cur.cs.SetTextPosition(tx, ty)
			c.cur.cs.ShowText(line)
			ty -= lh
		}
		c.cur.cs.EndText()

		x += w
	}

	c.cursorY = top - height
	return nil
}

func alignFor(alignments []element.Alignment, i int) element.Alignment {
	if i < len(alignments) {
		return alignments[i]
	}
	return element.AlignLeft
}
