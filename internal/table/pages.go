package table

// RowsPerPage returns the page size
func (t *Table) RowsPerPage() int {
	return t.rowsPerPage
}

// PageCount returns the number of pages of displayed rows, at least one
func (t *Table) PageCount() int {
	n := len(t.Displayed())
	if n == 0 {
		return 1
	}
	return (n + t.rowsPerPage - 1) / t.rowsPerPage
}

// PageOf returns the zero-based page showing index, or -1 when the row is
// filtered out
func (t *Table) PageOf(index int) int {
	for pos, i := range t.Displayed() {
		if i == index {
			return pos / t.rowsPerPage
		}
	}
	return -1
}

// Page returns the displayed rows of one page, clamping page to the valid
// range
func (t *Table) Page(page int) []Row {
	rows := t.Rows()
	page = t.ClampPage(page)
	start := page * t.rowsPerPage
	end := min(start+t.rowsPerPage, len(rows))
	if start >= end {
		return nil
	}
	return rows[start:end]
}

// ClampPage limits page to [0, PageCount())
func (t *Table) ClampPage(page int) int {
	return max(0, min(page, t.PageCount()-1))
}
