package querybuilder

// InsertRows holds the value tuples of a multi-row insert.
type InsertRows [][]interface{}

// Width is the tuple size shared by every row, or -1 when rows disagree.
func (rows InsertRows) Width() int {
	if len(rows) == 0 {
		return 0
	}
	width := len(rows[0])
	for _, row := range rows[1:] {
		if len(row) != width {
			return -1
		}
	}
	return width
}

// UpdateData maps column names to their new values.
type UpdateData map[string]interface{}
