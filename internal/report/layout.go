package report

// Grid describes the square-tile layout computed for a set of report
// images: how many columns, the tile size in points, and which image
// indexes land on which row.
type Grid struct {
	Columns    int
	TileWidth  float64
	TileHeight float64
	Rows       [][]int
}

// GridLayout computes the image grid for n images laid out across a
// content area usableWidth points wide with spacing points between
// tiles. Tiles are forced square regardless of the source aspect
// ratio. The final row keeps however many images are left over; it is
// not padded with blank cells.
func GridLayout(n int, usableWidth, spacing float64) Grid {
	if n <= 0 {
		return Grid{}
	}

	columns := 3
	switch {
	case n == 1:
		columns = 1
	case n <= 4:
		columns = 2
	}

	tile := (usableWidth - float64(columns-1)*spacing) / float64(columns)

	grid := Grid{
		Columns:    columns,
		TileWidth:  tile,
		TileHeight: tile,
	}

	var row []int
	for i := 0; i < n; i++ {
		row = append(row, i)
		if len(row) == columns {
			grid.Rows = append(grid.Rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		grid.Rows = append(grid.Rows, row)
	}

	return grid
}
