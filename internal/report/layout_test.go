package report

import (
	"math"
	"testing"
)

func TestGridLayoutColumns(t *testing.T) {
	expected := map[int]int{
		1: 1,
		2: 2, 3: 2, 4: 2,
		5: 3, 6: 3, 7: 3, 8: 3, 9: 3, 12: 3, 25: 3,
	}
	for n, want := range expected {
		grid := GridLayout(n, 540, 5)
		if grid.Columns != want {
			t.Errorf("n=%d: columns = %d, want %d", n, grid.Columns, want)
		}
	}
}

func TestGridLayoutTileSize(t *testing.T) {
	testCases := []struct {
		name    string
		n       int
		width   float64
		spacing float64
		want    float64
	}{
		{name: "single image fills the width", n: 1, width: 540, spacing: 5, want: 540},
		{name: "two columns share one gap", n: 2, width: 540, spacing: 5, want: (540 - 5) / 2},
		{name: "three columns share two gaps", n: 5, width: 540, spacing: 5, want: (540 - 2*5) / 3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			grid := GridLayout(tc.n, tc.width, tc.spacing)
			if math.Abs(grid.TileWidth-tc.want) > 1e-9 {
				t.Errorf("tile width = %f, want %f", grid.TileWidth, tc.want)
			}
			if grid.TileHeight != grid.TileWidth {
				t.Errorf("tiles must be square, got %f x %f", grid.TileWidth, grid.TileHeight)
			}
		})
	}
}

func TestGridLayoutRowFill(t *testing.T) {
	for n := 1; n <= 25; n++ {
		grid := GridLayout(n, 540, 5)

		wantRows := (n + grid.Columns - 1) / grid.Columns
		if len(grid.Rows) != wantRows {
			t.Errorf("n=%d: rows = %d, want %d", n, len(grid.Rows), wantRows)
			continue
		}

		seen := 0
		for i, row := range grid.Rows {
			if i < len(grid.Rows)-1 && len(row) != grid.Columns {
				t.Errorf("n=%d: row %d has %d entries, want %d", n, i, len(row), grid.Columns)
			}
			for _, idx := range row {
				if idx != seen {
					t.Errorf("n=%d: images out of order, got index %d at position %d", n, idx, seen)
				}
				seen++
			}
		}
		if seen != n {
			t.Errorf("n=%d: grid holds %d images", n, seen)
		}

		last := grid.Rows[len(grid.Rows)-1]
		wantLast := n % grid.Columns
		if wantLast == 0 {
			wantLast = grid.Columns
		}
		if len(last) != wantLast {
			t.Errorf("n=%d: last row has %d entries, want %d", n, len(last), wantLast)
		}
	}
}

func TestGridLayoutEmpty(t *testing.T) {
	grid := GridLayout(0, 540, 5)
	if grid.Columns != 0 || len(grid.Rows) != 0 {
		t.Errorf("expected empty grid for zero images, got %+v", grid)
	}
}
