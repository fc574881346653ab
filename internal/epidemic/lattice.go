package epidemic

// Coord is a position on the lattice.
type Coord struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Lattice is a fixed toroidal grid holding exactly one cell per site.
type Lattice struct {
	height int
	width  int
	cells  []*Cell
}

// NewLattice creates a height x width lattice filled with susceptible cells.
// Cell ids are row-major indices.
func NewLattice(height, width int, params Params) *Lattice {
	l := &Lattice{
		height: height,
		width:  width,
		cells:  make([]*Cell, 0, height*width),
	}
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			l.cells = append(l.cells, newCell(row*width+col, Coord{Row: row, Col: col}, params))
		}
	}
	return l
}

func (l *Lattice) Height() int { return l.height }
func (l *Lattice) Width() int  { return l.width }
func (l *Lattice) Len() int    { return len(l.cells) }

// Cells returns the cells in id order. The slice is shared with the lattice.
func (l *Lattice) Cells() []*Cell { return l.cells }

// Wrap maps any coordinate onto the torus.
func (l *Lattice) Wrap(c Coord) Coord {
	return Coord{Row: mod(c.Row, l.height), Col: mod(c.Col, l.width)}
}

// At returns the cell at c after wrapping.
func (l *Lattice) At(c Coord) *Cell {
	w := l.Wrap(c)
	return l.cells[w.Row*l.width+w.Col]
}

// Cell returns the cell with the given id, or nil.
func (l *Lattice) Cell(id int) *Cell {
	if id < 0 || id >= len(l.cells) {
		return nil
	}
	return l.cells[id]
}

// Neighborhood returns the Moore neighborhood of center at the given radius.
// Coordinates wrap at the edges; the center is excluded and a cell reached
// through more than one offset on a small torus is returned once.
// Cells are ordered by offset, rows first.
func (l *Lattice) Neighborhood(center Coord, radius int) []*Cell {
	center = l.Wrap(center)
	self := l.At(center)
	seen := make(map[int]struct{}, (2*radius+1)*(2*radius+1))
	out := make([]*Cell, 0, (2*radius+1)*(2*radius+1)-1)
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			c := l.At(Coord{Row: center.Row + dr, Col: center.Col + dc})
			if c == self {
				continue
			}
			if _, dup := seen[c.ID]; dup {
				continue
			}
			seen[c.ID] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
