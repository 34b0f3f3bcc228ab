package object

import "fmt"

// Cell is an implementation detail for closure variable capture. A cell is a
// shared slot: the defining scope and every closure that captures the
// variable all reference the same cell.
type Cell struct {
	value *any
}

// NewCell creates a cell holding the given value.
func NewCell(value any) *Cell {
	return &Cell{value: &value}
}

// Value returns the cell contents.
func (c *Cell) Value() any {
	if c.value == nil {
		return nil
	}
	return *c.value
}

// Set replaces the cell contents.
func (c *Cell) Set(value any) {
	*c.value = value
}

func (c *Cell) Type() Type {
	return CELL
}

func (c *Cell) String() string {
	if c.value == nil {
		return "cell()"
	}
	return fmt.Sprintf("cell(%v)", *c.value)
}
