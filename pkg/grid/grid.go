package grid

// GetGridCoords maps a linear cell index onto a grid cols cells wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}
