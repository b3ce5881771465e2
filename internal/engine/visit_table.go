package engine

type visitTable struct {
	rows int
	cols int
	data [][]int
}

func newVisitTable(rows, cols int) *visitTable {
	data := make([][]int, rows)
	for r := 0; r < rows; r++ {
		data[r] = make([]int, cols)
	}
	return &visitTable{rows: rows, cols: cols, data: data}
}

func (v *visitTable) record(pos Position) {
	if pos.Row < 0 || pos.Row >= v.rows || pos.Col < 0 || pos.Col >= v.cols {
		return
	}
	v.data[pos.Row][pos.Col]++
}

func (v *visitTable) cloneData() [][]int {
	copyData := make([][]int, v.rows)
	for r := 0; r < v.rows; r++ {
		copyData[r] = make([]int, v.cols)
		copy(copyData[r], v.data[r])
	}
	return copyData
}
