package export

// Cell is a single report value. Quoted cells are wrapped in double quotes in
// the CSV rendering; spreadsheet output ignores the flag.
type Cell struct {
	Value  string
	Quoted bool
}

// Quoted builds a cell that the CSV renderer always wraps in quotes.
func Quoted(v string) Cell {
	return Cell{Value: v, Quoted: true}
}

// Plain builds a cell emitted verbatim.
func Plain(v string) Cell {
	return Cell{Value: v}
}

// Table defines tabular report content.
type Table struct {
	Headers []string
	Rows    [][]Cell
}
