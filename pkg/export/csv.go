package export

import (
	"fmt"
	"strings"
)

// bom is the UTF-8 byte order mark Excel needs to pick up accented text.
const bom = "\uFEFF"

// CSVRenderer renders report tables into CSV bytes.
//
// The output is not RFC 4180: text columns that may carry commas are always
// quoted, everything else is emitted verbatim, and the content starts with a
// UTF-8 BOM. Consumers of these reports depend on that exact shape.
type CSVRenderer struct{}

// NewCSVRenderer builds a CSV renderer.
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

// Render produces CSV encoded bytes for the table.
func (r *CSVRenderer) Render(table Table) ([]byte, error) {
	if len(table.Headers) == 0 {
		return nil, fmt.Errorf("csv requires at least one header")
	}

	var b strings.Builder
	b.WriteString(bom)
	b.WriteString(strings.Join(table.Headers, ","))

	for _, row := range table.Rows {
		b.WriteString("\n")
		for i, cell := range row {
			if i > 0 {
				b.WriteString(",")
			}
			if cell.Quoted {
				b.WriteString(`"`)
				b.WriteString(cell.Value)
				b.WriteString(`"`)
			} else {
				b.WriteString(cell.Value)
			}
		}
	}

	return []byte(b.String()), nil
}
