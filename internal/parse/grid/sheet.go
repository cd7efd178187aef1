package grid

import (
	"github.com/xuri/excelize/v2"

	"github.com/hrmigrate/rekon/pkg/errors"
	"github.com/hrmigrate/rekon/pkg/records"
)

// ParseSheet reads a grid export delivered as a spreadsheet. Some units
// re-save the delimited dump in Excel before sending it; the cell layout
// is identical, so the first sheet's rows feed the same state machine as
// the text front-end.
func (p *Parser) ParseSheet(path, orgCode string) ([]records.RawFragment, *Stats, error) {
	book, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, errors.WrapIO("open", path, err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.NewParseError(string(records.GrammarGrid), path, 0, "workbook has no sheets")
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, nil, errors.NewParseError(string(records.GrammarGrid), path, 0, err.Error())
	}

	return p.parseRows(rows, path, orgCode)
}
