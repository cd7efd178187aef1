// Package grid parses the tabular key-value export grammar: line-oriented
// delimited text where each line is a flat ordered list of cells. A record
// starts at a boundary line carrying the identity label and employee
// number; the lines that follow hold up to two independent label/value
// cell pairs each (the dual-column layout), with values at a fixed cell
// offset from their label.
package grid

import (
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/hrmigrate/rekon/internal/parse"
	"github.com/hrmigrate/rekon/pkg/errors"
	"github.com/hrmigrate/rekon/pkg/logging"
	"github.com/hrmigrate/rekon/pkg/records"
)

// Layout describes the fixed cell geometry of the grid export.
type Layout struct {
	// BoundaryLabel is the first cell of a record boundary line.
	BoundaryLabel string

	// IdentityCell is the cell index of the employee number on a
	// boundary line.
	IdentityCell int

	// ValueOffset is the distance from a label cell to its value cell.
	ValueOffset int

	// LabelCells are the cell indexes where labels may appear — two
	// entries for the dual-column layout.
	LabelCells []int

	// Delimiter separates cells.
	Delimiter rune
}

// DefaultLayout returns the geometry every observed grid dump uses.
func DefaultLayout() Layout {
	return Layout{
		BoundaryLabel: "NO PEKERJA",
		IdentityCell:  2,
		ValueOffset:   2,
		LabelCells:    []int{0, 4},
		Delimiter:     ',',
	}
}

// Stats counts what the parser saw in one file.
type Stats struct {
	Lines     int `json:"lines"`
	Records   int `json:"records"`
	Malformed int `json:"malformed"`
	Dropped   int `json:"dropped"`
}

// employeeNoPattern is the letter-prefix-plus-digits shape of a valid
// employee number.
var employeeNoPattern = regexp.MustCompile(`^[A-Z]{1,4}\d{1,6}$`)

// Parser extracts raw fragments from grid files.
type Parser struct {
	layout Layout
}

// New creates a grid parser with the default layout.
func New() *Parser {
	return &Parser{layout: DefaultLayout()}
}

// NewWithLayout creates a grid parser with a custom cell geometry.
func NewWithLayout(layout Layout) *Parser {
	if layout.Delimiter == 0 {
		layout.Delimiter = ','
	}
	return &Parser{layout: layout}
}

// ParseFile opens and parses one grid file. Spreadsheet variants go
// through ParseSheet instead.
func (p *Parser) ParseFile(path, orgCode string) ([]records.RawFragment, *Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()
	return p.Parse(f, path, orgCode)
}

// Parse reads delimited grid text. Legacy exports arrive in Windows-1252;
// invalid UTF-8 input is transparently decoded first.
func (p *Parser) Parse(r io.Reader, file, orgCode string) ([]records.RawFragment, *Stats, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.WrapIO("read", file, err)
	}
	data = parse.DecodeLegacy(data)

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.Comma = p.layout.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A single mangled line never aborts the file.
			rows = append(rows, nil)
			continue
		}
		rows = append(rows, row)
	}

	return p.parseRows(rows, file, orgCode)
}

// parseRows runs the record state machine over cell rows. Shared by the
// text and spreadsheet front-ends.
func (p *Parser) parseRows(rows [][]string, file, orgCode string) ([]records.RawFragment, *Stats, error) {
	stats := &Stats{}
	var fragments []records.RawFragment

	// The builder is scoped to this call: no accumulation survives the
	// parse, and concurrent files never share state.
	var current *builder

	flush := func() {
		if current == nil {
			return
		}
		if frag, ok := current.build(); ok {
			fragments = append(fragments, frag)
			stats.Records++
		} else {
			stats.Dropped++
			logging.Warn().
				Str("file", file).
				Int("line", current.startLine).
				Msg("grid record has no identity, dropped")
		}
		current = nil
	}

	for i, cells := range rows {
		stats.Lines++
		if cells == nil {
			stats.Malformed++
			continue
		}
		line := i + 1

		if p.isBoundary(cells) {
			flush()
			current = newBuilder(orgCode, cell(cells, p.layout.IdentityCell), line)
			continue
		}

		if current == nil {
			if !blankRow(cells) {
				stats.Malformed++
			}
			continue
		}

		if domain, ok := itemDomains[strings.ToUpper(cell(cells, 0))]; ok {
			current.addItem(domain, cells)
			continue
		}

		matched := false
		for _, labelCell := range p.layout.LabelCells {
			label := strings.ToUpper(strings.TrimSpace(cell(cells, labelCell)))
			field, known := labelFields[label]
			if !known {
				continue
			}
			matched = true
			value := cell(cells, labelCell+p.layout.ValueOffset)
			if moneyFields[field] {
				value = stripCurrency(value)
			}
			current.set(field, value)
		}
		if !matched && !blankRow(cells) {
			stats.Malformed++
		}
	}
	flush()

	return fragments, stats, nil
}

// isBoundary reports whether a row carries the record-boundary label. The
// identity cell is read by the builder; a boundary with a missing or
// garbled identity still closes the previous record so its lines are
// never silently merged into it, and the new record is dropped at flush.
func (p *Parser) isBoundary(cells []string) bool {
	return strings.EqualFold(strings.TrimSpace(cell(cells, 0)), p.layout.BoundaryLabel)
}

// builder accumulates one record's fields between boundary lines.
type builder struct {
	orgCode    string
	employeeNo string
	startLine  int
	fields     map[string]string
	items      []records.RawItem
}

func newBuilder(orgCode, identity string, line int) *builder {
	return &builder{
		orgCode:    orgCode,
		employeeNo: strings.ToUpper(strings.TrimSpace(identity)),
		startLine:  line,
		fields:     make(map[string]string),
	}
}

// set stores a field value. Placeholder separators normalize to absent
// rather than a literal string; later duplicates of the same label within
// a record never overwrite an earlier value.
func (b *builder) set(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" || value == "/" || value == "/ /" || value == "//" {
		return
	}
	if _, exists := b.fields[field]; exists {
		return
	}
	b.fields[field] = value
}

// addItem captures an allowance or deduction line: code, description,
// amount, period and date range follow the domain label cell in order.
func (b *builder) addItem(domain records.ItemDomain, cells []string) {
	item := records.RawItem{
		Domain:      domain,
		Code:        strings.TrimSpace(cell(cells, 1)),
		Description: strings.TrimSpace(cell(cells, 2)),
		Amount:      stripCurrency(cell(cells, 3)),
		Period:      strings.TrimSpace(cell(cells, 4)),
		Start:       strings.TrimSpace(cell(cells, 5)),
		End:         strings.TrimSpace(cell(cells, 6)),
	}
	if item.Code == "" && item.Amount == "" {
		return
	}
	b.items = append(b.items, item)
}

// build finishes the record. Records without a plausible employee number
// are rejected — merging them into the previous record would silently
// corrupt it.
func (b *builder) build() (records.RawFragment, bool) {
	if !employeeNoPattern.MatchString(b.employeeNo) {
		return records.RawFragment{}, false
	}
	return records.RawFragment{
		Key:     records.Key{OrgCode: b.orgCode, EmployeeNo: b.employeeNo},
		Grammar: records.GrammarGrid,
		Fields:  b.fields,
		Items:   b.items,
	}, true
}

// stripCurrency removes grouping commas and a leading/trailing RM marker.
// Sign and decimal point pass through untouched for the normalizer.
func stripCurrency(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "RM") {
		s = strings.TrimSpace(s[2:])
	} else if strings.HasSuffix(upper, "RM") {
		s = strings.TrimSpace(s[:len(s)-2])
	}
	return s
}

// cell returns the trimmed cell at index i, or empty when the row is short.
func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[i])
}

// blankRow reports whether every cell is empty.
func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
