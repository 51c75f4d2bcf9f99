package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Parser reads CSV content row by row, mapping fields to lowercased header
// names. It strips a UTF-8 BOM, trims whitespace around fields, and accepts
// quoted fields containing the delimiter.
type Parser struct {
	reader    *csv.Reader
	headers   []string
	headerMap map[string]int
	dataRow   int
}

// NewParser creates a parser from a reader
func NewParser(r io.Reader) (*Parser, error) {
	buf := bufio.NewReader(r)

	head, err := buf.Peek(3)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(head) == 0 {
		return nil, ErrEmptyFile
	}
	// UTF-8 BOM: 0xEF, 0xBB, 0xBF
	if len(head) >= 3 && head[0] == 0xEF && head[1] == 0xBB && head[2] == 0xBF {
		_, _ = buf.Discard(3)
	}

	sample, err := buf.Peek(4096)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if !utf8.Valid(sample) {
		return nil, ErrInvalidEncoding
	}

	reader := csv.NewReader(buf)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	return &Parser{
		reader:    reader,
		headerMap: make(map[string]int),
	}, nil
}

// ParseFromString creates a parser over in-memory CSV content
func ParseFromString(content string) (*Parser, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}
	return NewParser(bytes.NewReader([]byte(content)))
}

// ParseHeader reads the header row and records the column positions.
// Header names are lowercased so lookups are case-insensitive.
func (p *Parser) ParseHeader() error {
	record, err := p.reader.Read()
	if err == io.EOF {
		return ErrEmptyFile
	}
	if err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}

	p.headers = make([]string, len(record))
	for i, h := range record {
		header := strings.ToLower(strings.TrimSpace(h))
		p.headers[i] = header
		p.headerMap[header] = i
	}
	return nil
}

// HasColumn reports whether the header row contains the named column
func (p *Parser) HasColumn(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// MissingColumns returns the required column names absent from the header
func (p *Parser) MissingColumns(required []string) []string {
	var missing []string
	for _, name := range required {
		if !p.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// Row is a parsed data row. RowNumber is 1-based and counts data rows only;
// the header row is row 0.
type Row struct {
	RowNumber int
	Data      map[string]string
}

// Get returns the trimmed value of a column, or empty if the column is
// missing from the file
func (r *Row) Get(column string) string {
	return r.Data[column]
}

// IsEmpty reports whether every field in the row is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.Data {
		if v != "" {
			return false
		}
	}
	return true
}

// ReadRow reads the next data row, skipping rows that are entirely blank.
// Returns io.EOF after the last row.
func (p *Parser) ReadRow() (*Row, error) {
	for {
		record, err := p.reader.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			p.dataRow++
			return nil, fmt.Errorf("error reading row %d: %w", p.dataRow, err)
		}

		p.dataRow++
		row := &Row{
			RowNumber: p.dataRow,
			Data:      make(map[string]string, len(p.headers)),
		}
		for i, header := range p.headers {
			if i < len(record) {
				row.Data[header] = strings.TrimSpace(record[i])
			} else {
				row.Data[header] = ""
			}
		}

		if row.IsEmpty() {
			continue
		}
		return row, nil
	}
}

// ReadAllRows reads every remaining data row
func (p *Parser) ReadAllRows() ([]*Row, error) {
	var rows []*Row
	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
