// Package sheets implements the write-back table store on Google Sheets.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Config identifies the target spreadsheet.
type Config struct {
	CredentialsFile string
	SpreadsheetID   string
	SheetName       string
}

// Store talks to one sheet of one spreadsheet. The service is built lazily on
// first use so a misconfigured credential surfaces as a write-back failure,
// not a startup failure.
type Store struct {
	cfg Config

	mu  sync.Mutex
	svc *sheets.Service
}

// New creates a store. No network traffic happens until the first call.
func New(cfg Config) *Store {
	return &Store{cfg: cfg}
}

func (s *Store) service() (*sheets.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.svc != nil {
		return s.svc, nil
	}
	svc, err := sheets.NewService(context.Background(),
		option.WithCredentialsFile(s.cfg.CredentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	s.svc = svc
	return svc, nil
}

// FindRow scans the given column for a cell equal to value (after trimming)
// and returns its 0-based row index.
func (s *Store) FindRow(column int, value string) (int, bool, error) {
	svc, err := s.service()
	if err != nil {
		return 0, false, err
	}

	letter := ColumnLetter(column)
	rng := fmt.Sprintf("%s!%s:%s", s.cfg.SheetName, letter, letter)
	resp, err := svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, rng).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read column %s: %w", letter, err)
	}

	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == value {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// FindColumn scans the given 0-based row for a cell equal to value and
// returns its 0-based column index.
func (s *Store) FindColumn(row int, value string) (int, bool, error) {
	svc, err := s.service()
	if err != nil {
		return 0, false, err
	}

	rng := fmt.Sprintf("%s!%d:%d", s.cfg.SheetName, row+1, row+1)
	resp, err := svc.Spreadsheets.Values.Get(s.cfg.SpreadsheetID, rng).Do()
	if err != nil {
		return 0, false, fmt.Errorf("read row %d: %w", row, err)
	}
	if len(resp.Values) == 0 {
		return 0, false, nil
	}

	for i, cell := range resp.Values[0] {
		if strings.TrimSpace(fmt.Sprint(cell)) == value {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// SetCell writes value at the 0-based (row, col) address.
func (s *Store) SetCell(row, col int, value string) error {
	svc, err := s.service()
	if err != nil {
		return err
	}

	rng := fmt.Sprintf("%s!%s%d", s.cfg.SheetName, ColumnLetter(col), row+1)
	body := &sheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err = svc.Spreadsheets.Values.Update(s.cfg.SpreadsheetID, rng, body).
		ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("update cell %s: %w", rng, err)
	}
	return nil
}

// AppendRow appends cells as a new row and returns its 0-based index, parsed
// from the API's updated-range response.
func (s *Store) AppendRow(cells []string) (int, error) {
	svc, err := s.service()
	if err != nil {
		return 0, err
	}

	values := make([]interface{}, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	body := &sheets.ValueRange{Values: [][]interface{}{values}}

	resp, err := svc.Spreadsheets.Values.Append(s.cfg.SpreadsheetID, s.cfg.SheetName, body).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").Do()
	if err != nil {
		return 0, fmt.Errorf("append row: %w", err)
	}

	row := RowFromRange(resp.Updates.UpdatedRange)
	if row < 1 {
		return 0, fmt.Errorf("unexpected append range %q", resp.Updates.UpdatedRange)
	}
	return row - 1, nil
}

// ColumnLetter converts a 0-based column index to its A1 letter form.
func ColumnLetter(index int) string {
	var sb []byte
	n := index + 1
	for n > 0 {
		rem := (n - 1) % 26
		sb = append([]byte{byte('A' + rem)}, sb...)
		n = (n - 1) / 26
	}
	return string(sb)
}

// RowFromRange extracts the 1-based row number from an A1 range like
// "Sheet1!A10:P10", using the last cell reference. Returns -1 when the range
// doesn't parse.
func RowFromRange(a1 string) int {
	parts := strings.SplitN(a1, "!", 2)
	if len(parts) < 2 {
		return -1
	}
	cells := strings.Split(parts[1], ":")
	last := cells[len(cells)-1]

	digits := strings.Builder{}
	for _, r := range last {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return -1
	}
	row := 0
	for _, r := range digits.String() {
		row = row*10 + int(r-'0')
	}
	return row
}
