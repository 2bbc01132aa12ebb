package sheets

import "testing"

func TestColumnLetter(t *testing.T) {
	tests := []struct {
		index int
		want  string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
	}
	for _, tt := range tests {
		if got := ColumnLetter(tt.index); got != tt.want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestRowFromRange(t *testing.T) {
	tests := []struct {
		a1   string
		want int
	}{
		{"Sheet1!A10:A10", 10},
		{"Sheet1!A10:P10", 10},
		{"Log!B3", 3},
		{"Sheet1!AA101:AB101", 101},
		{"no-bang", -1},
		{"Sheet1!:", -1},
	}
	for _, tt := range tests {
		if got := RowFromRange(tt.a1); got != tt.want {
			t.Errorf("RowFromRange(%q) = %d, want %d", tt.a1, got, tt.want)
		}
	}
}
