package report

import (
	"encoding/csv"
	"io"
)

// Column maps a row key to the header title written for it.
type Column struct {
	Key   string
	Title string
}

// WriteCSV writes a header row from the column titles followed by one record
// per row, pulling cell values by column key. Missing keys produce empty
// cells.
func WriteCSV(w io.Writer, columns []Column, rows []map[string]string) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(columns))
	for i, c := range columns {
		header[i] = c.Title
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, c := range columns {
			record[i] = row[c.Key]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
