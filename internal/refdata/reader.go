// Package refdata loads supplemental terminology reference tables from
// Parquet files. Sites with licensed code sets larger than the bundled
// defaults distribute them this way and point the pipeline at the file at
// startup.
package refdata

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/chartmerge/internal/terminology"
)

const readBatchSize = 1024

// Load reads every reference row from the Parquet file at path. Rows with
// an empty code or display are skipped; they carry nothing to merge.
func Load(path string) ([]terminology.RefRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open refdata file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat refdata file: %w", err)
	}

	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[terminology.RefRow](pf)
	defer reader.Close()

	if err := validateSchema(reader.Schema()); err != nil {
		return nil, err
	}

	rows := make([]terminology.RefRow, 0, reader.NumRows())
	buf := make([]terminology.RefRow, readBatchSize)
	for {
		n, readErr := reader.Read(buf)
		for i := 0; i < n; i++ {
			if buf[i].Code == "" || buf[i].Display == "" {
				continue
			}
			rows = append(rows, buf[i])
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read refdata rows: %w", readErr)
		}
	}
	return rows, nil
}

// validateSchema checks that the Parquet schema carries the columns the
// merge step reads.
func validateSchema(schema *parquet.Schema) error {
	columns := make(map[string]bool)
	for _, field := range schema.Fields() {
		columns[strings.ToLower(field.Name())] = true
	}
	for _, col := range []string{"system", "code", "display"} {
		if !columns[col] {
			return fmt.Errorf("refdata file missing required column: %s", col)
		}
	}
	return nil
}
