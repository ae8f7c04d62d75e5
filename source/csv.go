// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/poiesic/indexit/core"
)

// CSVSource reads records from a delimited text file. The first row names
// the columns; every following row becomes one Record keyed by those names.
type CSVSource struct {
	path    string
	file    *os.File
	reader  *csv.Reader
	columns []string
	drained bool
}

var _ Source = (*CSVSource)(nil)

// OpenCSV opens the file at path and consumes the header row.
func OpenCSV(path string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	r := csv.NewReader(f)
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	columns, err := r.Read()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}

	return &CSVSource{
		path:    path,
		file:    f,
		reader:  r,
		columns: columns,
	}, nil
}

// Columns returns the column names from the header row.
func (s *CSVSource) Columns() []string {
	return s.columns
}

// Next reads up to max rows. A malformed row is a structural failure: the
// remainder of the file cannot be trusted, so the error is returned instead
// of being skipped.
func (s *CSVSource) Next(ctx context.Context, max int) ([]core.Record, error) {
	if s.drained {
		return nil, io.EOF
	}

	records := make([]core.Record, 0, max)
	for len(records) < max {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row, err := s.reader.Read()
		if err == io.EOF {
			s.drained = true
			return records, io.EOF
		}
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", s.path, err)
		}

		record := make(core.Record, len(s.columns))
		for i, column := range s.columns {
			if i < len(row) {
				record[column] = row[i]
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// Close closes the underlying file.
func (s *CSVSource) Close() error {
	return s.file.Close()
}
