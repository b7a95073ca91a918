package partition

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	apperrors "github.com/agbru/picalc/internal/errors"
)

const (
	// MaxRatioThreads is the largest thread count the ratio table covers.
	MaxRatioThreads = 160
	// RatioColumns is the number of columns of a ratio table: column 0 serves
	// two threads and column k serves 4k threads.
	RatioColumns = MaxRatioThreads/4 + 1
)

// RatioTable holds, for each supported thread count, the percentage of the
// iteration range assigned to each thread id. Rows are thread ids and
// columns are thread counts divided by four.
type RatioTable struct {
	rows [][]float64
}

// NewRatioTable returns an empty table with every ratio at zero.
func NewRatioTable() *RatioTable {
	rows := make([][]float64, MaxRatioThreads)
	for i := range rows {
		rows[i] = make([]float64, RatioColumns)
	}
	return &RatioTable{rows: rows}
}

// Column returns the table column serving a thread count.
func Column(threads int) int {
	return threads / 4
}

// Ratio returns the percentage of work of thread tid when threads workers
// share the range.
func (t *RatioTable) Ratio(threads, tid int) (float64, error) {
	col := Column(threads)
	if tid < 0 || tid >= len(t.rows) {
		return 0, fmt.Errorf("partition: ratio table has no row for thread %d", tid)
	}
	if col < 0 || col >= len(t.rows[tid]) {
		return 0, fmt.Errorf("partition: ratio table has no column for %d threads", threads)
	}
	return t.rows[tid][col], nil
}

// Set stores the percentage of work of thread tid for threads workers.
func (t *RatioTable) Set(threads, tid int, ratio float64) {
	t.rows[tid][Column(threads)] = ratio
}

// Sum returns the total percentage configured for a thread count.
func (t *RatioTable) Sum(threads int) float64 {
	total := 0.0
	for tid := 0; tid < threads && tid < len(t.rows); tid++ {
		r, _ := t.Ratio(threads, tid)
		total += r
	}
	return total
}

// ParseRatioTable reads a whitespace separated matrix with RatioColumns
// values per line. Blank lines are ignored.
func ParseRatioTable(r io.Reader) (*RatioTable, error) {
	table := &RatioTable{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != RatioColumns {
			return nil, fmt.Errorf("line %d: expected %d ratios, found %d", line, RatioColumns, len(fields))
		}
		if len(table.rows) == MaxRatioThreads {
			return nil, fmt.Errorf("line %d: more than %d rows", line, MaxRatioThreads)
		}
		row := make([]float64, RatioColumns)
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %d: %w", line, i+1, err)
			}
			if v < 0 || v > 100 {
				return nil, fmt.Errorf("line %d, column %d: ratio %v outside [0, 100]", line, i+1, v)
			}
			row[i] = v
		}
		table.rows = append(table.rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(table.rows) == 0 {
		return nil, fmt.Errorf("empty ratio table")
	}
	return table, nil
}

// LoadRatioTable reads a ratio table from path. Any failure is reported as
// a ResourceError naming the file.
func LoadRatioTable(path string) (*RatioTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewResourceError(path, err)
	}
	defer f.Close()

	table, err := ParseRatioTable(f)
	if err != nil {
		return nil, apperrors.NewResourceError(path, err)
	}
	return table, nil
}

// WriteTo writes the table in the format read by ParseRatioTable.
func (t *RatioTable) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var written int64
	for _, row := range t.rows {
		for i, v := range row {
			sep := " "
			if i == len(row)-1 {
				sep = "\n"
			}
			n, err := fmt.Fprintf(bw, "%.6f%s", v, sep)
			written += int64(n)
			if err != nil {
				return written, err
			}
		}
	}
	return written, bw.Flush()
}
