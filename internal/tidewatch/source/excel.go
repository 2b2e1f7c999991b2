package source

import (
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/tidewatch/tidewatch/internal/common/tidewatcherrors"
	"github.com/tidewatch/tidewatch/internal/tidewatch/repository"
)

// Recognised column headers, matched case-insensitively against the first
// row of the sheet. Only jobName is mandatory.
const (
	columnJobName     = "jobname"
	columnStartTime   = "starttime"
	columnEndTime     = "endtime"
	columnDependency  = "dependency"
	columnDescription = "description"
	columnPriority    = "priority"
)

// ExcelRowReader reads raw job rows from an xlsx workbook. Every ReadRows
// call reopens the file, so reloads always see the latest saved contents.
type ExcelRowReader struct {
	path      string
	sheetName string
}

func NewExcelRowReader(path string, sheetName string) *ExcelRowReader {
	return &ExcelRowReader{path: path, sheetName: sheetName}
}

func (reader *ExcelRowReader) Path() string {
	return reader.path
}

func (reader *ExcelRowReader) ReadRows() ([]repository.RawJobRow, error) {
	workbook, err := excelize.OpenFile(reader.path)
	if err != nil {
		return nil, &tidewatcherrors.ErrSourceUnavailable{Path: reader.path, Err: err}
	}
	defer func() {
		if closeErr := workbook.Close(); closeErr != nil {
			log.WithError(closeErr).Warnf("failed to close workbook %s", reader.path)
		}
	}()

	sheet := reader.sheetName
	if sheet == "" {
		sheet = workbook.GetSheetName(0)
	}
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, &tidewatcherrors.ErrNotFound{Type: "sheet", Value: sheet, Message: err.Error()}
	}
	if len(rows) == 0 {
		return []repository.RawJobRow{}, nil
	}

	header := headerIndex(rows[0])
	if _, ok := header[columnJobName]; !ok {
		return nil, errors.Errorf("sheet %q has no jobName column", sheet)
	}

	rawRows := make([]repository.RawJobRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rawRows = append(rawRows, repository.RawJobRow{
			JobName:     cell(row, header, columnJobName),
			StartTime:   cell(row, header, columnStartTime),
			EndTime:     cell(row, header, columnEndTime),
			Dependency:  cell(row, header, columnDependency),
			Description: cell(row, header, columnDescription),
			Priority:    cell(row, header, columnPriority),
		})
	}
	return rawRows, nil
}

func headerIndex(headerRow []string) map[string]int {
	index := make(map[string]int, len(headerRow))
	for i, name := range headerRow {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return index
}

// cell returns the named column's value, tolerating rows shorter than the
// header (excelize drops trailing empty cells).
func cell(row []string, header map[string]int, column string) string {
	i, ok := header[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
