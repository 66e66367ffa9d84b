// Package reports renders approver-facing exports.
package reports

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"hrflow/internal/domain/requests"
)

const exceptionalSheet = "Exceptional"

var exceptionalHeaders = []string{
	"Request ID", "Employee ID", "Company ID", "Type", "Status", "Result",
	"Submitted", "Resolved", "Amount", "Leave start", "Leave end", "Exception reason",
}

type ExceptionalLister interface {
	ListExceptional(ctx context.Context, filter requests.ExceptionalFilter) ([]requests.Request, error)
}

type Service struct {
	Requests ExceptionalLister
}

func NewService(lister ExceptionalLister) *Service {
	return &Service{Requests: lister}
}

// ExportExceptional writes the exceptional requests matching filter as an XLSX workbook.
func (s *Service) ExportExceptional(ctx context.Context, filter requests.ExceptionalFilter, w io.Writer) (int, error) {
	rows, err := s.Requests.ListExceptional(ctx, filter)
	if err != nil {
		return 0, err
	}
	f, err := ExceptionalWorkbook(rows)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}
	return len(rows), nil
}

func ExceptionalWorkbook(rows []requests.Request) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", exceptionalSheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}
	for i, h := range exceptionalHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exceptionalSheet, cell, h); err != nil {
			f.Close()
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exceptionalHeaders), 1)
	if err := f.SetCellStyle(exceptionalSheet, "A1", lastHeader, bold); err != nil {
		f.Close()
		return nil, err
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(exceptionalSheet, cell, &[]any{
			r.ID, r.EmployeeID, r.CompanyID, string(r.Type), string(r.Status), string(r.Result),
			r.SubmissionDate.Format(time.RFC3339), formatTime(r.ResultDate),
			amountCell(r), leaveDate(r, true), leaveDate(r, false), deref(r.ExceptionReason),
		}); err != nil {
			f.Close()
			return nil, err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(exceptionalHeaders))
	_ = f.SetColWidth(exceptionalSheet, "A", lastCol, 20)
	return f, nil
}

func amountCell(r requests.Request) any {
	amount, ok := r.Amount()
	if !ok {
		return ""
	}
	v, _ := amount.Float64()
	return v
}

func leaveDate(r requests.Request, start bool) string {
	if r.Leave == nil {
		return ""
	}
	if start {
		return r.Leave.StartDate.Format(time.DateOnly)
	}
	return r.Leave.EndDate.Format(time.DateOnly)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
