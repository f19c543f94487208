package service

import (
	"context"
	"fmt"
	"io"

	"github.com/sangkips/ecs-receipts/internal/domain/entity"
	"github.com/sangkips/ecs-receipts/internal/domain/repository"
	"github.com/xuri/excelize/v2"
)

// XLSXContentType is the MIME type of receipt exports.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const exportSheet = "Receipts"

var exportHeaders = []string{
	"Receipt No", "Date", "Branch", "Employee", "Emp Code",
	"Investor ID", "Investor", "PAN", "Category", "Issuer",
	"Scheme", "Amount", "Folio/Policy No", "Mode", "Txn Type",
	"Instrument", "Instrument No", "Bank", "Status", "Created At",
	"Deleted Reason",
}

// ExportService writes receipt listings as spreadsheets
type ExportService struct {
	receipts *ReceiptService
}

// NewExportService creates a new export service
func NewExportService(receipts *ReceiptService) *ExportService {
	return &ExportService{receipts: receipts}
}

// ExportReceipts writes every receipt the actor may see under filter as XLSX.
func (s *ExportService) ExportReceipts(ctx context.Context, actor Actor, filter repository.ReceiptFilter, w io.Writer) (int, error) {
	rows, err := s.receipts.Export(ctx, actor, filter)
	if err != nil {
		return 0, err
	}
	return len(rows), WriteReceiptsXLSX(rows, w)
}

// WriteReceiptsXLSX renders rows into a single-sheet workbook.
func WriteReceiptsXLSX(rows []entity.Receipt, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"1F3A68"}},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheet, cell, h)
	}
	last, _ := excelize.ColumnNumberToName(len(exportHeaders))
	f.SetCellStyle(exportSheet, "A1", last+"1", headerStyle)
	f.SetColWidth(exportSheet, "A", last, 16)

	for i := range rows {
		r := &rows[i]
		amount, _ := r.InvestmentAmount.Float64()
		values := []interface{}{
			r.ReceiptNo, r.ReceiptDate, r.Branch, r.EmployeeName, r.EmpCode,
			r.InvestorID, r.InvestorName, r.PAN, r.ProductCategory, r.IssuerCompany,
			r.SchemeName, amount, r.FolioPolicyNo, r.Mode, r.TxnType,
			r.InstrumentType, r.InstrumentNo, r.BankName, r.Status.String(), r.CreatedAt.Format("2006-01-02 15:04"),
			r.DeleteReason,
		}
		row := i + 2
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			f.SetCellValue(exportSheet, cell, v)
		}
		amountCell, _ := excelize.CoordinatesToCellName(12, row)
		f.SetCellStyle(exportSheet, amountCell, amountCell, amountStyle)
	}

	f.SetPanes(exportSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}
