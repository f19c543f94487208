package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/ecs-receipts/internal/preview"
	"github.com/sangkips/ecs-receipts/internal/receipt"
	"github.com/sangkips/ecs-receipts/pkg/apperror"
	"github.com/sangkips/ecs-receipts/pkg/printer"
)

// PrinterService prints receipts on the branch thermal printer.
type PrinterService struct {
	printer  printer.Printer
	receipts *ReceiptService
	width    int
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, receipts *ReceiptService, width int) *PrinterService {
	if width <= 0 {
		width = printer.Width80mm
	}
	return &PrinterService{printer: p, receipts: receipts, width: width}
}

// Status returns the printer connection status.
func (s *PrinterService) Status(ctx context.Context) printer.Status {
	return printer.StatusOf(ctx, s.printer)
}

// PrintRecord prints a record, stored or not.
func (s *PrinterService) PrintRecord(ctx context.Context, rec receipt.Record) error {
	if s.printer.Kind() == "none" {
		return apperror.NewUnavailableError("No printer configured")
	}
	data := preview.ESCPOS(preview.Layout(rec), s.width)
	if err := s.printer.Print(ctx, data); err != nil {
		log.Error().Err(err).Str("receipt_no", rec.ReceiptNo).Str("printer", s.printer.Kind()).Msg("print failed")
		return fmt.Errorf("failed to print receipt: %w", err)
	}
	return nil
}

// PrintReceipt fetches a stored receipt the actor may see and prints it.
func (s *PrinterService) PrintReceipt(ctx context.Context, actor Actor, id uuid.UUID) error {
	r, err := s.receipts.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.PrintRecord(ctx, r.Record())
}

// TestPrint sends a sample receipt.
func (s *PrinterService) TestPrint(ctx context.Context) error {
	return s.PrintRecord(ctx, receipt.Record{
		ReceiptNo:    "TEST-0000",
		EmployeeName: "Printer Test",
		ProductFields: receipt.ProductFields{
			ProductCategory: string(receipt.CategoryMF),
		},
	})
}
