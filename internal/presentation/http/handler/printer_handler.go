package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/ecs-receipts/internal/application/service"
	"github.com/sangkips/ecs-receipts/internal/presentation/http/dto/response"
)

// PrinterHandler handles thermal printer HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.printerService.Status(c.Request.Context()))
}

// TestPrint sends a sample receipt to the printer.
func (h *PrinterHandler) TestPrint(c *gin.Context) {
	if err := h.printerService.TestPrint(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Test page sent to printer", nil)
}

// PrintReceipt prints a stored receipt on the thermal printer.
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.printerService.PrintReceipt(c.Request.Context(), currentActor(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt sent to printer", nil)
}
