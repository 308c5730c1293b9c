package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/sparesuite/backend/internal/domain/procurement"
	"github.com/sparesuite/backend/internal/domain/shared"
)

// Export formats
const (
	FormatCSV   = "csv"
	FormatExcel = "excel"
)

// exportFetchLimit caps how many orders one export pulls
const exportFetchLimit = 10000

var exportHeader = []string{
	"Order Number", "Supplier", "Status", "Payment Status",
	"Order Date", "Items", "Subtotal", "Tax", "Grand Total",
}

// ExportService renders filtered order ledgers to downloadable files
type ExportService struct {
	orderRepo procurement.PurchaseOrderRepository
	exportDir string
	baseURL   string
	now       func() time.Time
}

// NewExportService creates a new ExportService. Files land in exportDir and
// are served under baseURL.
func NewExportService(orderRepo procurement.PurchaseOrderRepository, exportDir, baseURL string) *ExportService {
	return &ExportService{
		orderRepo: orderRepo,
		exportDir: exportDir,
		baseURL:   baseURL,
		now:       time.Now,
	}
}

// ExportResult points at the generated file
type ExportResult struct {
	FileName    string `json:"file_name"`
	DownloadURL string `json:"download_url"`
	RowCount    int    `json:"row_count"`
}

// ExportOrders writes the filtered order set to a file in the requested
// format and returns its download location. Unknown formats are a caller
// error.
func (s *ExportService) ExportOrders(ctx context.Context, tenantID uuid.UUID, format string, params procurement.OrderQueryParams) (*ExportResult, error) {
	if format != FormatCSV && format != FormatExcel {
		return nil, shared.NewInvalidArgument(fmt.Sprintf("Unknown export format %q", format))
	}

	params.Page = 1
	params.Limit = exportFetchLimit
	query, err := procurement.BuildOrderQuery(tenantID, params)
	if err != nil {
		return nil, err
	}

	orders, err := s.orderRepo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
		return nil, err
	}

	stamp := s.now().UTC().Format("20060102-150405")
	var fileName string
	switch format {
	case FormatCSV:
		fileName = fmt.Sprintf("purchase-orders-%s.csv", stamp)
		err = s.writeCSV(filepath.Join(s.exportDir, fileName), orders)
	case FormatExcel:
		fileName = fmt.Sprintf("purchase-orders-%s.xlsx", stamp)
		err = s.writeExcel(filepath.Join(s.exportDir, fileName), orders)
	}
	if err != nil {
		return nil, err
	}

	return &ExportResult{
		FileName:    fileName,
		DownloadURL: s.baseURL + "/" + fileName,
		RowCount:    len(orders),
	}, nil
}

func (s *ExportService) writeCSV(path string, orders []procurement.PurchaseOrder) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for i := range orders {
		if err := w.Write(exportRow(&orders[i])); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *ExportService) writeExcel(path string, orders []procurement.PurchaseOrder) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Purchase Orders"
	f.SetSheetName("Sheet1", sheet)

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}
	for i := range orders {
		for col, value := range exportRow(&orders[i]) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return f.SaveAs(path)
}

func exportRow(order *procurement.PurchaseOrder) []string {
	return []string{
		order.OrderNumber,
		order.SupplierName,
		order.Status.String(),
		order.PaymentStatus.String(),
		order.OrderDate.Format("2006-01-02"),
		fmt.Sprintf("%d", order.ItemCount()),
		order.Subtotal.StringFixed(2),
		order.TaxAmount.StringFixed(2),
		order.GrandTotal.StringFixed(2),
	}
}
