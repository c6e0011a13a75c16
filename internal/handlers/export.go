package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"budgetapp/internal/models"
)

const (
	exportXLSX = "xlsx"
	exportCSV  = "csv"

	exportSheet = "Transactions"
)

var exportHeader = []string{"Date", "Name", "Amount", "Category", "Payment Channel", "Institution", "Transaction ID"}

func exportRow(t *models.Transaction) []string {
	return []string{
		formatDate(time.Time(t.Date)),
		t.Name,
		t.Amount.StringFixed(2),
		t.Category,
		t.PaymentChannel,
		institutionName(t),
		t.TransactionID,
	}
}

func exportFilename(ext string) string {
	return fmt.Sprintf("transactions_%s.%s", time.Now().UTC().Format("20060102"), ext)
}

func writeCSV(c *gin.Context, rows []models.Transaction) error {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(exportCSV)))

	w := csv.NewWriter(c.Writer)
	if err := w.Write(exportHeader); err != nil {
		return err
	}
	for i := range rows {
		if err := w.Write(exportRow(&rows[i])); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(c *gin.Context, rows []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]interface{}, len(exportHeader))
	for i, h := range exportHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}

	for i := range rows {
		t := &rows[i]
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			formatDate(time.Time(t.Date)),
			t.Name,
			t.Amount.InexactFloat64(),
			t.Category,
			t.PaymentChannel,
			institutionName(t),
			t.TransactionID,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 12)
	_ = f.SetColWidth(exportSheet, "B", "B", 32)
	_ = f.SetColWidth(exportSheet, "C", "C", 12)
	_ = f.SetColWidth(exportSheet, "D", "F", 20)
	_ = f.SetColWidth(exportSheet, "G", "G", 40)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return err
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportFilename(exportXLSX)))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	return nil
}
