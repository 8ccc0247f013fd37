package api

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"

	"api_commerce/internal/sales"
)

var reportHeader = []string{"Sale ID", "Generated At", "Customer Tax ID", "Products (SKU:Quantity)", "Total Amount"}

// writeSalesReport renders rows as CSV. Products of a sale are joined with
// '&'.
func writeSalesReport(w io.Writer, rows []sales.ReportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, r := range rows {
		items := make([]string, 0, len(r.Lines))
		for _, l := range r.Lines {
			items = append(items, l.SKU+":"+strconv.Itoa(l.Quantity))
		}
		record := []string{
			strconv.FormatInt(r.SaleID, 10),
			r.GeneratedAt.UTC().Format(time.RFC3339),
			r.CustomerTaxID,
			strings.Join(items, "&"),
			r.Total.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
