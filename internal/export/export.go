// Package export renders the ledger into spreadsheet-friendly blobs: CSV with
// a UTF-8 BOM and semicolon delimiters for Vietnamese Excel region settings,
// and an annotated HTML workbook for .xls downloads. Pure string building
// over already-filtered data.
package export

import (
	"fmt"
	"html"
	"strings"

	"sothuchi/internal/core"
)

// BOM keeps Excel from mangling Vietnamese text in exported CSVs.
const BOM = "\uFEFF"

const delimiter = ";"

// CSVContentType and ExcelContentType are the download content types.
const (
	CSVContentType   = "text/csv; charset=utf-8"
	ExcelContentType = "application/vnd.ms-excel"
)

// TransactionsCSV renders the ledger rows in list order.
func TransactionsCSV(txs []core.Transaction) string {
	var b strings.Builder
	b.WriteString(BOM)
	writeRow(&b, []string{"Ngày", "Mô tả", "Danh mục", "Loại", "Số tiền"})
	for _, tx := range txs {
		writeRow(&b, []string{
			string(tx.Date),
			tx.Description,
			tx.Category,
			typeLabel(tx.Type),
			fmt.Sprintf("%d", tx.Amount.VND),
		})
	}
	return b.String()
}

// InvoicesCSV flattens each invoice to one row per line item, repeating the
// invoice-level fields (master-detail flattening).
func InvoicesCSV(invoices []core.InvoiceData) string {
	var b strings.Builder
	b.WriteString(BOM)
	writeRow(&b, []string{
		"Ngày HĐ", "Số Hóa Đơn", "MST Người Bán", "Tên Người Bán", "Địa Chỉ NCC",
		"Tên Người Mua", "Tên Hàng Hóa/Dịch Vụ", "Số Lượng", "Đơn Giá",
		"Thành Tiền", "Thuế Suất", "Tiền Thuế", "Tổng Thanh Toán",
	})

	for _, inv := range invoices {
		items := inv.Items
		if len(items) == 0 {
			// Invoices without recognized line items still get one summary row.
			items = []core.InvoiceItem{{Description: inv.Description, Quantity: 1, TotalAmount: inv.TotalAmount}}
		}
		for _, item := range items {
			writeRow(&b, []string{
				string(inv.Date),
				inv.InvoiceNumber,
				inv.VendorTaxCode,
				inv.VendorName,
				inv.VendorAddress,
				inv.BuyerName,
				item.Description,
				fmt.Sprintf("%d", item.Quantity),
				fmt.Sprintf("%d", item.UnitPrice),
				fmt.Sprintf("%d", item.TotalAmount),
				inv.TaxRate,
				fmt.Sprintf("%d", inv.TaxAmount),
				fmt.Sprintf("%d", inv.TotalAmount),
			})
		}
	}
	return b.String()
}

// TransactionsExcelHTML renders an HTML-table workbook Excel opens as .xls.
// The mso styles keep dates and descriptions text-formatted and amounts
// numeric.
func TransactionsExcelHTML(txs []core.Transaction) string {
	var b strings.Builder
	b.WriteString(`<html xmlns:o="urn:schemas-microsoft-com:office:office" xmlns:x="urn:schemas-microsoft-com:office:excel" xmlns="http://www.w3.org/TR/REC-html40">
<head>
<meta charset="utf-8" />
<!--[if gte mso 9]><xml><x:ExcelWorkbook><x:ExcelWorksheets><x:ExcelWorksheet><x:Name>Sổ Thu Chi</x:Name><x:WorksheetOptions><x:DisplayGridlines/></x:WorksheetOptions></x:ExcelWorksheet></x:ExcelWorksheets></x:ExcelWorkbook></xml><![endif]-->
<style>
td, th { border: 0.5pt solid #000000; padding: 5px; vertical-align: middle; }
th { background-color: #f0f0f0; font-weight: bold; text-align: center; }
.num { mso-number-format:"#,##0"; text-align: right; }
.text { mso-number-format:"\@"; }
</style>
</head>
<body>
<table>
<thead>
<tr><th>Ngày</th><th>Mô tả</th><th>Danh mục</th><th>Loại</th><th>Số tiền</th></tr>
</thead>
<tbody>
`)
	for _, tx := range txs {
		fmt.Fprintf(&b, "<tr><td class=\"text\">%s</td><td class=\"text\">%s</td><td class=\"text\">%s</td><td class=\"text\">%s</td><td class=\"num\">%d</td></tr>\n",
			html.EscapeString(string(tx.Date)),
			html.EscapeString(tx.Description),
			html.EscapeString(tx.Category),
			typeLabel(tx.Type),
			tx.Amount.VND)
	}
	b.WriteString(`</tbody>
</table>
</body>
</html>
`)
	return b.String()
}

func typeLabel(t core.TransactionType) string {
	if t == core.Income {
		return "Thu"
	}
	return "Chi"
}

func writeRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(delimiter)
		}
		b.WriteString(escapeField(f))
	}
	b.WriteString("\r\n")
}

// escapeField always quotes, doubling embedded quotes, so delimiters and
// newlines inside descriptions never break a row.
func escapeField(f string) string {
	return `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
}
