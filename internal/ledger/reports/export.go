package reports

import (
	"encoding/csv"
	"io"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// WriteTrialBalanceCSV renders the trial balance as CSV with grouped number
// formatting for spreadsheet consumers.
func WriteTrialBalanceCSV(w io.Writer, tb TrialBalance) error {
	printer := message.NewPrinter(language.English)
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Code", "Name", "Type", "Debit", "Credit"}); err != nil {
		return err
	}
	for _, row := range tb.Rows {
		record := []string{
			row.Code,
			row.Name,
			string(row.Type),
			formatAmount(printer, row.Debit),
			formatAmount(printer, row.Credit),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	totals := []string{"", "Total", "", formatAmount(printer, tb.TotalDebit), formatAmount(printer, tb.TotalCredit)}
	if err := writer.Write(totals); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func formatAmount(printer *message.Printer, amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	value, _ := amount.Float64()
	return printer.Sprintf("%v", number.Decimal(value, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
}
