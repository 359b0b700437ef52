// Package export turns trip records into downloadable artifacts: a
// semicolon-delimited CSV summary and a ZIP archive bundling the CSV with the
// receipt photos fetched from object storage.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/dverna/trasferte/internal/common"
	"github.com/dverna/trasferte/internal/server/models"
)

// csvHeader is the fixed header row. The delimiter is ';' because the target
// locale uses ',' as the decimal separator.
var csvHeader = []string{"Luogo", "Data", "Importo", "Descrizione"}

// BuildCSV renders one row per expense across all supplied trips, in the
// order trips and their expenses were supplied. Dates are shown as
// dd/mm/yyyy, amounts with two decimals and a decimal comma.
func BuildCSV(trips []models.Trip) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = ';'

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}

	for _, trip := range trips {
		date, err := formatDate(trip.Date)
		if err != nil {
			return nil, fmt.Errorf("trip %q: %w", trip.Location, err)
		}
		for _, exp := range trip.Expenses {
			row := []string{
				trip.Location,
				date,
				formatAmount(exp.Amount),
				sanitizeComment(exp.Comment),
			}
			if err := w.Write(row); err != nil {
				return nil, fmt.Errorf("csv write error: %w", err)
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("csv flush error: %w", err)
	}
	return buf.Bytes(), nil
}

// formatDate converts a stored yyyy-mm-dd trip date to the dd/mm/yyyy
// display form.
func formatDate(date string) (string, error) {
	t, err := time.Parse(common.TripDateLayout, date)
	if err != nil {
		return "", fmt.Errorf("%w: %q", common.ErrorInvalidDate, date)
	}
	return t.Format("02/01/2006"), nil
}

// formatAmount renders the absolute value with exactly two decimals and a
// decimal comma. Amounts are never negative in this domain.
func formatAmount(amount float64) string {
	s := strconv.FormatFloat(math.Abs(amount), 'f', 2, 64)
	return strings.Replace(s, ".", ",", 1)
}

// sanitizeComment replaces embedded newlines and semicolons with single
// spaces so every expense stays on one row with aligned columns.
func sanitizeComment(comment string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ';':
			return ' '
		}
		return r
	}, comment)
}
