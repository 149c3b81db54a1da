package reports

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"uren/internal/domain/commission"
)

// PayoutRegisterCSV renders the payout records as a register: one row per
// profile with own pay, received deductions and total.
func PayoutRegisterCSV(payouts []commission.PayoutRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"profile_id", "name", "own_pay", "received_hourly", "received_margin", "total"}); err != nil {
		return nil, err
	}
	for _, rec := range payouts {
		row := []string{
			rec.ProfileID,
			rec.Name,
			money(rec.OwnPay),
			money(rec.ReceivedHourly),
			money(rec.ReceivedMargin),
			money(rec.Total),
		}
		if err := writer.Write(row); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
