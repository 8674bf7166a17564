package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sadopc/sitetrackr/internal/items"
)

var csvHeader = []string{
	"ID", "Category", "Name", "Status", "Start", "End", "Days",
	"Progress (%)", "Amount", "Payment", "Owner", "Remark",
}

func ToCSV(list []items.WorkItem, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return err
	}

	for _, it := range list {
		row := []string{
			it.ID,
			it.Category,
			it.Name,
			it.Status.Label(),
			items.FormatDate(it.StartDate),
			items.FormatDate(it.EndDate),
			strconv.Itoa(it.Days),
			strconv.Itoa(it.Progress),
			strconv.FormatInt(it.Amount, 10),
			it.Payment.Label(),
			it.Owner,
			it.Remark,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}
