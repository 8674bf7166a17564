package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/store"
)

type jsonExport struct {
	ExportedAt string      `json:"exported_at"`
	Project    jsonProject `json:"project"`
	Count      int         `json:"count"`
	Totals     jsonTotals  `json:"totals"`
	Items      []jsonItem  `json:"items"`
}

type jsonProject struct {
	Name           string `json:"name"`
	StartDate      string `json:"start_date,omitempty"`
	EndDate        string `json:"end_date,omitempty"`
	UpdatedDate    string `json:"updated_date,omitempty"`
	SiteManager    string `json:"site_manager,omitempty"`
	SafetyOfficer  string `json:"safety_officer,omitempty"`
	QualityControl string `json:"quality_control,omitempty"`
}

type jsonTotals struct {
	Total  int64 `json:"total"`
	Paid   int64 `json:"paid"`
	Unpaid int64 `json:"unpaid"`
}

type jsonItem struct {
	ID        string `json:"id"`
	Category  string `json:"category"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
	Progress  int    `json:"progress"`
	Amount    int64  `json:"amount"`
	Payment   string `json:"payment"`
	Owner     string `json:"owner"`
	Remark    string `json:"remark,omitempty"`
}

func ToJSON(info store.ProjectInfo, list []items.WorkItem, path string) error {
	totals := items.Summarize(list)
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Project: jsonProject{
			Name:           info.Name,
			StartDate:      items.FormatDate(info.StartDate),
			EndDate:        items.FormatDate(info.EndDate),
			UpdatedDate:    items.FormatDate(info.UpdatedDate),
			SiteManager:    info.SiteManager,
			SafetyOfficer:  info.SafetyOfficer,
			QualityControl: info.QualityControl,
		},
		Count:  len(list),
		Totals: jsonTotals{Total: totals.Total, Paid: totals.Paid, Unpaid: totals.Unpaid},
	}

	for _, it := range list {
		export.Items = append(export.Items, jsonItem{
			ID:        it.ID,
			Category:  it.Category,
			Name:      it.Name,
			Status:    string(it.Status),
			StartDate: items.FormatDate(it.StartDate),
			EndDate:   items.FormatDate(it.EndDate),
			Days:      it.Days,
			Progress:  it.Progress,
			Amount:    it.Amount,
			Payment:   string(it.Payment),
			Owner:     it.Owner,
			Remark:    it.Remark,
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
