package store

import (
	"time"

	"github.com/sadopc/sitetrackr/internal/items"
)

// ProjectInfo is the single-row project header.
type ProjectInfo struct {
	Name           string
	StartDate      time.Time
	EndDate        time.Time
	UpdatedDate    time.Time // bumped whenever a work item changes
	SiteManager    string
	SafetyOfficer  string
	QualityControl string
}

// Duration returns the inclusive length of the project in days, or 0 when
// either date is unset.
func (p ProjectInfo) Duration() int {
	if p.StartDate.IsZero() || p.EndDate.IsZero() {
		return 0
	}
	return int(items.DayNumber(p.EndDate)-items.DayNumber(p.StartDate)) + 1
}

type Setting struct {
	Key   string
	Value string
}

// Setting keys read by the dashboard.
const (
	SettingDefaultOwner    = "default_owner"
	SettingDefaultCategory = "default_category"
	SettingDefaultItemName = "default_item_name"
	SettingCurrency        = "currency"
)
