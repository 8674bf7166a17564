package store

import (
	"fmt"
	"time"

	"github.com/sadopc/sitetrackr/internal/items"
)

func (s *Store) GetProjectInfo() (*ProjectInfo, error) {
	p := &ProjectInfo{}
	var start, end, updated string
	err := s.db.QueryRow(
		`SELECT name, start_date, end_date, updated_date, site_manager, safety_officer, quality_control
		 FROM project_info WHERE id = 1`,
	).Scan(&p.Name, &start, &end, &updated, &p.SiteManager, &p.SafetyOfficer, &p.QualityControl)
	if err != nil {
		return nil, fmt.Errorf("get project info: %w", err)
	}
	if err := parseDates(
		datePair{"start_date", start, &p.StartDate},
		datePair{"end_date", end, &p.EndDate},
		datePair{"updated_date", updated, &p.UpdatedDate},
	); err != nil {
		return nil, fmt.Errorf("get project info: %w", err)
	}
	return p, nil
}

func (s *Store) SaveProjectInfo(p ProjectInfo) error {
	_, err := s.db.Exec(
		`UPDATE project_info SET name = ?, start_date = ?, end_date = ?, updated_date = ?,
		 site_manager = ?, safety_officer = ?, quality_control = ? WHERE id = 1`,
		p.Name, items.FormatDate(p.StartDate), items.FormatDate(p.EndDate), items.FormatDate(p.UpdatedDate),
		p.SiteManager, p.SafetyOfficer, p.QualityControl,
	)
	if err != nil {
		return fmt.Errorf("save project info: %w", err)
	}
	return nil
}

// parseDate returns the zero time for an empty value. A malformed value is an
// error so a damaged row never loads as a real date.
func parseDate(column, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := items.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", column, err)
	}
	return t, nil
}

// parseDates parses each column/value pair into the matching destination.
func parseDates(pairs ...datePair) error {
	for _, p := range pairs {
		t, err := parseDate(p.column, p.value)
		if err != nil {
			return err
		}
		*p.dst = t
	}
	return nil
}

type datePair struct {
	column string
	value  string
	dst    *time.Time
}
