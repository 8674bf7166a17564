package store

import (
	"database/sql"
	"fmt"

	"github.com/sadopc/sitetrackr/internal/items"
)

// SaveItems replaces the stored schedule with items, keeping their order.
func (s *Store) SaveItems(list []items.WorkItem) error {
	return s.replaceAll("work_items", func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(
			`INSERT INTO work_items (id, position, category, name, status, start_date, end_date, days,
			 progress, amount, payment, owner, remark) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		)
		if err != nil {
			return fmt.Errorf("prepare insert work item: %w", err)
		}
		defer stmt.Close()

		for i, it := range list {
			_, err := stmt.Exec(
				it.ID, i, it.Category, it.Name, string(it.Status),
				items.FormatDate(it.StartDate), items.FormatDate(it.EndDate), it.Days,
				it.Progress, it.Amount, string(it.Payment), it.Owner, it.Remark,
			)
			if err != nil {
				return fmt.Errorf("insert work item %s: %w", it.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) ListItems() ([]items.WorkItem, error) {
	rows, err := s.db.Query(
		`SELECT id, category, name, status, start_date, end_date, days, progress, amount, payment, owner, remark
		 FROM work_items ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list work items: %w", err)
	}
	defer rows.Close()

	var list []items.WorkItem
	for rows.Next() {
		var it items.WorkItem
		var status, payment, start, end string
		if err := rows.Scan(&it.ID, &it.Category, &it.Name, &status, &start, &end, &it.Days,
			&it.Progress, &it.Amount, &payment, &it.Owner, &it.Remark); err != nil {
			return nil, err
		}
		it.Status = items.Status(status)
		it.Payment = items.Payment(payment)
		if err := parseDates(
			datePair{"start_date", start, &it.StartDate},
			datePair{"end_date", end, &it.EndDate},
		); err != nil {
			return nil, fmt.Errorf("work item %s: %w", it.ID, err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (s *Store) CountItems() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM work_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count work items: %w", err)
	}
	return n, nil
}
