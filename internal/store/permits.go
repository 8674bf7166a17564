package store

import (
	"database/sql"
	"fmt"

	"github.com/sadopc/sitetrackr/internal/items"
	"github.com/sadopc/sitetrackr/internal/permits"
)

func (s *Store) SavePersonnel(list []permits.Personnel) error {
	return s.replaceAll("personnel", func(tx *sql.Tx) error {
		for i, p := range list {
			_, err := tx.Exec(
				`INSERT INTO personnel (id, position, company, name, role, labor_insurance, id_card,
				 physical_exam, safety_training, special_license, application_date, entry_date, status, note)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				p.ID, i, p.Company, p.Name, p.Role,
				boolInt(p.LaborInsurance), boolInt(p.IDCard), boolInt(p.PhysicalExam),
				boolInt(p.SafetyTraining), boolInt(p.SpecialLicense),
				items.FormatDate(p.ApplicationDate), items.FormatDate(p.EntryDate), string(p.Status), p.Note,
			)
			if err != nil {
				return fmt.Errorf("insert personnel %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) ListPersonnel() ([]permits.Personnel, error) {
	rows, err := s.db.Query(
		`SELECT id, company, name, role, labor_insurance, id_card, physical_exam, safety_training,
		 special_license, application_date, entry_date, status, note FROM personnel ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list personnel: %w", err)
	}
	defer rows.Close()

	var list []permits.Personnel
	for rows.Next() {
		var p permits.Personnel
		var insurance, idCard, exam, training, license int
		var applied, entered, status string
		if err := rows.Scan(&p.ID, &p.Company, &p.Name, &p.Role, &insurance, &idCard, &exam, &training,
			&license, &applied, &entered, &status, &p.Note); err != nil {
			return nil, err
		}
		p.LaborInsurance = insurance == 1
		p.IDCard = idCard == 1
		p.PhysicalExam = exam == 1
		p.SafetyTraining = training == 1
		p.SpecialLicense = license == 1
		if err := parseDates(
			datePair{"application_date", applied, &p.ApplicationDate},
			datePair{"entry_date", entered, &p.EntryDate},
		); err != nil {
			return nil, fmt.Errorf("personnel %s: %w", p.ID, err)
		}
		p.Status = permits.Review(status)
		list = append(list, p)
	}
	return list, rows.Err()
}

func (s *Store) SaveVehicles(list []permits.Vehicle) error {
	return s.replaceAll("vehicles", func(tx *sql.Tx) error {
		for i, v := range list {
			_, err := tx.Exec(
				`INSERT INTO vehicles (id, position, company, plate_number, type, driver, registration,
				 license, insurance, photo, application_date, entry_date, access_area, status)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				v.ID, i, v.Company, v.PlateNumber, v.Type, v.Driver,
				boolInt(v.Registration), boolInt(v.License), boolInt(v.Insurance), boolInt(v.Photo),
				items.FormatDate(v.ApplicationDate), items.FormatDate(v.EntryDate), v.AccessArea, string(v.Status),
			)
			if err != nil {
				return fmt.Errorf("insert vehicle %s: %w", v.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) ListVehicles() ([]permits.Vehicle, error) {
	rows, err := s.db.Query(
		`SELECT id, company, plate_number, type, driver, registration, license, insurance, photo,
		 application_date, entry_date, access_area, status FROM vehicles ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var list []permits.Vehicle
	for rows.Next() {
		var v permits.Vehicle
		var registration, license, insurance, photo int
		var applied, entered, status string
		if err := rows.Scan(&v.ID, &v.Company, &v.PlateNumber, &v.Type, &v.Driver, &registration,
			&license, &insurance, &photo, &applied, &entered, &v.AccessArea, &status); err != nil {
			return nil, err
		}
		v.Registration = registration == 1
		v.License = license == 1
		v.Insurance = insurance == 1
		v.Photo = photo == 1
		if err := parseDates(
			datePair{"application_date", applied, &v.ApplicationDate},
			datePair{"entry_date", entered, &v.EntryDate},
		); err != nil {
			return nil, fmt.Errorf("vehicle %s: %w", v.ID, err)
		}
		v.Status = permits.Review(status)
		list = append(list, v)
	}
	return list, rows.Err()
}
