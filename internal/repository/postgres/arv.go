package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
)

const (
	drugColumns         = `id, name, generic_name, drug_class, form, strength, status, created_at, updated_at`
	regimenColumns      = `id, name, description, line, status, created_at, updated_at`
	prescriptionColumns = `id, patient_id, doctor_id, regimen_id, start_date, end_date, status, notes, created_at, updated_at`
)

type arvRepository struct {
	BaseRepository
}

func NewARVRepository(db *sqlx.DB) repository.ARVRepository {
	return &arvRepository{NewBaseRepository(db)}
}

func (r *arvRepository) CreateDrug(ctx context.Context, drug *model.ARVDrug) error {
	query := `
		INSERT INTO arv_drugs (` + drugColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if drug.ID == uuid.Nil {
		drug.ID = uuid.New()
	}
	now := time.Now().UTC()
	drug.CreatedAt = now
	drug.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		drug.ID,
		drug.Name,
		drug.GenericName,
		drug.DrugClass,
		drug.Form,
		drug.Strength,
		drug.Status,
		drug.CreatedAt,
		drug.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create drug: %w", mapError(err))
	}
	return nil
}

func (r *arvRepository) GetDrug(ctx context.Context, id uuid.UUID) (*model.ARVDrug, error) {
	var drug model.ARVDrug
	if err := r.db.GetContext(ctx, &drug, `SELECT `+drugColumns+` FROM arv_drugs WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get drug: %w", mapError(err))
	}
	return &drug, nil
}

func (r *arvRepository) UpdateDrug(ctx context.Context, drug *model.ARVDrug) error {
	query := `
		UPDATE arv_drugs
		SET name = $1, generic_name = $2, drug_class = $3, form = $4, strength = $5, status = $6, updated_at = $7
		WHERE id = $8
	`
	drug.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		drug.Name,
		drug.GenericName,
		drug.DrugClass,
		drug.Form,
		drug.Strength,
		drug.Status,
		drug.UpdatedAt,
		drug.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update drug: %w", mapError(err))
	}
	return requireAffected(result, "drug")
}

func (r *arvRepository) ListDrugs(ctx context.Context, status model.RecordStatus) ([]*model.ARVDrug, error) {
	var where whereBuilder
	if status != "" {
		where.add("status = $%d", status)
	}

	drugs := make([]*model.ARVDrug, 0)
	query := `SELECT ` + drugColumns + ` FROM arv_drugs` + where.clause() + ` ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &drugs, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list drugs: %w", err)
	}
	return drugs, nil
}

// CreateRegimen stores the regimen and its drug lines in one transaction.
func (r *arvRepository) CreateRegimen(ctx context.Context, regimen *model.Regimen) error {
	if regimen.ID == uuid.Nil {
		regimen.ID = uuid.New()
	}
	now := time.Now().UTC()
	regimen.CreatedAt = now
	regimen.UpdatedAt = now

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO regimens (` + regimenColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err := tx.ExecContext(ctx, query,
			regimen.ID,
			regimen.Name,
			regimen.Description,
			regimen.Line,
			regimen.Status,
			regimen.CreatedAt,
			regimen.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create regimen: %w", mapError(err))
		}

		line := `
			INSERT INTO regimen_drugs (regimen_id, drug_id, dosage, frequency)
			VALUES ($1, $2, $3, $4)
		`
		for i := range regimen.Drugs {
			d := &regimen.Drugs[i]
			d.RegimenID = regimen.ID
			if _, err := tx.ExecContext(ctx, line, d.RegimenID, d.DrugID, d.Dosage, d.Frequency); err != nil {
				return fmt.Errorf("failed to add regimen drug: %w", mapError(err))
			}
		}
		return nil
	})
}

func (r *arvRepository) GetRegimen(ctx context.Context, id uuid.UUID) (*model.Regimen, error) {
	var regimen model.Regimen
	if err := r.db.GetContext(ctx, &regimen, `SELECT `+regimenColumns+` FROM regimens WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get regimen: %w", mapError(err))
	}

	drugs, err := r.regimenDrugs(ctx, []uuid.UUID{regimen.ID})
	if err != nil {
		return nil, err
	}
	regimen.Drugs = drugs[regimen.ID]
	if regimen.Drugs == nil {
		regimen.Drugs = []model.RegimenDrug{}
	}
	return &regimen, nil
}

func (r *arvRepository) ListRegimens(ctx context.Context, status model.RecordStatus) ([]*model.Regimen, error) {
	var where whereBuilder
	if status != "" {
		where.add("status = $%d", status)
	}

	regimens := make([]*model.Regimen, 0)
	query := `SELECT ` + regimenColumns + ` FROM regimens` + where.clause() + ` ORDER BY line ASC, name ASC`
	if err := r.db.SelectContext(ctx, &regimens, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list regimens: %w", err)
	}
	if len(regimens) == 0 {
		return regimens, nil
	}

	ids := make([]uuid.UUID, len(regimens))
	for i, reg := range regimens {
		ids[i] = reg.ID
	}
	drugs, err := r.regimenDrugs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, reg := range regimens {
		reg.Drugs = drugs[reg.ID]
		if reg.Drugs == nil {
			reg.Drugs = []model.RegimenDrug{}
		}
	}
	return regimens, nil
}

func (r *arvRepository) regimenDrugs(ctx context.Context, regimenIDs []uuid.UUID) (map[uuid.UUID][]model.RegimenDrug, error) {
	query, args, err := sqlx.In(`
		SELECT rd.regimen_id, rd.drug_id, d.name AS drug_name, rd.dosage, rd.frequency
		FROM regimen_drugs rd
		JOIN arv_drugs d ON d.id = rd.drug_id
		WHERE rd.regimen_id IN (?)
		ORDER BY d.name ASC
	`, regimenIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build regimen drug query: %w", err)
	}

	var rows []model.RegimenDrug
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list regimen drugs: %w", err)
	}

	byRegimen := make(map[uuid.UUID][]model.RegimenDrug, len(regimenIDs))
	for _, row := range rows {
		byRegimen[row.RegimenID] = append(byRegimen[row.RegimenID], row)
	}
	return byRegimen, nil
}

// StartPrescription closes any active prescription for the patient the day the
// new one starts, then inserts the new one.
func (r *arvRepository) StartPrescription(ctx context.Context, prescription *model.Prescription) error {
	if prescription.ID == uuid.Nil {
		prescription.ID = uuid.New()
	}
	now := time.Now().UTC()
	prescription.CreatedAt = now
	prescription.UpdatedAt = now
	prescription.Status = model.PrescriptionStatusActive

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		end := `
			UPDATE prescriptions
			SET status = $1, end_date = $2, updated_at = $3
			WHERE patient_id = $4 AND status = $5
		`
		if _, err := tx.ExecContext(ctx, end,
			model.PrescriptionStatusEnded,
			prescription.StartDate,
			now,
			prescription.PatientID,
			model.PrescriptionStatusActive,
		); err != nil {
			return fmt.Errorf("failed to end active prescription: %w", err)
		}

		insert := `
			INSERT INTO prescriptions (` + prescriptionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`
		if _, err := tx.ExecContext(ctx, insert,
			prescription.ID,
			prescription.PatientID,
			prescription.DoctorID,
			prescription.RegimenID,
			prescription.StartDate,
			prescription.EndDate,
			prescription.Status,
			prescription.Notes,
			prescription.CreatedAt,
			prescription.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create prescription: %w", mapError(err))
		}
		return nil
	})
}

func (r *arvRepository) GetPrescription(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	var p model.Prescription
	if err := r.db.GetContext(ctx, &p, `SELECT `+prescriptionColumns+` FROM prescriptions WHERE id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to get prescription: %w", mapError(err))
	}
	return &p, nil
}

func (r *arvRepository) EndPrescription(ctx context.Context, id uuid.UUID, endDate time.Time) error {
	query := `
		UPDATE prescriptions
		SET status = $1, end_date = $2, updated_at = $3
		WHERE id = $4 AND status = $5
	`
	result, err := r.db.ExecContext(ctx, query,
		model.PrescriptionStatusEnded,
		endDate,
		time.Now().UTC(),
		id,
		model.PrescriptionStatusActive,
	)
	if err != nil {
		return fmt.Errorf("failed to end prescription: %w", err)
	}
	return requireAffected(result, "active prescription")
}

func (r *arvRepository) ListPrescriptions(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	query := `
		SELECT ` + prescriptionColumns + `
		FROM prescriptions
		WHERE patient_id = $1
		ORDER BY start_date DESC, created_at DESC
	`
	prescriptions := make([]*model.Prescription, 0)
	if err := r.db.SelectContext(ctx, &prescriptions, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list prescriptions: %w", err)
	}
	return prescriptions, nil
}
