package medicine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for medicines.
type Repository interface {
	Create(ctx context.Context, m *Medicine) error
	GetByID(ctx context.Context, id string) (*Medicine, error)
	ListByDevice(ctx context.Context, deviceID string) ([]Medicine, error)
	ListActiveByDevice(ctx context.Context, deviceID string) ([]Medicine, error)
	Update(ctx context.Context, m *Medicine) error
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a medicine repository on an open connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const medicineColumns = "id, device_id, name, dosage, hour, minute, box_num, enabled, created_at, updated_at"

// validate checks the fields the schema cannot enforce.
func validate(m *Medicine) error {
	if m.DeviceID == "" {
		return ErrDeviceIDRequired
	}
	if m.Name == "" {
		return ErrNameRequired
	}
	if m.Hour < 0 || m.Hour > 23 || m.Minute < 0 || m.Minute > 59 {
		return ErrInvalidSchedule
	}
	return nil
}

// Create inserts a new medicine, assigning an ID when absent.
func (r *SQLiteRepository) Create(ctx context.Context, m *Medicine) error {
	if err := validate(m); err != nil {
		return err
	}

	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO medicines (id, device_id, name, dosage, hour, minute, box_num, enabled, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.DeviceID, m.Name, m.Dosage, m.Hour, m.Minute, m.BoxNum,
		boolToInt(m.Enabled),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting medicine: %w", err)
	}

	return nil
}

// GetByID returns one medicine. Returns ErrNotFound when absent.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Medicine, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+medicineColumns+` FROM medicines WHERE id = ?`,
		id,
	)

	m, err := scanMedicine(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListByDevice returns all of a device's medicines ordered by schedule time.
func (r *SQLiteRepository) ListByDevice(ctx context.Context, deviceID string) ([]Medicine, error) {
	if deviceID == "" {
		return nil, ErrDeviceIDRequired
	}

	return r.queryMedicines(ctx,
		`SELECT `+medicineColumns+`
		 FROM medicines
		 WHERE device_id = ?
		 ORDER BY hour, minute, box_num`,
		deviceID,
	)
}

// ListActiveByDevice returns the enabled medicines synced to the device.
func (r *SQLiteRepository) ListActiveByDevice(ctx context.Context, deviceID string) ([]Medicine, error) {
	if deviceID == "" {
		return nil, ErrDeviceIDRequired
	}

	return r.queryMedicines(ctx,
		`SELECT `+medicineColumns+`
		 FROM medicines
		 WHERE device_id = ? AND enabled = 1
		 ORDER BY hour, minute, box_num`,
		deviceID,
	)
}

// Update rewrites a medicine. Returns ErrNotFound when absent.
func (r *SQLiteRepository) Update(ctx context.Context, m *Medicine) error {
	if err := validate(m); err != nil {
		return err
	}

	m.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`UPDATE medicines
		 SET device_id = ?, name = ?, dosage = ?, hour = ?, minute = ?, box_num = ?, enabled = ?, updated_at = ?
		 WHERE id = ?`,
		m.DeviceID, m.Name, m.Dosage, m.Hour, m.Minute, m.BoxNum,
		boolToInt(m.Enabled),
		m.UpdatedAt.Format(time.RFC3339),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating medicine: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a medicine. Returns ErrNotFound when absent.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM medicines WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting medicine: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// queryMedicines runs a SELECT over medicines and scans the rows.
func (r *SQLiteRepository) queryMedicines(ctx context.Context, query string, args ...any) ([]Medicine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying medicines: %w", err)
	}
	defer rows.Close()

	var medicines []Medicine
	for rows.Next() {
		m, err := scanMedicine(rows.Scan)
		if err != nil {
			return nil, err
		}
		medicines = append(medicines, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating medicines: %w", err)
	}

	return medicines, nil
}

// scanMedicine scans one row using the provided scan function.
func scanMedicine(scan func(...any) error) (*Medicine, error) {
	var (
		m         Medicine
		enabled   int
		createdAt string
		updatedAt string
	)

	if err := scan(&m.ID, &m.DeviceID, &m.Name, &m.Dosage, &m.Hour, &m.Minute, &m.BoxNum, &enabled, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning medicine: %w", err)
	}

	m.Enabled = enabled != 0

	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	updated, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at %q: %w", updatedAt, err)
	}
	m.CreatedAt = created
	m.UpdatedAt = updated

	return &m, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
