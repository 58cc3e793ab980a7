package repositories

import (
	"context"
	"fmt"

	"fleetrent/internal/models"

	"github.com/google/uuid"
)

type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error)
	GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error)
	GetByIDNumber(ctx context.Context, tenantID uuid.UUID, idNumber string) (*models.Client, error)
	GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.Client, error)
	List(ctx context.Context, tenantID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}

type clientRepo struct {
	db DBTX
}

func NewClientRepository(db DBTX) ClientRepository {
	return &clientRepo{db: db}
}

const clientColumns = `id, tenant_id, name, id_number, email, phone, address, license_number, license_issue_date, license_expiry_date, id_card_issue_date, id_card_expiry_date, created_at, updated_at`

func scanClient(row scanner) (*models.Client, error) {
	client := &models.Client{}
	err := row.Scan(&client.ID, &client.TenantID, &client.Name, &client.IDNumber, &client.Email, &client.Phone, &client.Address,
		&client.LicenseNumber, &client.LicenseIssueDate, &client.LicenseExpiryDate, &client.IDCardIssueDate, &client.IDCardExpiryDate,
		&client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func (r *clientRepo) Create(ctx context.Context, client *models.Client) error {
	query := `
		INSERT INTO clients (id, tenant_id, name, id_number, email, phone, address, license_number, license_issue_date, license_expiry_date, id_card_issue_date, id_card_expiry_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, client.ID, client.TenantID, client.Name, client.IDNumber, client.Email, client.Phone, client.Address,
		client.LicenseNumber, client.LicenseIssueDate, client.LicenseExpiryDate, client.IDCardIssueDate, client.IDCardExpiryDate)
	return translateError(err, "client")
}

func (r *clientRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE tenant_id = $1 AND id = $2`
	client, err := scanClient(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, translateError(err, "client")
	}
	return client, nil
}

// GetForUpdate locks the client row until the surrounding transaction ends. It waits for
// bookings still being inserted against the client, and blocks new ones until commit.
func (r *clientRepo) GetForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE tenant_id = $1 AND id = $2 FOR UPDATE`
	client, err := scanClient(r.db.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		return nil, translateError(err, "client")
	}
	return client, nil
}

func (r *clientRepo) GetByIDNumber(ctx context.Context, tenantID uuid.UUID, idNumber string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE tenant_id = $1 AND id_number = $2`
	client, err := scanClient(r.db.QueryRow(ctx, query, tenantID, idNumber))
	if err != nil {
		return nil, translateError(err, "client")
	}
	return client, nil
}

func (r *clientRepo) GetByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE tenant_id = $1 AND lower(email) = lower($2)`
	client, err := scanClient(r.db.QueryRow(ctx, query, tenantID, email))
	if err != nil {
		return nil, translateError(err, "client")
	}
	return client, nil
}

func (r *clientRepo) List(ctx context.Context, tenantID uuid.UUID, filter models.ClientFilter) ([]*models.Client, error) {
	args := []any{tenantID}
	where := "tenant_id = $1"
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		where += fmt.Sprintf(" AND (name ILIKE $%d OR id_number ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)", n, n, n, n)
	}
	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM clients WHERE %s ORDER BY name ASC LIMIT $%d OFFSET $%d`,
		clientColumns, where, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []*models.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func (r *clientRepo) Update(ctx context.Context, client *models.Client) error {
	query := `
		UPDATE clients
		SET name = $1, id_number = $2, email = $3, phone = $4, address = $5, license_number = $6,
			license_issue_date = $7, license_expiry_date = $8, id_card_issue_date = $9, id_card_expiry_date = $10, updated_at = NOW()
		WHERE tenant_id = $11 AND id = $12
	`
	tag, err := r.db.Exec(ctx, query, client.Name, client.IDNumber, client.Email, client.Phone, client.Address, client.LicenseNumber,
		client.LicenseIssueDate, client.LicenseExpiryDate, client.IDCardIssueDate, client.IDCardExpiryDate, client.TenantID, client.ID)
	if err != nil {
		return translateError(err, "client")
	}
	return expectAffected(tag, "client")
}

func (r *clientRepo) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	query := `DELETE FROM clients WHERE tenant_id = $1 AND id = $2`
	tag, err := r.db.Exec(ctx, query, tenantID, id)
	if err != nil {
		return translateError(err, "client")
	}
	return expectAffected(tag, "client")
}
