// Package certificate manages issued certificates of insurance, their
// templates and holders, and the rendered documents.
package certificate

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lowerzedo/ims-api/internal/database"
	"github.com/lowerzedo/ims-api/pkg/documents"
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/tracing"
)

// CertificateRepository defines the interface for certificate operations
type CertificateRepository interface {
	Create(ctx context.Context, req models.CreateCertificateRequest) (*models.Certificate, error)
	GetByID(ctx context.Context, id string) (*models.Certificate, error)
	List(ctx context.Context, masterCertificateID string, params models.ListParams) ([]models.Certificate, int, error)
	Update(ctx context.Context, id string, req models.UpdateCertificateRequest) (*models.Certificate, error)
	Delete(ctx context.Context, id string) error
	OpenDocument(ctx context.Context, id string) ([]byte, error)
}

// Repository implements CertificateRepository
type Repository struct {
	db     database.DB
	store  *documents.Store
	logger *zap.Logger
}

// NewRepository creates a new certificate repository
func NewRepository(db database.DB, store *documents.Store, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		store:  store,
		logger: logger,
	}
}

const tableName = "certificates"

// maxCodeAttempts bounds retries on a verification code collision.
const maxCodeAttempts = 5

var certificateColumns = []string{
	"id", "master_certificate_id", "certificate_holder_id", "verification_code",
	"document_path", "created_at", "updated_at", "is_active",
}

// certContext is the resolved graph a certificate document is rendered from.
type certContext struct {
	master *models.MasterCertificate
	policy *models.Policy
	client *models.Client
}

// Create issues a certificate under a master certificate template, assigns a
// verification code, and renders the document.
func (r *Repository) Create(ctx context.Context, req models.CreateCertificateRequest) (*models.Certificate, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificateRepository.Create")
	defer span.End()

	cc, err := r.resolveContext(ctx, req.MasterCertificateID)
	if err != nil {
		return nil, err
	}

	holder, err := r.loadHolder(ctx, req.CertificateHolderID)
	if err != nil {
		return nil, err
	}

	vehicles, err := r.loadSelectedVehicles(ctx, cc.policy.ClientID, req.VehicleIDs)
	if err != nil {
		return nil, err
	}
	drivers, err := r.loadSelectedDrivers(ctx, cc.policy.ClientID, req.DriverIDs)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now()

	var cert *models.Certificate
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := GenerateVerificationCode()
		if err != nil {
			return nil, err
		}
		path := documents.DocumentPath(cc.policy.ClientID, cc.policy.ID, id, code)

		candidate := &models.Certificate{
			VerificationCode: code,
			DocumentPath:     &path,
			VehicleIDs:       req.VehicleIDs,
			DriverIDs:        req.DriverIDs,
		}
		candidate.ID = id

		doc := documents.RenderCertificate(documents.CertificateData{
			Certificate: candidate,
			Holder:      holder,
			Policy:      cc.policy,
			Client:      cc.client,
			Vehicles:    vehicles,
			Drivers:     drivers,
			IssuedAt:    now,
		})

		err = r.issueCertificate(ctx, id, req, code, path, now, doc)
		if database.IsUniqueViolation(err, "certificates_verification_code_key") {
			continue
		}
		if err != nil {
			return nil, err
		}

		cert = candidate
		break
	}
	if cert == nil {
		return nil, fmt.Errorf("failed to assign a unique verification code after %d attempts", maxCodeAttempts)
	}

	r.logger.Info("created certificate",
		zap.String("id", id),
		zap.String("verification_code", cert.VerificationCode),
		zap.String("policy_id", cc.policy.ID),
	)
	return r.GetByID(ctx, id)
}

// issueCertificate writes the certificate row, its selections, and the
// rendered document as one unit. The row and the stored file either both
// survive or neither does: a failed save rolls the row back, a failed commit
// removes the file.
func (r *Repository) issueCertificate(ctx context.Context, id string, req models.CreateCertificateRequest, code, path string, now time.Time, doc []byte) error {
	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols("id", "master_certificate_id", "certificate_holder_id", "verification_code", "document_path", "created_at", "updated_at", "is_active")
	sb.Values(id, req.MasterCertificateID, req.CertificateHolderID, code, path, now, now, true)
	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if !database.IsUniqueViolation(err, "certificates_verification_code_key") {
			r.logger.Error("failed to create certificate", zap.Error(err))
			return fmt.Errorf("failed to create certificate: %w", err)
		}
		return err
	}

	if err := r.replaceSelections(ctx, tx, id, req.VehicleIDs, req.DriverIDs); err != nil {
		return err
	}

	if err := r.store.Save(path, doc); err != nil {
		r.logger.Error("failed to store certificate document", zap.Error(err), zap.String("id", id))
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		_ = r.store.Delete(path)
		return err
	}
	return nil
}

// GetByID gets a certificate with its vehicle and driver selections
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Certificate, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificateRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(certificateColumns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var c models.Certificate
	if err := r.db.GetContext(ctx, &c, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "certificate not found")
		}
		r.logger.Error("failed to get certificate", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}

	if err := r.loadSelections(ctx, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *Repository) loadSelections(ctx context.Context, c *models.Certificate) error {
	vb := sqlbuilder.NewSelectBuilder()
	vb.Select("vehicle_id")
	vb.From("certificate_vehicles")
	vb.Where(vb.Equal("certificate_id", c.ID))
	vb.OrderBy("created_at ASC")
	query, args := vb.Build()

	c.VehicleIDs = []string{}
	if err := r.db.SelectContext(ctx, &c.VehicleIDs, query, args...); err != nil && err != sql.ErrNoRows {
		r.logger.Error("failed to load certificate vehicles", zap.Error(err), zap.String("id", c.ID))
		return fmt.Errorf("failed to load certificate vehicles: %w", err)
	}

	db := sqlbuilder.NewSelectBuilder()
	db.Select("driver_id")
	db.From("certificate_drivers")
	db.Where(db.Equal("certificate_id", c.ID))
	db.OrderBy("created_at ASC")
	query, args = db.Build()

	c.DriverIDs = []string{}
	if err := r.db.SelectContext(ctx, &c.DriverIDs, query, args...); err != nil && err != sql.ErrNoRows {
		r.logger.Error("failed to load certificate drivers", zap.Error(err), zap.String("id", c.ID))
		return fmt.Errorf("failed to load certificate drivers: %w", err)
	}

	return nil
}

// List lists certificates, optionally scoped to one master certificate
func (r *Repository) List(ctx context.Context, masterCertificateID string, params models.ListParams) ([]models.Certificate, int, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificateRepository.List")
	defer span.End()

	params.Normalize()

	apply := func(sb *sqlbuilder.SelectBuilder) {
		if masterCertificateID != "" {
			sb.Where(sb.Equal("master_certificate_id", masterCertificateID))
		}
		if !params.IncludeInactive {
			sb.Where(sb.Equal("is_active", true))
		}
		if params.Search != "" {
			sb.Where(sb.ILike("verification_code", "%"+params.Search+"%"))
		}
	}

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	apply(countSb)
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count certificates", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count certificates: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(certificateColumns...)
	sb.From(tableName)
	apply(sb)
	sb.OrderBy("created_at DESC")
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.Certificate{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list certificates", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list certificates: %w", err)
	}

	return items, totalCount, nil
}

// Update changes the holder or the vehicle/driver selections of an issued
// certificate and re-renders its document. The verification code and document
// path never change.
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateCertificateRequest) (*models.Certificate, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificateRepository.Update")
	defer span.End()

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	cc, err := r.resolveContext(ctx, existing.MasterCertificateID)
	if err != nil {
		return nil, err
	}

	holderID := existing.CertificateHolderID
	if req.CertificateHolderID != nil {
		holderID = *req.CertificateHolderID
	}
	holder, err := r.loadHolder(ctx, holderID)
	if err != nil {
		return nil, err
	}

	vehicleIDs := existing.VehicleIDs
	if req.VehicleIDs != nil {
		vehicleIDs = *req.VehicleIDs
	}
	driverIDs := existing.DriverIDs
	if req.DriverIDs != nil {
		driverIDs = *req.DriverIDs
	}

	vehicles, err := r.loadSelectedVehicles(ctx, cc.policy.ClientID, vehicleIDs)
	if err != nil {
		return nil, err
	}
	drivers, err := r.loadSelectedDrivers(ctx, cc.policy.ClientID, driverIDs)
	if err != nil {
		return nil, err
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ub := sqlbuilder.NewUpdateBuilder()
	ub.Update(tableName)
	ub.Set(
		ub.Assign("certificate_holder_id", holderID),
		ub.Assign("updated_at", time.Now()),
	)
	ub.Where(
		ub.Equal("id", id),
		ub.Equal("is_active", true),
	)
	query, args := ub.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update certificate", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update certificate: %w", err)
	}

	if err := r.clearSelections(ctx, tx, id); err != nil {
		return nil, err
	}
	if err := r.replaceSelections(ctx, tx, id, vehicleIDs, driverIDs); err != nil {
		return nil, err
	}

	// Re-render before the commit so the row and its document change as one
	// unit: a failed save rolls the relational writes back, a failed commit
	// removes the replaced file.
	if existing.DocumentPath != nil {
		existing.VehicleIDs = vehicleIDs
		existing.DriverIDs = driverIDs
		data := documents.CertificateData{
			Certificate: existing,
			Holder:      holder,
			Policy:      cc.policy,
			Client:      cc.client,
			Vehicles:    vehicles,
			Drivers:     drivers,
			IssuedAt:    time.Now(),
		}
		if err := r.store.Delete(*existing.DocumentPath); err != nil {
			r.logger.Error("failed to delete certificate document", zap.Error(err), zap.String("id", id))
		}
		if err := r.store.Save(*existing.DocumentPath, documents.RenderCertificate(data)); err != nil {
			r.logger.Error("failed to store certificate document", zap.Error(err), zap.String("id", id))
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		if existing.DocumentPath != nil {
			_ = r.store.Delete(*existing.DocumentPath)
		}
		return nil, err
	}

	r.logger.Info("updated certificate", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a certificate and removes its stored document
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "CertificateRepository.Delete")
	defer span.End()

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("is_active", false),
		sb.Assign("updated_at", time.Now()),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to delete certificate", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete certificate: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "certificate not found")
	}

	if existing.DocumentPath != nil {
		if err := r.store.Delete(*existing.DocumentPath); err != nil {
			r.logger.Error("failed to delete certificate document", zap.Error(err), zap.String("id", id))
		}
	}

	r.logger.Info("deleted certificate", zap.String("id", id))
	return nil
}

// OpenDocument returns the rendered document bytes for a certificate
func (r *Repository) OpenDocument(ctx context.Context, id string) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "CertificateRepository.OpenDocument")
	defer span.End()

	c, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.DocumentPath == nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "certificate document not found")
	}

	data, err := r.store.Open(*c.DocumentPath)
	if err != nil {
		r.logger.Error("failed to open certificate document", zap.Error(err), zap.String("id", id))
		return nil, echo.NewHTTPError(http.StatusNotFound, "certificate document not found")
	}
	return data, nil
}

// resolveContext walks master certificate -> policy -> client.
func (r *Repository) resolveContext(ctx context.Context, masterCertificateID string) (*certContext, error) {
	mb := sqlbuilder.NewSelectBuilder()
	mb.Select(masterColumns...)
	mb.From(mastersTableName)
	mb.Where(
		mb.Equal("id", masterCertificateID),
		mb.Equal("is_active", true),
	)
	query, args := mb.Build()

	var master models.MasterCertificate
	if err := r.db.GetContext(ctx, &master, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "master certificate not found")
		}
		r.logger.Error("failed to get master certificate", zap.Error(err), zap.String("id", masterCertificateID))
		return nil, fmt.Errorf("failed to get master certificate: %w", err)
	}

	pb := sqlbuilder.NewSelectBuilder()
	pb.Select("id", "client_id", "policy_number")
	pb.From("policies")
	pb.Where(
		pb.Equal("id", master.PolicyID),
		pb.Equal("is_active", true),
	)
	query, args = pb.Build()

	var policy models.Policy
	if err := r.db.GetContext(ctx, &policy, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "policy not found")
		}
		r.logger.Error("failed to get policy", zap.Error(err), zap.String("id", master.PolicyID))
		return nil, fmt.Errorf("failed to get policy: %w", err)
	}

	cb := sqlbuilder.NewSelectBuilder()
	cb.Select("id", "company_name")
	cb.From("clients")
	cb.Where(
		cb.Equal("id", policy.ClientID),
		cb.Equal("is_active", true),
	)
	query, args = cb.Build()

	var client models.Client
	if err := r.db.GetContext(ctx, &client, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "client not found")
		}
		r.logger.Error("failed to get client", zap.Error(err), zap.String("id", policy.ClientID))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	return &certContext{master: &master, policy: &policy, client: &client}, nil
}

func (r *Repository) loadHolder(ctx context.Context, id string) (*models.CertificateHolder, error) {
	holders := NewHolderRepository(r.db, r.logger)
	return holders.GetByID(ctx, id)
}

// loadSelectedVehicles loads the selected vehicles and rejects any that do
// not belong to the policy's client.
func (r *Repository) loadSelectedVehicles(ctx context.Context, clientID string, ids []string) ([]models.Vehicle, error) {
	if len(ids) == 0 {
		return []models.Vehicle{}, nil
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(
		"id", "client_id", "vin", "unit_number", "vehicle_type_id", "year",
		"make", "model", "gvw", "pd_amount", "deductible", "loss_payee_id",
		"created_at", "updated_at", "is_active",
	)
	sb.From("vehicles")
	sb.Where(
		sb.In("id", sqlbuilder.List(ids)),
		sb.Equal("client_id", clientID),
		sb.Equal("is_active", true),
	)
	sb.OrderBy("unit_number ASC")
	query, args := sb.Build()

	vehicles := []models.Vehicle{}
	if err := r.db.SelectContext(ctx, &vehicles, query, args...); err != nil {
		r.logger.Error("failed to load selected vehicles", zap.Error(err))
		return nil, fmt.Errorf("failed to load selected vehicles: %w", err)
	}
	if len(vehicles) != len(uniqueIDs(ids)) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Selected vehicle does not belong to the policy client.")
	}
	return vehicles, nil
}

// loadSelectedDrivers loads the selected drivers and rejects any that do not
// belong to the policy's client.
func (r *Repository) loadSelectedDrivers(ctx context.Context, clientID string, ids []string) ([]models.Driver, error) {
	if len(ids) == 0 {
		return []models.Driver{}, nil
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(
		"id", "client_id", "first_name", "middle_name", "last_name",
		"date_of_birth", "license_number", "license_state", "license_class_id",
		"issue_date", "hire_date", "violations", "accidents",
		"created_at", "updated_at", "is_active",
	)
	sb.From("drivers")
	sb.Where(
		sb.In("id", sqlbuilder.List(ids)),
		sb.Equal("client_id", clientID),
		sb.Equal("is_active", true),
	)
	sb.OrderBy("last_name ASC")
	query, args := sb.Build()

	drivers := []models.Driver{}
	if err := r.db.SelectContext(ctx, &drivers, query, args...); err != nil {
		r.logger.Error("failed to load selected drivers", zap.Error(err))
		return nil, fmt.Errorf("failed to load selected drivers: %w", err)
	}
	if len(drivers) != len(uniqueIDs(ids)) {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Selected driver does not belong to the policy client.")
	}
	return drivers, nil
}

func (r *Repository) clearSelections(ctx context.Context, tx database.Tx, certificateID string) error {
	for _, table := range []string{"certificate_vehicles", "certificate_drivers"} {
		db := sqlbuilder.NewDeleteBuilder()
		db.DeleteFrom(table)
		db.Where(db.Equal("certificate_id", certificateID))
		query, args := db.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to clear certificate selections", zap.Error(err), zap.String("table", table))
			return fmt.Errorf("failed to clear certificate selections: %w", err)
		}
	}
	return nil
}

func (r *Repository) replaceSelections(ctx context.Context, tx database.Tx, certificateID string, vehicleIDs, driverIDs []string) error {
	now := time.Now()

	for _, vehicleID := range uniqueIDs(vehicleIDs) {
		ib := database.NewInsertBuilder()
		ib.InsertInto("certificate_vehicles")
		ib.Cols("id", "certificate_id", "vehicle_id", "created_at")
		ib.Values(uuid.New().String(), certificateID, vehicleID, now)
		ib.OnConflictDoNothing()
		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to attach certificate vehicle", zap.Error(err), zap.String("vehicle_id", vehicleID))
			return fmt.Errorf("failed to attach certificate vehicle: %w", err)
		}
	}

	for _, driverID := range uniqueIDs(driverIDs) {
		ib := database.NewInsertBuilder()
		ib.InsertInto("certificate_drivers")
		ib.Cols("id", "certificate_id", "driver_id", "created_at")
		ib.Values(uuid.New().String(), certificateID, driverID, now)
		ib.OnConflictDoNothing()
		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to attach certificate driver", zap.Error(err), zap.String("driver_id", driverID))
			return fmt.Errorf("failed to attach certificate driver: %w", err)
		}
	}

	return nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
