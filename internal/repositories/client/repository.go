// Package client manages the client directory: clients plus their trade
// names, contacts, and address links.
package client

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
	"github.com/lowerzedo/ims-api/pkg/models"
	"github.com/lowerzedo/ims-api/pkg/tracing"
)

// SyncMode selects how nested collections are applied on a client write.
type SyncMode int

const (
	// SyncReplace clears existing children and recreates from the payload.
	// Used by POST and PUT.
	SyncReplace SyncMode = iota
	// SyncMerge merges payload items into existing children by id. Used by
	// PATCH.
	SyncMerge
)

// ClientRepository defines the interface for client operations
type ClientRepository interface {
	Create(ctx context.Context, actor string, req models.CreateClientRequest) (*models.Client, error)
	GetByID(ctx context.Context, id string) (*models.Client, error)
	List(ctx context.Context, params models.ListParams) ([]models.Client, int, error)
	Update(ctx context.Context, actor string, id string, mode SyncMode, req models.UpdateClientRequest) (*models.Client, error)
	Delete(ctx context.Context, id string) error
	GaragingAddresses(ctx context.Context, clientID string) ([]models.Address, error)
}

// Repository implements ClientRepository
type Repository struct {
	db     database.DB
	logger *zap.Logger
}

// NewRepository creates a new client repository
func NewRepository(db database.DB, logger *zap.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

const tableName = "clients"

var clientColumns = []string{
	"id", "company_name", "dot_number", "fein", "date_of_authority",
	"referral_source", "factoring_company", "created_by", "updated_by",
	"created_at", "updated_at", "is_active",
}

var orderFields = map[string]string{
	"company_name": "company_name",
	"dot_number":   "dot_number",
	"created_at":   "created_at",
}

// Create creates a client and its nested collections atomically
func (r *Repository) Create(ctx context.Context, actor string, req models.CreateClientRequest) (*models.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.Create")
	defer span.End()

	if err := validateChildren(req.DBAs, req.Contacts, req.Addresses); err != nil {
		return nil, err
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	id := uuid.New().String()

	sb := sqlbuilder.NewInsertBuilder()
	sb.InsertInto(tableName)
	sb.Cols(
		"id", "company_name", "dot_number", "fein", "date_of_authority",
		"referral_source", "factoring_company", "created_by", "updated_by",
		"created_at", "updated_at", "is_active",
	)
	sb.Values(
		id, req.CompanyName, req.DOTNumber, req.FEIN, req.DateOfAuthority,
		req.ReferralSource, req.FactoringCompany, actor, actor, now, now, true,
	)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to create client", zap.Error(err))
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	if err := r.syncDBAs(ctx, tx, id, req.DBAs, SyncReplace); err != nil {
		return nil, err
	}
	if err := r.syncContacts(ctx, tx, id, req.Contacts, SyncReplace); err != nil {
		return nil, err
	}
	if err := r.syncAddresses(ctx, tx, id, req.Addresses, SyncReplace); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("created client", zap.String("id", id), zap.String("company_name", req.CompanyName))
	return r.GetByID(ctx, id)
}

// GetByID gets a client with its nested collections
func (r *Repository) GetByID(ctx context.Context, id string) (*models.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.GetByID")
	defer span.End()

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(clientColumns...)
	sb.From(tableName)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()

	var c models.Client
	if err := r.db.GetContext(ctx, &c, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil, echo.NewHTTPError(http.StatusNotFound, "client not found")
		}
		r.logger.Error("failed to get client", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if err := r.loadChildren(ctx, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func (r *Repository) loadChildren(ctx context.Context, c *models.Client) error {
	dbaSb := sqlbuilder.NewSelectBuilder()
	dbaSb.Select("id", "client_id", "dba_name", "created_at", "updated_at", "is_active")
	dbaSb.From("client_dbas")
	dbaSb.Where(dbaSb.Equal("client_id", c.ID), dbaSb.Equal("is_active", true))
	dbaSb.OrderBy("dba_name ASC")
	query, args := dbaSb.Build()
	c.DBAs = []models.ClientDBA{}
	if err := r.db.SelectContext(ctx, &c.DBAs, query, args...); err != nil {
		r.logger.Error("failed to load client dbas", zap.Error(err), zap.String("client_id", c.ID))
		return fmt.Errorf("failed to load client dbas: %w", err)
	}

	contactSb := sqlbuilder.NewSelectBuilder()
	contactSb.Select("id", "client_id", "first_name", "last_name", "email", "phone_number", "nickname", "contact_type_id", "created_at", "updated_at", "is_active")
	contactSb.From("contacts")
	contactSb.Where(contactSb.Equal("client_id", c.ID), contactSb.Equal("is_active", true))
	contactSb.OrderBy("last_name ASC", "first_name ASC")
	query, args = contactSb.Build()
	c.Contacts = []models.Contact{}
	if err := r.db.SelectContext(ctx, &c.Contacts, query, args...); err != nil {
		r.logger.Error("failed to load client contacts", zap.Error(err), zap.String("client_id", c.ID))
		return fmt.Errorf("failed to load client contacts: %w", err)
	}

	linkSb := sqlbuilder.NewSelectBuilder()
	linkSb.Select("id", "client_id", "address_id", "address_type_id", "rating", "created_at", "updated_at", "is_active")
	linkSb.From("client_addresses")
	linkSb.Where(linkSb.Equal("client_id", c.ID), linkSb.Equal("is_active", true))
	linkSb.OrderBy("created_at ASC")
	query, args = linkSb.Build()
	c.Addresses = []models.ClientAddress{}
	if err := r.db.SelectContext(ctx, &c.Addresses, query, args...); err != nil {
		r.logger.Error("failed to load client addresses", zap.Error(err), zap.String("client_id", c.ID))
		return fmt.Errorf("failed to load client addresses: %w", err)
	}

	for i := range c.Addresses {
		addrSb := sqlbuilder.NewSelectBuilder()
		addrSb.Select("id", "street_address", "city", "state", "zip_code", "created_at", "updated_at", "is_active")
		addrSb.From("addresses")
		addrSb.Where(addrSb.Equal("id", c.Addresses[i].AddressID))
		query, args = addrSb.Build()
		var addr models.Address
		if err := r.db.GetContext(ctx, &addr, query, args...); err != nil {
			if err == sql.ErrNoRows {
				continue
			}
			r.logger.Error("failed to load linked address", zap.Error(err), zap.String("address_id", c.Addresses[i].AddressID))
			return fmt.Errorf("failed to load linked address: %w", err)
		}
		c.Addresses[i].Address = &addr
	}

	return nil
}

// List lists clients with pagination and search over company name, DOT number
// and FEIN
func (r *Repository) List(ctx context.Context, params models.ListParams) ([]models.Client, int, error) {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.List")
	defer span.End()

	params.Normalize()

	countSb := sqlbuilder.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From(tableName)
	if !params.IncludeInactive {
		countSb.Where(countSb.Equal("is_active", true))
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		countSb.Where(countSb.Or(
			countSb.ILike("company_name", pattern),
			countSb.ILike("dot_number", pattern),
			countSb.ILike("fein", pattern),
		))
	}
	countQuery, countArgs := countSb.Build()

	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.Error("failed to count clients", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to count clients: %w", err)
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Select(clientColumns...)
	sb.From(tableName)
	if !params.IncludeInactive {
		sb.Where(sb.Equal("is_active", true))
	}
	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		sb.Where(sb.Or(
			sb.ILike("company_name", pattern),
			sb.ILike("dot_number", pattern),
			sb.ILike("fein", pattern),
		))
	}
	sb.OrderBy(models.OrderClause(params.Ordering, orderFields, "company_name ASC"))
	sb.Limit(params.PageSize)
	sb.Offset(params.Offset())

	query, args := sb.Build()

	items := []models.Client{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list clients", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}

	return items, totalCount, nil
}

// Update updates a client and applies its nested collections atomically. The
// sync mode distinguishes PUT (replace) from PATCH (merge).
func (r *Repository) Update(ctx context.Context, actor string, id string, mode SyncMode, req models.UpdateClientRequest) (*models.Client, error) {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.Update")
	defer span.End()

	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if req.DBAs != nil || req.Contacts != nil || req.Addresses != nil {
		var dbas []models.DBAPayload
		var contacts []models.ContactPayload
		var addresses []models.ClientAddressPayload
		if req.DBAs != nil {
			dbas = *req.DBAs
		}
		if req.Contacts != nil {
			contacts = *req.Contacts
		}
		if req.Addresses != nil {
			addresses = *req.Addresses
		}
		if err := validateChildren(dbas, contacts, addresses); err != nil {
			return nil, err
		}
	}

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("updated_at", time.Now()),
		sb.Assign("updated_by", actor),
	)

	if req.CompanyName != nil {
		sb.SetMore(sb.Assign("company_name", *req.CompanyName))
	}
	if req.DOTNumber != nil {
		sb.SetMore(sb.Assign("dot_number", *req.DOTNumber))
	}
	if req.FEIN != nil {
		sb.SetMore(sb.Assign("fein", *req.FEIN))
	}
	if req.DateOfAuthority != nil {
		sb.SetMore(sb.Assign("date_of_authority", *req.DateOfAuthority))
	}
	if req.ReferralSource != nil {
		sb.SetMore(sb.Assign("referral_source", *req.ReferralSource))
	}
	if req.FactoringCompany != nil {
		sb.SetMore(sb.Assign("factoring_company", *req.FactoringCompany))
	}

	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update client", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	// An omitted collection (nil pointer) is left untouched.
	if req.DBAs != nil {
		if err := r.syncDBAs(ctx, tx, id, *req.DBAs, mode); err != nil {
			return nil, err
		}
	}
	if req.Contacts != nil {
		if err := r.syncContacts(ctx, tx, id, *req.Contacts, mode); err != nil {
			return nil, err
		}
	}
	if req.Addresses != nil {
		if err := r.syncAddresses(ctx, tx, id, *req.Addresses, mode); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	r.logger.Info("updated client", zap.String("id", id))
	return r.GetByID(ctx, id)
}

// Delete soft deletes a client and cascades the flag one level to its DBAs,
// contacts, and address links
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.Delete")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	now := time.Now()

	sb := sqlbuilder.NewUpdateBuilder()
	sb.Update(tableName)
	sb.Set(
		sb.Assign("is_active", false),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("id", id),
		sb.Equal("is_active", true),
	)

	query, args := sb.Build()
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to delete client", zap.Error(err), zap.String("id", id))
		return fmt.Errorf("failed to delete client: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "client not found")
	}

	for _, child := range []string{"client_dbas", "contacts", "client_addresses"} {
		childSb := sqlbuilder.NewUpdateBuilder()
		childSb.Update(child)
		childSb.Set(
			childSb.Assign("is_active", false),
			childSb.Assign("updated_at", now),
		)
		childSb.Where(
			childSb.Equal("client_id", id),
			childSb.Equal("is_active", true),
		)
		query, args := childSb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to cascade client delete", zap.Error(err), zap.String("table", child), zap.String("client_id", id))
			return fmt.Errorf("failed to cascade client delete: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.logger.Info("deleted client", zap.String("id", id))
	return nil
}

// GaragingAddresses returns the distinct garaging addresses used by the
// client's active vehicle assignments
func (r *Repository) GaragingAddresses(ctx context.Context, clientID string) ([]models.Address, error) {
	ctx, span := tracing.StartSpan(ctx, "ClientRepository.GaragingAddresses")
	defer span.End()

	if _, err := r.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	sb := sqlbuilder.NewSelectBuilder()
	sb.Distinct().Select("a.id", "a.street_address", "a.city", "a.state", "a.zip_code", "a.created_at", "a.updated_at", "a.is_active")
	sb.From("addresses a")
	sb.JoinWithOption(sqlbuilder.InnerJoin, "policy_vehicles pv", "pv.garaging_address_id = a.id")
	sb.JoinWithOption(sqlbuilder.InnerJoin, "vehicles v", "v.id = pv.vehicle_id")
	sb.Where(
		sb.Equal("v.client_id", clientID),
		sb.Equal("pv.is_active", true),
		sb.Equal("a.is_active", true),
	)
	sb.OrderBy("a.city ASC")

	query, args := sb.Build()

	items := []models.Address{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.Error("failed to list garaging addresses", zap.Error(err), zap.String("client_id", clientID))
		return nil, fmt.Errorf("failed to list garaging addresses: %w", err)
	}

	return items, nil
}
