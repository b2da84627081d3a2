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
)

// validateChildren enforces the per-child required fields before any write
// happens, so a bad payload never leaves a half-applied sync.
func validateChildren(dbas []models.DBAPayload, contacts []models.ContactPayload, addresses []models.ClientAddressPayload) error {
	for _, d := range dbas {
		if d.DBAName == nil || *d.DBAName == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "dba_name is required for dbas.")
		}
	}
	for _, c := range contacts {
		if c.ContactTypeID == nil || *c.ContactTypeID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "contact_type_id is required for contacts.")
		}
	}
	for _, a := range addresses {
		if a.Address == nil && a.ID == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "address is required for addresses.")
		}
		if a.AddressTypeID == nil || *a.AddressTypeID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "address_type_id is required for addresses.")
		}
	}
	return nil
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func activeOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

func (r *Repository) syncDBAs(ctx context.Context, tx database.Tx, clientID string, items []models.DBAPayload, mode SyncMode) error {
	if mode == SyncReplace || len(items) == 0 {
		if err := r.clearChildren(ctx, tx, "client_dbas", clientID); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		mode = SyncReplace
	}

	existing := map[string]bool{}
	if mode == SyncMerge {
		var err error
		existing, err = r.existingIDs(ctx, tx, "client_dbas", clientID)
		if err != nil {
			return err
		}
	}

	now := time.Now()
	for _, item := range items {
		if mode == SyncMerge && item.ID != nil && existing[*item.ID] {
			ub := sqlbuilder.NewUpdateBuilder()
			ub.Update("client_dbas")
			ub.Set(
				ub.Assign("updated_at", now),
				ub.Assign("is_active", activeOrDefault(item.IsActive)),
			)
			if item.DBAName != nil {
				ub.SetMore(ub.Assign("dba_name", *item.DBAName))
			}
			ub.Where(ub.Equal("id", *item.ID), ub.Equal("client_id", clientID))
			query, args := ub.Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				r.logger.Error("failed to update client dba", zap.Error(err), zap.String("id", *item.ID))
				return fmt.Errorf("failed to update client dba: %w", err)
			}
			continue
		}

		ib := sqlbuilder.NewInsertBuilder()
		ib.InsertInto("client_dbas")
		ib.Cols("id", "client_id", "dba_name", "created_at", "updated_at", "is_active")
		ib.Values(uuid.New().String(), clientID, *item.DBAName, now, now, activeOrDefault(item.IsActive))
		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if database.IsUniqueViolation(err, "client_dbas_client_id_dba_name_key") {
				return echo.NewHTTPError(http.StatusBadRequest, "Client already has a DBA with this name.")
			}
			r.logger.Error("failed to create client dba", zap.Error(err), zap.String("client_id", clientID))
			return fmt.Errorf("failed to create client dba: %w", err)
		}
	}

	return nil
}

func (r *Repository) syncContacts(ctx context.Context, tx database.Tx, clientID string, items []models.ContactPayload, mode SyncMode) error {
	if mode == SyncReplace || len(items) == 0 {
		if err := r.clearChildren(ctx, tx, "contacts", clientID); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		mode = SyncReplace
	}

	existing := map[string]bool{}
	if mode == SyncMerge {
		var err error
		existing, err = r.existingIDs(ctx, tx, "contacts", clientID)
		if err != nil {
			return err
		}
	}

	now := time.Now()
	for _, item := range items {
		if mode == SyncMerge && item.ID != nil && existing[*item.ID] {
			ub := sqlbuilder.NewUpdateBuilder()
			ub.Update("contacts")
			ub.Set(
				ub.Assign("updated_at", now),
				ub.Assign("is_active", activeOrDefault(item.IsActive)),
			)
			if item.FirstName != nil {
				ub.SetMore(ub.Assign("first_name", *item.FirstName))
			}
			if item.LastName != nil {
				ub.SetMore(ub.Assign("last_name", *item.LastName))
			}
			if item.Email != nil {
				ub.SetMore(ub.Assign("email", *item.Email))
			}
			if item.PhoneNumber != nil {
				ub.SetMore(ub.Assign("phone_number", *item.PhoneNumber))
			}
			if item.Nickname != nil {
				ub.SetMore(ub.Assign("nickname", *item.Nickname))
			}
			if item.ContactTypeID != nil {
				ub.SetMore(ub.Assign("contact_type_id", *item.ContactTypeID))
			}
			ub.Where(ub.Equal("id", *item.ID), ub.Equal("client_id", clientID))
			query, args := ub.Build()
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				r.logger.Error("failed to update contact", zap.Error(err), zap.String("id", *item.ID))
				return fmt.Errorf("failed to update contact: %w", err)
			}
			continue
		}

		ib := sqlbuilder.NewInsertBuilder()
		ib.InsertInto("contacts")
		ib.Cols("id", "client_id", "first_name", "last_name", "email", "phone_number", "nickname", "contact_type_id", "created_at", "updated_at", "is_active")
		ib.Values(
			uuid.New().String(), clientID,
			strOrEmpty(item.FirstName), strOrEmpty(item.LastName), strOrEmpty(item.Email),
			strOrEmpty(item.PhoneNumber), strOrEmpty(item.Nickname), *item.ContactTypeID,
			now, now, activeOrDefault(item.IsActive),
		)
		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to create contact", zap.Error(err), zap.String("client_id", clientID))
			return fmt.Errorf("failed to create contact: %w", err)
		}
	}

	return nil
}

func (r *Repository) syncAddresses(ctx context.Context, tx database.Tx, clientID string, items []models.ClientAddressPayload, mode SyncMode) error {
	if mode == SyncReplace || len(items) == 0 {
		if err := r.clearAddressLinks(ctx, tx, clientID); err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		mode = SyncReplace
	}

	existing := map[string]string{}
	if mode == SyncMerge {
		var err error
		existing, err = r.existingAddressLinks(ctx, tx, clientID)
		if err != nil {
			return err
		}
	}

	now := time.Now()
	for _, item := range items {
		if mode == SyncMerge && item.ID != nil {
			if addressID, ok := existing[*item.ID]; ok {
				if err := r.updateAddressLink(ctx, tx, clientID, *item.ID, addressID, item, now); err != nil {
					return err
				}
				continue
			}
		}

		if item.Address == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "address is required for addresses.")
		}

		addr := &models.Address{
			Identity:      models.Identity{ID: uuid.New().String()},
			StreetAddress: strOrEmpty(item.Address.StreetAddress),
			City:          strOrEmpty(item.Address.City),
			State:         strOrEmpty(item.Address.State),
			ZipCode:       strOrEmpty(item.Address.ZipCode),
		}
		ib := sqlbuilder.NewInsertBuilder()
		ib.InsertInto("addresses")
		ib.Cols("id", "street_address", "city", "state", "zip_code", "created_at", "updated_at", "is_active")
		ib.Values(addr.ID, addr.StreetAddress, addr.City, addr.State, addr.ZipCode, now, now, true)
		query, args := ib.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to create linked address", zap.Error(err), zap.String("client_id", clientID))
			return fmt.Errorf("failed to create linked address: %w", err)
		}

		linkIb := sqlbuilder.NewInsertBuilder()
		linkIb.InsertInto("client_addresses")
		linkIb.Cols("id", "client_id", "address_id", "address_type_id", "rating", "created_at", "updated_at", "is_active")
		linkIb.Values(uuid.New().String(), clientID, addr.ID, *item.AddressTypeID, item.Rating, now, now, activeOrDefault(item.IsActive))
		query, args = linkIb.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if database.IsUniqueViolation(err, "client_addresses_client_address_type_key") {
				return echo.NewHTTPError(http.StatusBadRequest, "Client already has this address with this type.")
			}
			r.logger.Error("failed to create client address link", zap.Error(err), zap.String("client_id", clientID))
			return fmt.Errorf("failed to create client address link: %w", err)
		}
	}

	return nil
}

func (r *Repository) updateAddressLink(ctx context.Context, tx database.Tx, clientID, linkID, addressID string, item models.ClientAddressPayload, now time.Time) error {
	ub := sqlbuilder.NewUpdateBuilder()
	ub.Update("client_addresses")
	ub.Set(
		ub.Assign("updated_at", now),
		ub.Assign("is_active", activeOrDefault(item.IsActive)),
	)
	if item.AddressTypeID != nil {
		ub.SetMore(ub.Assign("address_type_id", *item.AddressTypeID))
	}
	if item.Rating != nil {
		ub.SetMore(ub.Assign("rating", *item.Rating))
	}
	ub.Where(ub.Equal("id", linkID), ub.Equal("client_id", clientID))
	query, args := ub.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to update client address link", zap.Error(err), zap.String("id", linkID))
		return fmt.Errorf("failed to update client address link: %w", err)
	}

	if item.Address != nil {
		ab := sqlbuilder.NewUpdateBuilder()
		ab.Update("addresses")
		ab.Set(ab.Assign("updated_at", now))
		if item.Address.StreetAddress != nil {
			ab.SetMore(ab.Assign("street_address", *item.Address.StreetAddress))
		}
		if item.Address.City != nil {
			ab.SetMore(ab.Assign("city", *item.Address.City))
		}
		if item.Address.State != nil {
			ab.SetMore(ab.Assign("state", *item.Address.State))
		}
		if item.Address.ZipCode != nil {
			ab.SetMore(ab.Assign("zip_code", *item.Address.ZipCode))
		}
		ab.Where(ab.Equal("id", addressID))
		query, args := ab.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			r.logger.Error("failed to update linked address", zap.Error(err), zap.String("address_id", addressID))
			return fmt.Errorf("failed to update linked address: %w", err)
		}
	}

	// Deactivating a link garbage-collects the address when nothing else
	// references it.
	if item.IsActive != nil && !*item.IsActive {
		if err := r.collectOrphanAddress(ctx, tx, addressID); err != nil {
			return err
		}
	}

	return nil
}

// clearChildren deactivates every active child row for the client.
func (r *Repository) clearChildren(ctx context.Context, tx database.Tx, table, clientID string) error {
	ub := sqlbuilder.NewUpdateBuilder()
	ub.Update(table)
	ub.Set(
		ub.Assign("is_active", false),
		ub.Assign("updated_at", time.Now()),
	)
	ub.Where(ub.Equal("client_id", clientID), ub.Equal("is_active", true))
	query, args := ub.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to clear client children", zap.Error(err), zap.String("table", table), zap.String("client_id", clientID))
		return fmt.Errorf("failed to clear client children: %w", err)
	}
	return nil
}

// clearAddressLinks deactivates every address link and garbage-collects the
// addresses that become orphaned.
func (r *Repository) clearAddressLinks(ctx context.Context, tx database.Tx, clientID string) error {
	links, err := r.existingAddressLinks(ctx, tx, clientID)
	if err != nil {
		return err
	}
	if err := r.clearChildren(ctx, tx, "client_addresses", clientID); err != nil {
		return err
	}
	for _, addressID := range links {
		if err := r.collectOrphanAddress(ctx, tx, addressID); err != nil {
			return err
		}
	}
	return nil
}

// collectOrphanAddress deactivates the address when no active link references
// it anymore.
func (r *Repository) collectOrphanAddress(ctx context.Context, tx database.Tx, addressID string) error {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("client_addresses")
	sb.Where(sb.Equal("address_id", addressID), sb.Equal("is_active", true))
	query, args := sb.Build()

	var refs int
	if err := tx.GetContext(ctx, &refs, query, args...); err != nil {
		r.logger.Error("failed to count address references", zap.Error(err), zap.String("address_id", addressID))
		return fmt.Errorf("failed to count address references: %w", err)
	}
	if refs > 0 {
		return nil
	}

	ub := sqlbuilder.NewUpdateBuilder()
	ub.Update("addresses")
	ub.Set(
		ub.Assign("is_active", false),
		ub.Assign("updated_at", time.Now()),
	)
	ub.Where(ub.Equal("id", addressID), ub.Equal("is_active", true))
	query, args = ub.Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("failed to collect orphan address", zap.Error(err), zap.String("address_id", addressID))
		return fmt.Errorf("failed to collect orphan address: %w", err)
	}
	return nil
}

func (r *Repository) existingIDs(ctx context.Context, tx database.Tx, table, clientID string) (map[string]bool, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id")
	sb.From(table)
	sb.Where(sb.Equal("client_id", clientID))
	query, args := sb.Build()

	var ids []string
	if err := tx.SelectContext(ctx, &ids, query, args...); err != nil && err != sql.ErrNoRows {
		r.logger.Error("failed to load child ids", zap.Error(err), zap.String("table", table), zap.String("client_id", clientID))
		return nil, fmt.Errorf("failed to load child ids: %w", err)
	}

	result := make(map[string]bool, len(ids))
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

func (r *Repository) existingAddressLinks(ctx context.Context, tx database.Tx, clientID string) (map[string]string, error) {
	sb := sqlbuilder.NewSelectBuilder()
	sb.Select("id", "address_id")
	sb.From("client_addresses")
	sb.Where(sb.Equal("client_id", clientID))
	query, args := sb.Build()

	var rows []struct {
		ID        string `db:"id"`
		AddressID string `db:"address_id"`
	}
	if err := tx.SelectContext(ctx, &rows, query, args...); err != nil && err != sql.ErrNoRows {
		r.logger.Error("failed to load address links", zap.Error(err), zap.String("client_id", clientID))
		return nil, fmt.Errorf("failed to load address links: %w", err)
	}

	result := make(map[string]string, len(rows))
	for _, row := range rows {
		result[row.ID] = row.AddressID
	}
	return result, nil
}
