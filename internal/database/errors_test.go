package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	uniqueErr := &pq.Error{Code: "23505", Constraint: "clients_company_name_key"}

	t.Run("should match a unique violation on the named constraint", func(t *testing.T) {
		assert.True(t, IsUniqueViolation(uniqueErr, "clients_company_name_key"))
	})

	t.Run("should match any constraint when none is named", func(t *testing.T) {
		assert.True(t, IsUniqueViolation(uniqueErr, ""))
	})

	t.Run("should not match a different constraint", func(t *testing.T) {
		assert.False(t, IsUniqueViolation(uniqueErr, "policies_policy_number_key"))
	})

	t.Run("should unwrap wrapped errors", func(t *testing.T) {
		wrapped := fmt.Errorf("failed to create client: %w", uniqueErr)
		assert.True(t, IsUniqueViolation(wrapped, "clients_company_name_key"))
	})

	t.Run("should not match other postgres errors", func(t *testing.T) {
		fkErr := &pq.Error{Code: "23503", Constraint: "clients_company_name_key"}
		assert.False(t, IsUniqueViolation(fkErr, "clients_company_name_key"))
	})

	t.Run("should not match plain errors", func(t *testing.T) {
		assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
		assert.False(t, IsUniqueViolation(nil, ""))
	})
}
