package postgres_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/customer-dedup/internal/domain/dedup"
	"github.com/jhoicas/customer-dedup/internal/infrastructure/postgres"
)

func TestCandidateSQL_SinPredicados_NoConsulta(t *testing.T) {
	_, _, ok := postgres.CandidateSQL("customers", dedup.CandidateQuery{Limit: 100})
	assert.False(t, ok)
}

func TestCandidateSQL_CombinaConOR(t *testing.T) {
	q := dedup.BuildCandidateQuery(dedup.SearchInput{
		CompanyName: "ΑΕΡΟ",
		Telephone:   "2310-55.12.34",
		AFM:         "094456789",
	}, 100)

	sql, args, ok := postgres.CandidateSQL("customers", q)
	require.True(t, ok)

	assert.Contains(t, sql, "FROM customers")
	assert.Contains(t, sql, "company_name ILIKE $1")
	assert.Contains(t, sql, "telephone ILIKE $2")
	assert.Contains(t, sql, " OR ")
	assert.Contains(t, sql, "afm = $")
	assert.Contains(t, sql, "COALESCE(deleted, false) = false")
	assert.Contains(t, sql, "LIMIT")

	assert.Equal(t, "%ΑΕΡΟ%", args[0])
	assert.Contains(t, args, "%2310-55.12.34%")
	assert.Contains(t, args, "%2%3%1%0%5%5%1%2%3%4%")
	assert.Contains(t, args, "2310%")
	assert.Contains(t, args, "094456789")
}

func TestCandidateSQL_TablaConfigurable(t *testing.T) {
	q := dedup.CandidateQuery{AFMEquals: []string{"094456789"}, Limit: 10}
	sql, args, ok := postgres.CandidateSQL("crm.clients", q)
	require.True(t, ok)

	assert.Contains(t, sql, "FROM crm.clients")
	assert.Contains(t, args, "094456789")
	assert.NotContains(t, sql, "ILIKE")
}
