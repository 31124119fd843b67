package postgres

import (
	"context"
	"time"

	"github.com/huandu/go-sqlbuilder"
	"github.com/jhoicas/customer-dedup/internal/domain/dedup"
	"github.com/jhoicas/customer-dedup/internal/domain/entity"
	"github.com/jhoicas/customer-dedup/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// DefaultCustomersTable tabla de clientes de la capa de persistencia.
const DefaultCustomersTable = "customers"

var customerColumns = []string{
	"id::text",
	"COALESCE(company_name, '')",
	"COALESCE(telephone, '')",
	"COALESCE(afm, '')",
	"COALESCE(address, '')",
	"COALESCE(city, '')",
	"COALESCE(postal_code, '')",
	"COALESCE(email, '')",
	"COALESCE(contact_person, '')",
	"COALESCE(deleted, false)",
	"created_at",
	"updated_at",
}

// CustomerRepo lectura de candidatos sobre PostgreSQL (usable con pool o tx).
type CustomerRepo struct {
	q     Querier
	table string
}

// NewCustomerRepository construye el adaptador. table vacío usa DefaultCustomersTable.
func NewCustomerRepository(q Querier, table string) *CustomerRepo {
	if table == "" {
		table = DefaultCustomersTable
	}
	return &CustomerRepo{q: q, table: table}
}

// CandidateSQL arma la consulta de candidatos: predicados ILIKE / igualdad combinados con OR,
// sin registros borrados y con LIMIT. ok es false si q no tiene predicados.
func CandidateSQL(table string, q dedup.CandidateQuery) (sql string, args []interface{}, ok bool) {
	if q.Empty() {
		return "", nil, false
	}
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(customerColumns...).From(table)

	var or []string
	if p := q.NamePattern(); p != "" {
		or = append(or, sb.ILike("company_name", p))
	}
	for _, p := range q.PhonePatterns {
		or = append(or, sb.ILike("telephone", p))
	}
	for _, afm := range q.AFMEquals {
		or = append(or, sb.Equal("afm", afm))
	}

	sb.Where(sb.Or(or...), "COALESCE(deleted, false) = false")
	if q.Limit > 0 {
		sb.Limit(q.Limit)
	}
	sql, args = sb.Build()
	return sql, args, true
}

// SearchCandidates ejecuta la consulta amplia. Sin predicados devuelve vacío sin consultar.
func (r *CustomerRepo) SearchCandidates(ctx context.Context, q dedup.CandidateQuery) ([]*entity.Customer, error) {
	query, args, ok := CandidateSQL(r.table, q)
	if !ok {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapPgError("search customers", err)
	}
	defer rows.Close()

	var list []*entity.Customer
	for rows.Next() {
		var (
			c                entity.Customer
			created, updated *time.Time
		)
		if err := rows.Scan(&c.ID, &c.CompanyName, &c.Telephone, &c.AFM, &c.Address, &c.City,
			&c.PostalCode, &c.Email, &c.ContactPerson, &c.Deleted, &created, &updated); err != nil {
			return nil, wrapPgError("scan customer", err)
		}
		// timestamps NULL en registros migrados
		if created != nil {
			c.CreatedAt = *created
		}
		if updated != nil {
			c.UpdatedAt = *updated
		}
		list = append(list, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPgError("iterate customers", err)
	}
	return list, nil
}
