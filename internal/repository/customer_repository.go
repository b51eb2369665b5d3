package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	sq "github.com/Masterminds/squirrel"

	"github.com/unclebandit/customer-service/internal/model"
)

// CustomerRepositoryInterface defines methods used by service
type CustomerRepositoryInterface interface {
	FindByFirstName(ctx context.Context, firstName string) (*model.Customer, error)
	FindByID(ctx context.Context, id int64) (*model.Customer, error)
	FindPage(ctx context.Context, pageNumber, pageSize int) ([]model.Customer, int64, error)
	Save(ctx context.Context, c *model.Customer) error
	DeleteByID(ctx context.Context, id int64) error
}

// CustomerRepository is the postgres implementation
type CustomerRepository struct {
	DB *sql.DB
}

var (
	psql            = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	customerColumns = []string{"id", "first_name", "last_name", "email", "phone_number"}
)

func scanCustomer(row sq.RowScanner, c *model.Customer) error {
	return row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.PhoneNumber)
}

// FindByFirstName returns nil when no customer has that exact first name.
func (r *CustomerRepository) FindByFirstName(ctx context.Context, firstName string) (*model.Customer, error) {
	query, args, err := psql.Select(customerColumns...).
		From("customers").
		Where(sq.Eq{"first_name": firstName}).
		OrderBy("id ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	return r.findOne(ctx, query, args...)
}

// FindByID returns nil when the id does not exist.
func (r *CustomerRepository) FindByID(ctx context.Context, id int64) (*model.Customer, error) {
	query, args, err := psql.Select(customerColumns...).
		From("customers").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	return r.findOne(ctx, query, args...)
}

func (r *CustomerRepository) findOne(ctx context.Context, query string, args ...any) (*model.Customer, error) {
	var c model.Customer
	if err := scanCustomer(r.DB.QueryRowContext(ctx, query, args...), &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scanning customer: %w", err)
	}
	return &c, nil
}

// FindPage returns the zero-based page ordered by id, plus the total row count.
func (r *CustomerRepository) FindPage(ctx context.Context, pageNumber, pageSize int) ([]model.Customer, int64, error) {
	if pageNumber < 0 || pageSize < 1 {
		return nil, 0, fmt.Errorf("invalid page %d of size %d", pageNumber, pageSize)
	}

	customers := []model.Customer{}
	// an offset past MaxInt64 cannot hold rows
	if int64(pageNumber) <= math.MaxInt64/int64(pageSize) {
		page, err := r.selectPage(ctx, uint64(pageSize), uint64(pageNumber)*uint64(pageSize))
		if err != nil {
			return nil, 0, err
		}
		customers = page
	}

	countQuery, countArgs, err := psql.Select("COUNT(*)").From("customers").ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building count query: %w", err)
	}
	var total int64
	if err := r.DB.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting customers: %w", err)
	}

	return customers, total, nil
}

func (r *CustomerRepository) selectPage(ctx context.Context, limit, offset uint64) ([]model.Customer, error) {
	query, args, err := psql.Select(customerColumns...).
		From("customers").
		OrderBy("id ASC").
		Limit(limit).
		Offset(offset).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		var c model.Customer
		if err := scanCustomer(rows, &c); err != nil {
			return nil, fmt.Errorf("scanning customer: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return customers, nil
}

// Save inserts c when it has no id yet, otherwise updates the row with c.ID.
func (r *CustomerRepository) Save(ctx context.Context, c *model.Customer) error {
	if c.ID == 0 {
		return r.insert(ctx, c)
	}
	return r.update(ctx, c)
}

func (r *CustomerRepository) insert(ctx context.Context, c *model.Customer) error {
	query, args, err := psql.Insert("customers").
		Columns("first_name", "last_name", "email", "phone_number").
		Values(c.FirstName, c.LastName, c.Email, c.PhoneNumber).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("building insert query: %w", err)
	}
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&c.ID); err != nil {
		return fmt.Errorf("inserting customer: %w", err)
	}
	return nil
}

func (r *CustomerRepository) update(ctx context.Context, c *model.Customer) error {
	query, args, err := psql.Update("customers").
		Set("first_name", c.FirstName).
		Set("last_name", c.LastName).
		Set("email", c.Email).
		Set("phone_number", c.PhoneNumber).
		Where(sq.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update query: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating customer %d: %w", c.ID, err)
	}
	return requireAffected(res)
}

func (r *CustomerRepository) DeleteByID(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("customers").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting customer %d: %w", id, err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)
