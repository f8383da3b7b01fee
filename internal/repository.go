package internal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/avdeev/ordertrack/internal/model"
)

const orderFields = "id, product_name, creation_date, status"

//go:embed migrations/*.sql
var migrations embed.FS

// orderColumns maps payload field names to columns. Filters and partial
// updates are built from this table only, never from raw client input.
var orderColumns = map[string]string{
	"id":           "id",
	"productName":  "product_name",
	"creationDate": "creation_date",
	"status":       "status",
}

type IRepository interface {
	Save(context.Context, model.Order) (int64, error)
	FindOneByID(context.Context, int64) (*model.Order, error)
	Find(context.Context, map[string]interface{}) ([]model.Order, error)
	UpdateOneByID(context.Context, int64, map[string]interface{}) (bool, error)
}

type Repository struct {
	Conn   *sql.DB
	Logger *zap.SugaredLogger
}

// NewRepository opens the shared connection pool and applies the embedded
// migrations. It must succeed before the service accepts traffic.
func NewRepository(connString string, logger *zap.SugaredLogger) (*Repository, error) {
	conn, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}

	if err = conn.Ping(); err != nil {
		return nil, err
	}

	goose.SetBaseFS(migrations)
	if err = goose.Up(conn, "migrations"); err != nil {
		return nil, err
	}

	return &Repository{Conn: conn, Logger: logger}, nil
}

func (r Repository) Close() error {
	return r.Conn.Close()
}

func (r Repository) Save(ctx context.Context, o model.Order) (int64, error) {
	var id int64
	row := r.Conn.QueryRowContext(ctx,
		"INSERT INTO orders (product_name, creation_date, status) VALUES ($1, $2, $3) RETURNING id",
		o.ProductName, o.CreationDate, o.Status)

	err := row.Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r Repository) FindOneByID(ctx context.Context, id int64) (*model.Order, error) {
	var o model.Order
	row := r.Conn.QueryRowContext(ctx, "SELECT "+orderFields+" FROM orders WHERE id = $1", id)

	err := row.Scan(&o.ID, &o.ProductName, &o.CreationDate, &o.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// Find applies the sanitized filter directly; an empty filter returns every
// order. Result ordering is whatever the store gives back.
func (r Repository) Find(ctx context.Context, filter map[string]interface{}) ([]model.Order, error) {
	query := "SELECT " + orderFields + " FROM orders"

	var (
		where []string
		args  []interface{}
	)
	for field, value := range filter {
		col, ok := orderColumns[field]
		if !ok {
			continue
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	rows, err := r.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		err = rows.Scan(&o.ID, &o.ProductName, &o.CreationDate, &o.Status)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateOneByID merges the sanitized fields into one record. The bool
// reports whether a record with this id existed.
func (r Repository) UpdateOneByID(ctx context.Context, id int64, fields map[string]interface{}) (bool, error) {
	var (
		set  []string
		args []interface{}
	)
	for field, value := range fields {
		col, ok := orderColumns[field]
		if !ok {
			continue
		}
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if len(set) == 0 {
		return false, ErrEmptyUpdate
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE orders SET %s WHERE id = $%d", strings.Join(set, ", "), len(args))

	res, err := r.Conn.ExecContext(ctx, query, args...)
	if err != nil {
		return false, err
	}

	matched, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return matched > 0, nil
}
