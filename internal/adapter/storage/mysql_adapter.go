package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/rl1809/stockroom/internal/core/domain"
)

const mysqlDuplicateEntry = 1062

// name uses a binary collation so uniqueness is case-sensitive.
const createInventoryTable = `
	CREATE TABLE IF NOT EXISTS inventory (
		id         BIGINT AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(100) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL,
		quantity   INT NOT NULL,
		version    INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_inventory_name (name),
		CONSTRAINT chk_inventory_quantity CHECK (quantity >= 0)
	)`

type MySQLAdapter struct {
	db *sql.DB
}

// OpenMySQL opens a connection pool for dsn with the settings the adapter
// relies on.
func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createInventoryTable); err != nil {
		return fmt.Errorf("create inventory table: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Create(ctx context.Context, name string, quantity int) error {
	if err := domain.ValidateName(name); err != nil {
		return err
	}
	if err := domain.ValidateQuantity(quantity); err != nil {
		return err
	}

	_, err := m.db.ExecContext(ctx, `
		INSERT INTO inventory (name, quantity) VALUES (?, ?)`,
		name, quantity,
	)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return fmt.Errorf("create %q: %w", name, domain.ErrAlreadyExists)
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (m *MySQLAdapter) Delete(ctx context.Context, name string) error {
	result, err := m.db.ExecContext(ctx, `DELETE FROM inventory WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("delete %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

func (m *MySQLAdapter) SetQuantity(ctx context.Context, name string, quantity int) error {
	if err := domain.ValidateQuantity(quantity); err != nil {
		return err
	}

	result, err := m.db.ExecContext(ctx, `
		UPDATE inventory
		SET quantity = ?, version = version + 1
		WHERE name = ?`,
		quantity, name,
	)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}

	// version always changes, so 0 rows means the item is absent
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("set quantity %q: %w", name, domain.ErrNotFound)
	}
	return nil
}

// Adjust locks the row for the duration of the read-modify-write, so
// concurrent adjusts of the same item are applied one after another.
func (m *MySQLAdapter) Adjust(ctx context.Context, name string, delta int) (int, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, `
		SELECT quantity FROM inventory WHERE name = ? FOR UPDATE`, name,
	).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("adjust %q: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("lock item: %w", err)
	}

	next, err := domain.ApplyDelta(current, delta)
	if err != nil {
		return current, fmt.Errorf("adjust %q: %w", name, err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE inventory
		SET quantity = ?, version = version + 1
		WHERE name = ?`,
		next, name,
	); err != nil {
		return 0, fmt.Errorf("update quantity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

func (m *MySQLAdapter) List(ctx context.Context) ([]domain.Item, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT name, quantity FROM inventory`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		var item domain.Item
		if err := rows.Scan(&item.Name, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return items, nil
}

func (m *MySQLAdapter) Close() error {
	return m.db.Close()
}
