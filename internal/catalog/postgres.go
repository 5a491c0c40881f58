package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository persists the catalog for deployments that share it
// between installs instead of a per-machine JSON file.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Connect opens a pgx pool against the DSN and verifies connectivity.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

func (r *PostgresRepository) BulkCreate(ctx context.Context, products []Product) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"products"},
		[]string{"id", "name", "brand", "category", "price_per_day", "image"},
		pgx.CopyFromSlice(len(products), func(i int) ([]interface{}, error) {
			p := products[i]
			return []interface{}{p.ID, p.Name, p.Brand, p.Category, p.PricePerDay, p.Image}, nil
		}),
	)
	return err
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) error {
	query := `
        INSERT INTO products (id, name, brand, category, price_per_day, image)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            brand = EXCLUDED.brand,
            category = EXCLUDED.category,
            price_per_day = EXCLUDED.price_per_day,
            image = EXCLUDED.image
    `
	_, err := r.pool.Exec(ctx, query, p.ID, p.Name, p.Brand, p.Category, p.PricePerDay, p.Image)
	return err
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	query := `
        SELECT id, name, brand, category, price_per_day, COALESCE(image, '')
        FROM products WHERE id = $1
    `
	var p Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Brand, &p.Category, &p.PricePerDay, &p.Image,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]Product, error) {
	query := `
        SELECT id, name, brand, category, price_per_day, COALESCE(image, '')
        FROM products ORDER BY id
    `
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Brand, &p.Category, &p.PricePerDay, &p.Image); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// LoadInto fills a Store from the database, replacing nothing on failure.
func (r *PostgresRepository) LoadInto(ctx context.Context, store *Store) error {
	products, err := r.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog from database: %w", err)
	}
	for _, p := range products {
		store.Put(p)
	}
	return nil
}
