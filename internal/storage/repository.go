package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/glabrego/carta-cli/internal/menu"
)

// ErrNotFound is returned when nothing is cached for the requested business.
var ErrNotFound = errors.New("not cached")

type Repository struct {
	db *sql.DB
}

func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repository) Init(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS businesses (
  id TEXT PRIMARY KEY,
  slug TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  address TEXT,
  menu_url TEXT,
  background_color TEXT,
  foreground_color TEXT,
  filter_by_tags TEXT NOT NULL DEFAULT '[]',
  category_order TEXT NOT NULL DEFAULT '[]',
  allow_grid_view INTEGER,
  default_view TEXT,
  fetched_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  business_id TEXT NOT NULL,
  position INTEGER NOT NULL,
  name TEXT NOT NULL,
  description TEXT,
  price REAL NOT NULL DEFAULT 0,
  category TEXT,
  content_url TEXT,
  content_type TEXT,
  show INTEGER NOT NULL DEFAULT 1,
  tags TEXT NOT NULL DEFAULT '[]',
  thumbnail TEXT,
  duration_ms INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_products_business_position ON products(business_id, position);
`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// CheckWritable fails fast when the database file cannot be written.
func (r *Repository) CheckWritable(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `PRAGMA user_version = 1`); err != nil {
		return fmt.Errorf("database is not writable: %w", err)
	}
	return nil
}

func (r *Repository) SaveBusiness(ctx context.Context, b menu.Business) error {
	filterByTags, err := encodeList(b.FilterByTags)
	if err != nil {
		return fmt.Errorf("encode filter tags: %w", err)
	}
	categoryOrder, err := encodeList(b.CategoryOrder)
	if err != nil {
		return fmt.Errorf("encode category order: %w", err)
	}
	var allowGrid sql.NullBool
	if b.AllowGridView != nil {
		allowGrid = sql.NullBool{Bool: *b.AllowGridView, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO businesses (id, slug, name, address, menu_url, background_color, foreground_color,
  filter_by_tags, category_order, allow_grid_view, default_view, fetched_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  slug=excluded.slug,
  name=excluded.name,
  address=excluded.address,
  menu_url=excluded.menu_url,
  background_color=excluded.background_color,
  foreground_color=excluded.foreground_color,
  filter_by_tags=excluded.filter_by_tags,
  category_order=excluded.category_order,
  allow_grid_view=excluded.allow_grid_view,
  default_view=excluded.default_view,
  fetched_at=excluded.fetched_at
`,
		b.ID, b.Slug, b.Name, b.Address, b.MenuURL, b.BackgroundColor, b.ForegroundColor,
		filterByTags, categoryOrder, allowGrid, b.DefaultView,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save business %s: %w", b.Slug, err)
	}
	return nil
}

// LoadBusiness returns the cached business and when it was fetched.
func (r *Repository) LoadBusiness(ctx context.Context, slug string) (menu.Business, time.Time, error) {
	var (
		b                           menu.Business
		address, menuURL            sql.NullString
		background, foreground      sql.NullString
		defaultView                 sql.NullString
		filterByTags, categoryOrder string
		allowGrid                   sql.NullBool
		fetchedAt                   string
	)
	err := r.db.QueryRowContext(ctx, `
SELECT id, slug, name, address, menu_url, background_color, foreground_color,
  filter_by_tags, category_order, allow_grid_view, default_view, fetched_at
FROM businesses
WHERE slug = ?
`, slug).Scan(
		&b.ID, &b.Slug, &b.Name, &address, &menuURL, &background, &foreground,
		&filterByTags, &categoryOrder, &allowGrid, &defaultView, &fetchedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return menu.Business{}, time.Time{}, fmt.Errorf("business %s: %w", slug, ErrNotFound)
	}
	if err != nil {
		return menu.Business{}, time.Time{}, fmt.Errorf("query business: %w", err)
	}

	b.Address = address.String
	b.MenuURL = menuURL.String
	b.BackgroundColor = background.String
	b.ForegroundColor = foreground.String
	b.DefaultView = defaultView.String
	if allowGrid.Valid {
		allow := allowGrid.Bool
		b.AllowGridView = &allow
	}
	if b.FilterByTags, err = decodeList(filterByTags); err != nil {
		return menu.Business{}, time.Time{}, fmt.Errorf("decode filter tags: %w", err)
	}
	if b.CategoryOrder, err = decodeList(categoryOrder); err != nil {
		return menu.Business{}, time.Time{}, fmt.Errorf("decode category order: %w", err)
	}
	fetched, err := time.Parse(time.RFC3339Nano, fetchedAt)
	if err != nil {
		return menu.Business{}, time.Time{}, fmt.Errorf("parse business fetched_at %q: %w", fetchedAt, err)
	}
	return b, fetched, nil
}

// SaveProducts replaces the cached products of a business. Position keeps
// the API order.
func (r *Repository) SaveProducts(ctx context.Context, businessID string, products []menu.Product) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE business_id = ?`, businessID); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO products (id, business_id, position, name, description, price, category,
  content_url, content_type, show, tags, thumbnail, duration_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  business_id=excluded.business_id,
  position=excluded.position,
  name=excluded.name,
  description=excluded.description,
  price=excluded.price,
  category=excluded.category,
  content_url=excluded.content_url,
  content_type=excluded.content_type,
  show=excluded.show,
  tags=excluded.tags,
  thumbnail=excluded.thumbnail,
  duration_ms=excluded.duration_ms
`)
	if err != nil {
		return fmt.Errorf("prepare save statement: %w", err)
	}
	defer stmt.Close()

	for i, p := range products {
		tags, err := encodeList(p.Tags)
		if err != nil {
			return fmt.Errorf("encode tags for %s: %w", p.ID, err)
		}
		_, err = stmt.ExecContext(
			ctx,
			p.ID,
			businessID,
			i,
			p.Name,
			p.Description,
			p.Price,
			p.Category,
			p.ContentURL,
			p.ContentType,
			p.Show,
			tags,
			p.Thumbnail,
			p.DurationMS,
		)
		if err != nil {
			return fmt.Errorf("save product %s: %w", p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *Repository) ListProducts(ctx context.Context, businessID string) ([]menu.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, business_id, name, description, price, category, content_url, content_type,
  show, tags, thumbnail, duration_ms
FROM products
WHERE business_id = ?
ORDER BY position ASC
`, businessID)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := make([]menu.Product, 0, 32)
	for rows.Next() {
		var (
			p                                  menu.Product
			description, category              sql.NullString
			contentURL, contentType, thumbnail sql.NullString
			tags                               string
		)
		if err := rows.Scan(
			&p.ID,
			&p.BusinessID,
			&p.Name,
			&description,
			&p.Price,
			&category,
			&contentURL,
			&contentType,
			&p.Show,
			&tags,
			&thumbnail,
			&p.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		p.Description = description.String
		p.Category = category.String
		p.ContentURL = contentURL.String
		p.ContentType = contentType.String
		p.Thumbnail = thumbnail.String
		if p.Tags, err = decodeList(tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", p.ID, err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return products, nil
}

func encodeList(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeList(raw string) ([]string, error) {
	if raw == "" || raw == "[]" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
