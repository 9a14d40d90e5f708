// Package product manages the textile inventory catalog and product images.
package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Product represents one inventory item (bed cover, cushion cover, saree, towel).
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SKU         string    `json:"sku"`
	Type        string    `json:"type"`
	Description *string   `json:"description,omitempty"`
	Caption     *string   `json:"caption,omitempty"`
	Price       float64   `json:"price"`
	Cost        *float64  `json:"cost,omitempty"`
	Quantity    int       `json:"quantity"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Images      []Image   `json:"images,omitempty"`
}

// Image is the persisted record linking a product to a stored object.
type Image struct {
	ID           string     `json:"id"`
	ProductID    string     `json:"productId"`
	Bucket       string     `json:"bucket"`
	Key          string     `json:"key"`
	SignedURL    *string    `json:"signedUrl,omitempty"`
	URLExpiresAt *time.Time `json:"urlExpiresAt,omitempty"`
	ETag         *string    `json:"etag,omitempty"`
	Size         int64      `json:"size"`
	ContentType  string     `json:"contentType"`
	OriginalName string     `json:"originalName"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = errors.New("product not found")

// ErrImageNotFound is returned when an image record does not exist.
var ErrImageNotFound = errors.New("product image not found")

// ErrDuplicateSKU is returned when a SKU is already taken.
var ErrDuplicateSKU = errors.New("sku already exists")

// Repository handles all product database operations.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new Repository with the given connection pool.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const productColumns = `id, name, sku, type, description, caption, price, cost, quantity, created_at, updated_at`

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	err := row.Scan(&p.ID, &p.Name, &p.SKU, &p.Type, &p.Description, &p.Caption,
		&p.Price, &p.Cost, &p.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new product and returns the created record.
func (r *Repository) Create(ctx context.Context, p *Product) (*Product, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO products (name, sku, type, description, caption, price, cost, quantity)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+productColumns,
		p.Name, p.SKU, p.Type, p.Description, p.Caption, p.Price, p.Cost, p.Quantity,
	)
	created, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

// GetByID fetches a product by its UUID, without images.
func (r *Repository) GetByID(ctx context.Context, id string) (*Product, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// List returns products, optionally filtered by a case-insensitive match on
// name, SKU, or description.
func (r *Repository) List(ctx context.Context, search string) ([]*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE name ILIKE $1 OR sku ILIKE $1 OR description ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var out []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update applies non-nil fields to an existing product.
func (r *Repository) Update(ctx context.Context, id string, in *UpdateInput) (*Product, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE products SET
			name        = COALESCE($2, name),
			sku         = COALESCE($3, sku),
			type        = COALESCE($4, type),
			description = COALESCE($5, description),
			caption     = COALESCE($6, caption),
			price       = COALESCE($7, price),
			cost        = COALESCE($8, cost),
			quantity    = COALESCE($9, quantity),
			updated_at  = NOW()
		 WHERE id = $1
		 RETURNING `+productColumns,
		id, in.Name, in.SKU, in.Type, in.Description, in.Caption, in.Price, in.Cost, in.Quantity,
	)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateSKU
		}
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// Delete removes a product; image rows cascade.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const imageColumns = `id, product_id, bucket, s3_key, signed_url, url_expires_at, etag, size_bytes, content_type, original_name, created_at`

func scanImage(row pgx.Row) (*Image, error) {
	img := &Image{}
	err := row.Scan(&img.ID, &img.ProductID, &img.Bucket, &img.Key, &img.SignedURL,
		&img.URLExpiresAt, &img.ETag, &img.Size, &img.ContentType, &img.OriginalName, &img.CreatedAt)
	if err != nil {
		return nil, err
	}
	return img, nil
}

// AddImage links an uploaded object to a product.
func (r *Repository) AddImage(ctx context.Context, img *Image) (*Image, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO product_images (product_id, bucket, s3_key, signed_url, url_expires_at, etag, size_bytes, content_type, original_name)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+imageColumns,
		img.ProductID, img.Bucket, img.Key, img.SignedURL, img.URLExpiresAt,
		img.ETag, img.Size, img.ContentType, img.OriginalName,
	)
	created, err := scanImage(row)
	if err != nil {
		return nil, fmt.Errorf("add product image: %w", err)
	}
	return created, nil
}

// GetImage fetches one image belonging to the given product.
func (r *Repository) GetImage(ctx context.Context, productID, imageID string) (*Image, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+imageColumns+` FROM product_images WHERE id = $1 AND product_id = $2`,
		imageID, productID)
	img, err := scanImage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product image: %w", err)
	}
	return img, nil
}

// ImagesByProduct returns all images linked to a product.
func (r *Repository) ImagesByProduct(ctx context.Context, productID string) ([]Image, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+imageColumns+` FROM product_images WHERE product_id = $1 ORDER BY created_at`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	var out []Image
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		out = append(out, *img)
	}
	return out, rows.Err()
}

// DeleteImage removes an image record.
func (r *Repository) DeleteImage(ctx context.Context, productID, imageID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM product_images WHERE id = $1 AND product_id = $2`,
		imageID, productID)
	if err != nil {
		return fmt.Errorf("delete product image: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrImageNotFound
	}
	return nil
}

// UpdateImageURL stores a freshly issued signed URL and its expiry.
func (r *Repository) UpdateImageURL(ctx context.Context, imageID, url string, expiresAt time.Time) (*Image, error) {
	row := r.db.QueryRow(ctx,
		`UPDATE product_images SET signed_url = $2, url_expires_at = $3
		 WHERE id = $1
		 RETURNING `+imageColumns,
		imageID, url, expiresAt)
	img, err := scanImage(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrImageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update image url: %w", err)
	}
	return img, nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
