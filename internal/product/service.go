package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parthobardhan/inventory-app-sub002/internal/storage"
)

// imageURLTTL is how long the signed URL stored with a fresh image link stays
// valid.
const imageURLTTL = 24 * time.Hour

// ErrURLUnavailable is returned when the signed-URL issuer cannot produce a
// URL right now. The condition is transient; callers should retry.
var ErrURLUnavailable = errors.New("signed url unavailable")

// Repo is the persistence surface the service depends on. *Repository
// satisfies it; tests substitute fakes.
type Repo interface {
	Create(ctx context.Context, p *Product) (*Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, search string) ([]*Product, error)
	Update(ctx context.Context, id string, in *UpdateInput) (*Product, error)
	Delete(ctx context.Context, id string) error

	AddImage(ctx context.Context, img *Image) (*Image, error)
	GetImage(ctx context.Context, productID, imageID string) (*Image, error)
	ImagesByProduct(ctx context.Context, productID string) ([]Image, error)
	DeleteImage(ctx context.Context, productID, imageID string) error
	UpdateImageURL(ctx context.Context, imageID, url string, expiresAt time.Time) (*Image, error)
}

// CreateInput holds the fields accepted when creating a product.
type CreateInput struct {
	Name        string   `json:"name"`
	SKU         string   `json:"sku"`
	Type        string   `json:"type"`
	Description *string  `json:"description"`
	Caption     *string  `json:"caption"`
	Price       float64  `json:"price"`
	Cost        *float64 `json:"cost"`
	Quantity    int      `json:"quantity"`
}

// UpdateInput holds optional fields for a partial product update.
type UpdateInput struct {
	Name        *string  `json:"name"`
	SKU         *string  `json:"sku"`
	Type        *string  `json:"type"`
	Description *string  `json:"description"`
	Caption     *string  `json:"caption"`
	Price       *float64 `json:"price"`
	Cost        *float64 `json:"cost"`
	Quantity    *int     `json:"quantity"`
}

// Service contains business logic for products and their stored images.
type Service struct {
	repo  Repo
	store storage.ObjectStore
}

// NewService creates a new product Service.
func NewService(repo Repo, store storage.ObjectStore) *Service {
	return &Service{repo: repo, store: store}
}

// Create registers a new product, generating a SKU when none is supplied.
func (s *Service) Create(ctx context.Context, in *CreateInput) (*Product, error) {
	sku := in.SKU
	if sku == "" {
		sku = generateSKU(in.Type)
	}
	return s.repo.Create(ctx, &Product{
		Name:        in.Name,
		SKU:         sku,
		Type:        in.Type,
		Description: in.Description,
		Caption:     in.Caption,
		Price:       in.Price,
		Cost:        in.Cost,
		Quantity:    in.Quantity,
	})
}

// Get returns a product with its images.
func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	images, err := s.repo.ImagesByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Images = images
	return p, nil
}

// List returns products matching the optional search term.
func (s *Service) List(ctx context.Context, search string) ([]*Product, error) {
	return s.repo.List(ctx, search)
}

// Update applies a partial update to a product.
func (s *Service) Update(ctx context.Context, id string, in *UpdateInput) (*Product, error) {
	return s.repo.Update(ctx, id, in)
}

// Delete removes a product and best-effort deletes its stored objects. The
// database rows go first so no reference can outlive its record; object
// deletion is idempotent and safe to repeat if it fails here.
func (s *Service) Delete(ctx context.Context, id string) error {
	images, err := s.repo.ImagesByProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	for _, img := range images {
		if !s.store.Delete(ctx, img.Key) {
			log.Printf("product: could not delete object %q for removed product %s", img.Key, id)
		}
	}
	return nil
}

// AttachImage uploads a file stream and links the result to the product.
// If linking fails after a successful transfer, the just-uploaded object is
// deleted so no orphan remains in the store.
func (s *Service) AttachImage(ctx context.Context, productID string, body io.Reader, originalName, contentType string) (*Image, error) {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return nil, err
	}

	result, err := s.store.Upload(ctx, body, originalName, contentType)
	if err != nil {
		return nil, err
	}

	img := &Image{
		ProductID:    productID,
		Bucket:       result.Bucket,
		Key:          result.Key,
		Size:         result.Size,
		ContentType:  result.ContentType,
		OriginalName: result.OriginalName,
	}
	if result.SignedURL != "" {
		expires := time.Now().Add(imageURLTTL)
		img.SignedURL = &result.SignedURL
		img.URLExpiresAt = &expires
	}
	if result.ETag != "" {
		img.ETag = &result.ETag
	}

	linked, err := s.repo.AddImage(ctx, img)
	if err != nil {
		if !s.store.Delete(ctx, result.Key) {
			log.Printf("product: orphaned object %q after failed image link", result.Key)
		}
		return nil, fmt.Errorf("link image to product %s: %w", productID, err)
	}
	return linked, nil
}

// RemoveImage deletes the image record and then the stored object. Object
// deletion is idempotent, so a failure here leaves at worst an unreferenced
// object that a later sweep can remove.
func (s *Service) RemoveImage(ctx context.Context, productID, imageID string) error {
	img, err := s.repo.GetImage(ctx, productID, imageID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteImage(ctx, productID, imageID); err != nil {
		return err
	}
	if !s.store.Delete(ctx, img.Key) {
		log.Printf("product: could not delete object %q for removed image %s", img.Key, imageID)
	}
	return nil
}

// RefreshImageURL issues a new signed URL for an existing image and persists
// it. An empty URL from the issuer means signing is temporarily unavailable.
func (s *Service) RefreshImageURL(ctx context.Context, productID, imageID string) (*Image, error) {
	img, err := s.repo.GetImage(ctx, productID, imageID)
	if err != nil {
		return nil, err
	}

	url := s.store.SignedURL(ctx, img.Key, imageURLTTL)
	if url == "" {
		return nil, fmt.Errorf("refresh url for %q: %w", img.Key, ErrURLUnavailable)
	}

	return s.repo.UpdateImageURL(ctx, imageID, url, time.Now().Add(imageURLTTL))
}

// generateSKU derives a short unique SKU like "BC-1A2B3C" from the product type.
func generateSKU(productType string) string {
	prefix := ""
	for _, part := range strings.Split(productType, "-") {
		if part != "" {
			prefix += strings.ToUpper(part[:1])
		}
	}
	if prefix == "" {
		prefix = "PR"
	}
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return prefix + "-" + id
}
