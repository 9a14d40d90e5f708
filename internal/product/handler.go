package product

import (
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/parthobardhan/inventory-app-sub002/internal/response"
	"github.com/parthobardhan/inventory-app-sub002/internal/storage"
)

// Handler holds HTTP handlers for product endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new product Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Create godoc
//
//	@Summary		Create product
//	@Description	Add a new product to the inventory. SKU is generated when omitted.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateInput	true	"Product fields"
//	@Success		201		{object}	response.Envelope{data=Product}
//	@Failure		400		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/products [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if in.Name == "" || in.Type == "" {
		response.BadRequest(w, "name and type are required")
		return
	}
	if in.Price < 0 || in.Quantity < 0 {
		response.BadRequest(w, "price and quantity must be non-negative")
		return
	}

	p, err := h.svc.Create(r.Context(), &in)
	if errors.Is(err, ErrDuplicateSKU) {
		response.Conflict(w, "sku already exists")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, p)
}

// List godoc
//
//	@Summary		List products
//	@Description	List products, optionally filtered by a search term matching name, SKU, or description.
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			search	query		string	false	"Search term"
//	@Success		200		{object}	response.Envelope{data=[]Product}
//	@Router			/products [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		response.InternalError(w)
		return
	}
	if products == nil {
		products = []*Product{}
	}
	response.OK(w, products)
}

// Get godoc
//
//	@Summary		Get product
//	@Description	Return one product with its image records.
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Product ID"
//	@Success		200	{object}	response.Envelope{data=Product}
//	@Failure		404	{object}	response.Envelope
//	@Router			/products/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "product not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

// Update godoc
//
//	@Summary		Update product
//	@Description	Apply a partial update to a product.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string		true	"Product ID"
//	@Param			request	body		UpdateInput	true	"Fields to change"
//	@Success		200		{object}	response.Envelope{data=Product}
//	@Failure		404		{object}	response.Envelope
//	@Failure		409		{object}	response.Envelope
//	@Router			/products/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in UpdateInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), &in)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "product not found")
		return
	}
	if errors.Is(err, ErrDuplicateSKU) {
		response.Conflict(w, "sku already exists")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, p)
}

// Delete godoc
//
//	@Summary		Delete product
//	@Description	Remove a product; its stored images are deleted best-effort.
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Product ID"
//	@Success		200	{object}	response.Envelope
//	@Failure		404	{object}	response.Envelope
//	@Router			/products/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(w, "product not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]bool{"deleted": true})
}

// UploadImage godoc
//
//	@Summary		Upload product image
//	@Description	Stream an image (jpeg/png/gif/webp, max 10 MiB) to object storage and link it to the product.
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Product ID"
//	@Param			image	formData	file	true	"Image file"
//	@Success		201		{object}	response.Envelope{data=Image}
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Failure		413		{object}	response.Envelope
//	@Failure		415		{object}	response.Envelope
//	@Failure		503		{object}	response.Envelope
//	@Router			/products/{id}/images [post]
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	// A declared oversize is rejected before a single body byte is read, so
	// no remote call is ever attempted for it. Chunked requests without a
	// Content-Length are cut off mid-stream by MaxBytesReader below.
	if r.ContentLength > storage.MaxUploadBytes {
		response.PayloadTooLarge(w, "image exceeds the 10 MiB limit")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, storage.MaxUploadBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		response.BadRequest(w, "multipart form-data required")
		return
	}

	part, err := nextFilePart(mr, "image")
	if err != nil {
		response.BadRequest(w, `file field "image" is required`)
		return
	}
	defer part.Close()

	contentType := part.Header.Get("Content-Type")
	if !storage.IsAllowedImageType(contentType) {
		response.UnsupportedMedia(w, "only jpeg, png, gif, and webp images are accepted")
		return
	}

	img, err := h.svc.AttachImage(r.Context(), chi.URLParam(r, "id"), part, part.FileName(), contentType)
	if err != nil {
		writeUploadError(w, err)
		return
	}
	response.Created(w, img)
}

// DeleteImage godoc
//
//	@Summary		Delete product image
//	@Description	Remove an image record and its stored object. Object deletion is idempotent.
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Product ID"
//	@Param			imageID	path		string	true	"Image ID"
//	@Success		200		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Router			/products/{id}/images/{imageID} [delete]
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	err := h.svc.RemoveImage(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "imageID"))
	if errors.Is(err, ErrImageNotFound) {
		response.NotFound(w, "image not found")
		return
	}
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]bool{"deleted": true})
}

// RefreshImageURL godoc
//
//	@Summary		Refresh image URL
//	@Description	Issue a fresh 24h signed URL for an existing image.
//	@Tags			products
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Product ID"
//	@Param			imageID	path		string	true	"Image ID"
//	@Success		200		{object}	response.Envelope{data=Image}
//	@Failure		404		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Failure		503		{object}	response.Envelope
//	@Router			/products/{id}/images/{imageID}/refresh [post]
func (h *Handler) RefreshImageURL(w http.ResponseWriter, r *http.Request) {
	img, err := h.svc.RefreshImageURL(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "imageID"))
	switch {
	case errors.Is(err, ErrImageNotFound):
		response.NotFound(w, "image not found")
	case errors.Is(err, ErrURLUnavailable):
		// Only a failed issuance is retryable; a persistence error is not.
		response.ServiceUnavailable(w, "signed url unavailable, retry later")
	case err != nil:
		response.InternalError(w)
	default:
		response.OK(w, img)
	}
}

// nextFilePart advances the multipart reader to the named file field.
func nextFilePart(mr *multipart.Reader, field string) (*multipart.Part, error) {
	for {
		part, err := mr.NextPart()
		if err != nil {
			return nil, err
		}
		if part.FormName() == field && part.FileName() != "" {
			return part, nil
		}
		_ = part.Close()
	}
}

// writeUploadError maps storage-layer failures onto HTTP semantics: not
// ready is retryable, an oversized body is the client's fault, a failed
// transfer is an upstream error. A failed upload never looks like success.
func writeUploadError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	var upErr *storage.UploadError

	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "product not found")
	case errors.Is(err, storage.ErrNotInitialized):
		response.ServiceUnavailable(w, "object storage not ready, retry shortly")
	case errors.As(err, &maxErr):
		response.PayloadTooLarge(w, "image exceeds the 10 MiB limit")
	case errors.As(err, &upErr):
		response.Error(w, http.StatusBadGateway, "image upload failed")
	default:
		response.InternalError(w)
	}
}
