package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shashiranjanraj/billmate/app/requests"
	"github.com/shashiranjanraj/billmate/app/services"
	"github.com/shashiranjanraj/billmate/pkg/bind"
	"github.com/shashiranjanraj/billmate/pkg/response"
)

// maxImageUploadBytes caps product image uploads at 8 MB.
const maxImageUploadBytes = 8 << 20

type ProductController struct {
	service *services.ProductService
}

func NewProductController() *ProductController {
	return &ProductController{service: services.NewProductService()}
}

func urlID(r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// Index lists active products with search, category filter, and pagination.
func (c *ProductController) Index(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	products, pagination, err := c.service.List(term, category, page, limit)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Paginated(w, products, pagination)
}

func (c *ProductController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	product, err := c.service.Get(id)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Success(w, product)
}

func (c *ProductController) Store(w http.ResponseWriter, r *http.Request) {
	var req requests.ProductRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.service.Create(req)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Created(w, product)
}

func (c *ProductController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req requests.ProductRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.service.Update(id, req)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Success(w, product)
}

// Destroy deletes a product. Products with sale history are retired instead
// so past receipts stay resolvable; the response says which happened.
func (c *ProductController) Destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	err := c.service.Delete(id)
	switch {
	case err == nil:
		response.Success(w, map[string]string{"result": "deleted"})
	case errors.Is(err, services.ErrHasSaleHistory):
		response.Success(w, map[string]string{"result": "retired"})
	default:
		renderError(w, err)
	}
}

// IncrementStock records a delivery or return.
func (c *ProductController) IncrementStock(w http.ResponseWriter, r *http.Request) {
	c.adjust(w, r, +1)
}

// DecrementStock records a write-off or correction. Fails loudly rather
// than driving stock negative.
func (c *ProductController) DecrementStock(w http.ResponseWriter, r *http.Request) {
	c.adjust(w, r, -1)
}

func (c *ProductController) adjust(w http.ResponseWriter, r *http.Request, sign int) {
	id, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req requests.StockAdjustRequest
	if errs, err := bind.JSON(r, &req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	product, err := c.service.AdjustStock(id, sign*req.Quantity, req.Reason)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Success(w, product)
}

// LowStock lists products at or below the configured threshold.
func (c *ProductController) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := c.service.LowStock()
	if err != nil {
		renderError(w, err)
		return
	}
	response.Success(w, products)
}

// UploadImage accepts a multipart "image" file and attaches it to the
// product via the storage manager (local disk or S3).
func (c *ProductController) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		response.Error(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "The image file is required")
		return
	}
	defer file.Close()

	product, err := c.service.AttachImage(id, header.Filename, file)
	if err != nil {
		renderError(w, err)
		return
	}
	response.Success(w, product)
}
