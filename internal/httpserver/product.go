package httpserver

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/sweetcrust/internal/apperr"
	"github.com/Skotchmaster/sweetcrust/internal/logging"
	authmw "github.com/Skotchmaster/sweetcrust/internal/middleware/auth"
	"github.com/Skotchmaster/sweetcrust/internal/service"
	"github.com/Skotchmaster/sweetcrust/internal/storage"
	"github.com/Skotchmaster/sweetcrust/internal/transport"
	"github.com/Skotchmaster/sweetcrust/internal/util"
)

type CatalogHTTP struct {
	Svc     *service.CatalogService
	Storage storage.Storage
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "list_products")

	items, err := h.Svc.List(ctx)
	if err != nil {
		return fail(l, "list_products_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search_products")

	items, err := h.Svc.Search(ctx, c.QueryParam("q"), util.ParsePage(c.QueryParam("page"), c.QueryParam("size")))
	if err != nil {
		return fail(l, "search_products_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "create_product")

	in, err := h.productInput(c)
	if err != nil {
		return fail(l, "create_product_failed", err)
	}

	p, err := h.Svc.Create(ctx, authmw.IdentityFrom(c), in)
	if err != nil {
		h.discardImage(ctx, in.ImageURL)
		return fail(l, "create_product_failed", err)
	}

	l.Info("create_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update_product")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "update_product_failed", err)
	}
	in, err := h.productInput(c)
	if err != nil {
		return fail(l, "update_product_failed", err)
	}

	p, err := h.Svc.Update(ctx, authmw.IdentityFrom(c), id, in)
	if err != nil {
		h.discardImage(ctx, in.ImageURL)
		return fail(l, "update_product_failed", err)
	}

	l.Info("update_product_success", "product_id", p.ID)
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete_product")

	id, err := parseID(c)
	if err != nil {
		return fail(l, "delete_product_failed", err)
	}

	if _, err := h.Svc.Delete(ctx, authmw.IdentityFrom(c), id); err != nil {
		return fail(l, "delete_product_failed", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted successfully"})
}

// productInput reads either a JSON body or a multipart form with an optional
// "image" file. The image is stored before the product is written.
func (h *CatalogHTTP) productInput(c echo.Context) (service.ProductInput, error) {
	var in service.ProductInput

	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		var req transport.ProductRequest
		if err := bindAndValidate(c, &req); err != nil {
			return in, err
		}
		in.Name = req.Name
		in.Description = req.Description
		if req.Price != nil {
			in.Price = &req.Price.Decimal
		}
		return in, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		return in, apperr.Validation("invalid multipart form")
	}
	if v, ok := formValue(form.Value, "name"); ok {
		in.Name = &v
	}
	if v, ok := formValue(form.Value, "description"); ok {
		in.Description = &v
	}
	if v, ok := formValue(form.Value, "price"); ok {
		var d transport.Decimal
		if err := d.Parse(v); err != nil {
			return in, apperr.Validation("price must be a number")
		}
		in.Price = &d.Decimal
	}

	if files := form.File["image"]; len(files) > 0 {
		if h.Storage == nil {
			return in, apperr.Validation("image uploads are disabled")
		}
		ref, err := storage.SaveImage(c.Request().Context(), h.Storage, files[0])
		if err != nil {
			return in, err
		}
		in.ImageURL = ref
	}
	return in, nil
}

func (h *CatalogHTTP) discardImage(ctx context.Context, ref string) {
	if ref == "" || h.Storage == nil {
		return
	}
	if err := h.Storage.Delete(context.WithoutCancel(ctx), ref); err != nil {
		logging.FromContext(ctx).Warn("image_delete_failed", "ref", ref, "error", err)
	}
}

func formValue(values map[string][]string, key string) (string, bool) {
	v, ok := values[key]
	if !ok || len(v) == 0 {
		return "", false
	}
	return v[0], true
}
