package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/michael-schlueter/cc-ecommerce-api/internal/events"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/logging"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/models"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/service"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/transport"
	"github.com/michael-schlueter/cc-ecommerce-api/internal/util"
)

type ProductsHTTP struct {
	Products *service.ProductService
	Events   events.Publisher
}

func (h *ProductsHTTP) List(c echo.Context) error {
	var categoryID uint
	if raw := c.QueryParam("category"); raw != "" {
		id, err := util.ParseID(raw)
		if err != nil {
			return badRequest("Expected category to be a number")
		}
		categoryID = id
	}
	offset, limit := util.FromQuery(c.QueryParam("page"), c.QueryParam("size"))

	items, err := h.Products.List(c.Request().Context(), categoryID, offset, limit)
	if err != nil {
		return fail(c, "products_list", "list_products_failed", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *ProductsHTTP) Get(c echo.Context) error {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("Expected id to be a number")
	}
	p, err := h.Products.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, "products_get", "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *ProductsHTTP) Search(c echo.Context) error {
	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	from, size := util.Calculate(page, size)

	res, err := h.Products.Find(c.Request().Context(), c.QueryParam("q"), from, size)
	if err != nil {
		return fail(c, "products_search", "search_failed", err)
	}
	return c.JSON(http.StatusOK, transport.SearchResponse{Total: res.Total, Items: res.Items})
}

func (h *ProductsHTTP) Categories(c echo.Context) error {
	cats, err := h.Products.Categories(c.Request().Context())
	if err != nil {
		return fail(c, "categories_list", "list_categories_failed", err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (h *ProductsHTTP) Create(c echo.Context) error {
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "products_create", "invalid_body", err)
	}
	p, err := h.Products.Create(c.Request().Context(), productInput(req))
	if err != nil {
		return fail(c, "products_create", "create_product_failed", err)
	}
	h.publish(c, events.ProductCreated, p)
	logging.FromContext(c.Request().Context()).Info("product_created", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *ProductsHTTP) Update(c echo.Context) error {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("Expected id to be a number")
	}
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return fail(c, "products_update", "invalid_body", err)
	}
	p, err := h.Products.Update(c.Request().Context(), id, productInput(req))
	if err != nil {
		return fail(c, "products_update", "update_product_failed", err)
	}
	h.publish(c, events.ProductUpdated, p)
	return c.JSON(http.StatusOK, p)
}

func (h *ProductsHTTP) Delete(c echo.Context) error {
	id, err := util.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("Expected id to be a number")
	}
	if err := h.Products.Delete(c.Request().Context(), id); err != nil {
		return fail(c, "products_delete", "delete_product_failed", err)
	}
	h.publish(c, events.ProductDeleted, &models.Product{ID: id})
	return c.NoContent(http.StatusNoContent)
}

func (h *ProductsHTTP) publish(c echo.Context, typ string, p *models.Product) {
	publish(c, h.Events, events.TopicProducts, p.ID, events.ProductEvent{
		Type:      typ,
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		At:        time.Now().UTC(),
	})
}

func productInput(req transport.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		CategoryIDs: req.CategoryIDs,
	}
}
