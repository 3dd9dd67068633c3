package handler

import (
	"context"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"shopcart-service/internal/apperror"
	"shopcart-service/internal/middleware"
	"shopcart-service/internal/model"
	"shopcart-service/pkg/logger"
	"shopcart-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetItemRoute names the single-item route, used to build Location headers
const GetItemRoute = "get-item"

// ItemHandler serves the /shopcarts item resource
type ItemHandler struct {
	Store   model.ItemRepository
	Metrics *prometheus.Metrics
}

// NewItemHandler returns a handler over store. metrics may be nil.
func NewItemHandler(store model.ItemRepository, metrics *prometheus.Metrics) *ItemHandler {
	return &ItemHandler{Store: store, Metrics: metrics}
}

// Register mounts the item routes on g
func (h *ItemHandler) Register(g *echo.Group) {
	requireJSON := middleware.RequireContentType(echo.MIMEApplicationJSON)

	g.GET("/items", h.ListItems)
	g.GET("/items/:id", h.GetItem).Name = GetItemRoute
	g.POST("/items", h.CreateItem, requireJSON)
	g.PUT("/items/:id", h.UpdateItem, requireJSON)
	g.DELETE("/items/:id", h.DeleteItem)
	g.DELETE("/clear", h.ClearItems)
}

type itemFilter struct {
	param string
	query func(ctx context.Context, store model.ItemRepository, value string) ([]model.Item, error)
}

// itemFilters is in priority order: the first parameter present in the
// query string selects the filter and the rest are ignored.
var itemFilters = []itemFilter{
	{"sku", func(ctx context.Context, store model.ItemRepository, value string) ([]model.Item, error) {
		return store.FindBySKU(ctx, value)
	}},
	{"name", func(ctx context.Context, store model.ItemRepository, value string) ([]model.Item, error) {
		return store.FindByName(ctx, value)
	}},
	{"price", func(ctx context.Context, store model.ItemRepository, value string) ([]model.Item, error) {
		price, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(price) {
			return nil, apperror.Validation("Invalid query parameter", "price must be a number")
		}
		return store.FindByPrice(ctx, price)
	}},
	{"is_available", func(ctx context.Context, store model.ItemRepository, value string) ([]model.Item, error) {
		available, err := strconv.ParseBool(value)
		if err != nil {
			return nil, apperror.Validation("Invalid query parameter", "is_available must be a boolean")
		}
		return store.FindByAvailability(ctx, available)
	}},
	{"brand_name", func(ctx context.Context, store model.ItemRepository, value string) ([]model.Item, error) {
		return store.FindByBrand(ctx, value)
	}},
}

// ListItems returns all items, or those matching the highest-priority
// filter parameter present.
func (h *ItemHandler) ListItems(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()
	params := c.QueryParams()

	filter := "all"
	var items []model.Item
	var err error
	for _, f := range itemFilters {
		if _, ok := params[f.param]; !ok {
			continue
		}
		filter = f.param
		log.Info("Listing items with filter", zap.String("filter", f.param), zap.String("value", params.Get(f.param)))
		items, err = f.query(ctx, h.Store, params.Get(f.param))
		break
	}
	if filter == "all" {
		items, err = h.Store.ListAll(ctx)
	}
	if err != nil {
		return err
	}

	h.Metrics.RecordItemQuery(filter)
	log.Info("Items retrieved successfully", zap.String("filter", filter), zap.Int("count", len(items)))
	return c.JSON(http.StatusOK, model.SerializeAll(items))
}

// GetItem returns a single item
func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := itemID(c)
	if err != nil {
		return err
	}

	item, err := h.Store.FindOrFail(c.Request().Context(), id)
	if err != nil {
		return err
	}

	h.Metrics.RecordItemOperation("get")
	return c.JSON(http.StatusOK, item.Serialize())
}

// CreateItem creates an item from the JSON body
func (h *ItemHandler) CreateItem(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Processing JSON data")

	body, err := readBody(c)
	if err != nil {
		return err
	}

	item := &model.Item{}
	if err := item.Deserialize(body); err != nil {
		return err
	}
	if err := h.Store.Save(c.Request().Context(), item); err != nil {
		return err
	}

	h.Metrics.RecordItemOperation("create")
	log.Info("Item created successfully", zap.Uint("item_id", item.ID), zap.String("sku", item.SKU))

	c.Response().Header().Set(echo.HeaderLocation, itemURL(c, item.ID))
	return c.JSON(http.StatusCreated, item.Serialize())
}

// UpdateItem replaces the business fields of an existing item
func (h *ItemHandler) UpdateItem(c echo.Context) error {
	log := logger.FromContext(c)
	ctx := c.Request().Context()

	id, err := itemID(c)
	if err != nil {
		return err
	}

	item, err := h.Store.FindOrFail(ctx, id)
	if err != nil {
		return err
	}

	body, err := readBody(c)
	if err != nil {
		return err
	}
	if err := item.Deserialize(body); err != nil {
		return err
	}
	item.ID = id

	if err := h.Store.Save(ctx, item); err != nil {
		return err
	}

	h.Metrics.RecordItemOperation("update")
	log.Info("Item updated successfully", zap.Uint("item_id", id))
	return c.JSON(http.StatusOK, item.Serialize())
}

// DeleteItem removes an item. Deleting a missing item is not an error.
func (h *ItemHandler) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := itemID(c)
	if err != nil {
		return err
	}

	item, err := h.Store.Find(ctx, id)
	if err != nil {
		return err
	}
	if item != nil {
		if err := h.Store.Delete(ctx, item); err != nil {
			return err
		}
	}

	h.Metrics.RecordItemOperation("delete")
	return c.NoContent(http.StatusNoContent)
}

// ClearItems removes every item
func (h *ItemHandler) ClearItems(c echo.Context) error {
	if err := h.Store.DeleteAll(c.Request().Context()); err != nil {
		return err
	}

	h.Metrics.RecordItemOperation("clear")
	return c.NoContent(http.StatusNoContent)
}

// itemID parses the :id path parameter. Only unsigned integers name items,
// so anything else is reported as not found.
func itemID(c echo.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperror.NotFound("Item with id '%s' was not found.", raw)
	}
	return uint(id), nil
}

func readBody(c echo.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return nil, httpErr
		}
		return nil, apperror.Internal("failed to read request body", err)
	}
	return body, nil
}

// itemURL is the absolute URL of the item with the given id
func itemURL(c echo.Context, id uint) string {
	return c.Scheme() + "://" + c.Request().Host + c.Echo().Reverse(GetItemRoute, id)
}
