package store

import (
	"context"
	"errors"
	"time"

	"shopcart-service/internal/apperror"
	"shopcart-service/internal/model"
	"shopcart-service/pkg/logger"
	"shopcart-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotPersisted is returned when deleting an item that was never saved
var ErrNotPersisted = errors.New("item has not been saved")

// ItemStore is the gorm-backed model.ItemRepository
type ItemStore struct {
	db      *gorm.DB
	log     *zap.Logger
	metrics *prometheus.Metrics
}

var _ model.ItemRepository = (*ItemStore)(nil)

// NewItemStore returns a store over db. metrics may be nil.
func NewItemStore(db *gorm.DB, log *zap.Logger, metrics *prometheus.Metrics) *ItemStore {
	if log == nil {
		log = zap.NewNop()
	}
	return &ItemStore{db: db, log: log, metrics: metrics}
}

// logger prefers the request-scoped logger carried by ctx
func (s *ItemStore) logger(ctx context.Context) *zap.Logger {
	return logger.FromStdContext(ctx, s.log)
}

// Save inserts the item when it has no ID yet, assigning one, and updates
// the row with its ID otherwise.
func (s *ItemStore) Save(ctx context.Context, item *model.Item) error {
	log := s.logger(ctx)

	if item.ID == 0 {
		defer s.metrics.TrackDBOperation("insert")(time.Now())
		log.Info("Creating item", zap.String("sku", item.SKU), zap.String("name", item.Name))

		if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
			log.Error("Failed to create item", zap.String("sku", item.SKU), zap.Error(err))
			return apperror.Internal("failed to create item", err)
		}
		return nil
	}

	defer s.metrics.TrackDBOperation("update")(time.Now())
	log.Info("Updating item", zap.Uint("item_id", item.ID), zap.String("sku", item.SKU))

	if err := s.db.WithContext(ctx).Save(item).Error; err != nil {
		log.Error("Failed to update item", zap.Uint("item_id", item.ID), zap.Error(err))
		return apperror.Internal("failed to update item", err)
	}
	return nil
}

// Delete removes the item's row
func (s *ItemStore) Delete(ctx context.Context, item *model.Item) error {
	if item.ID == 0 {
		return apperror.Internal("failed to delete item", ErrNotPersisted)
	}

	defer s.metrics.TrackDBOperation("delete")(time.Now())
	log := s.logger(ctx)
	log.Info("Deleting item", zap.Uint("item_id", item.ID))

	if err := s.db.WithContext(ctx).Delete(&model.Item{}, item.ID).Error; err != nil {
		log.Error("Failed to delete item", zap.Uint("item_id", item.ID), zap.Error(err))
		return apperror.Internal("failed to delete item", err)
	}
	return nil
}

// DeleteAll removes every item
func (s *ItemStore) DeleteAll(ctx context.Context) error {
	defer s.metrics.TrackDBOperation("delete_all")(time.Now())
	log := s.logger(ctx)

	result := s.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&model.Item{})
	if result.Error != nil {
		log.Error("Failed to delete all items", zap.Error(result.Error))
		return apperror.Internal("failed to delete all items", result.Error)
	}

	log.Info("Deleted all items", zap.Int64("rows_affected", result.RowsAffected))
	return nil
}

// Find returns the item with the given id, or nil when there is none
func (s *ItemStore) Find(ctx context.Context, id uint) (*model.Item, error) {
	defer s.metrics.TrackDBOperation("select")(time.Now())
	log := s.logger(ctx)
	log.Info("Processing lookup", zap.Uint("item_id", id))

	var item model.Item
	result := s.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&item)
	if result.Error != nil {
		log.Error("Failed to look up item", zap.Uint("item_id", id), zap.Error(result.Error))
		return nil, apperror.Internal("failed to look up item", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &item, nil
}

// FindOrFail is Find with absence reported as a not-found error
func (s *ItemStore) FindOrFail(ctx context.Context, id uint) (*model.Item, error) {
	item, err := s.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NotFound("Item with id '%d' was not found.", id)
	}
	return item, nil
}

// ListAll returns every item
func (s *ItemStore) ListAll(ctx context.Context) ([]model.Item, error) {
	s.logger(ctx).Info("Processing all items")
	return s.findWhere(ctx, nil)
}

// FindBySKU returns the items with the given SKU
func (s *ItemStore) FindBySKU(ctx context.Context, sku string) ([]model.Item, error) {
	s.logger(ctx).Info("Processing SKU query", zap.String("sku", sku))
	return s.findWhere(ctx, "sku = ?", sku)
}

// FindByName returns the items with the given name
func (s *ItemStore) FindByName(ctx context.Context, name string) ([]model.Item, error) {
	s.logger(ctx).Info("Processing name query", zap.String("name", name))
	return s.findWhere(ctx, "name = ?", name)
}

// FindByBrand returns the items with the given brand name
func (s *ItemStore) FindByBrand(ctx context.Context, brandName string) ([]model.Item, error) {
	s.logger(ctx).Info("Processing brand_name query", zap.String("brand_name", brandName))
	return s.findWhere(ctx, "brand_name = ?", brandName)
}

// FindByPrice returns the items priced at or below maxPrice
func (s *ItemStore) FindByPrice(ctx context.Context, maxPrice float64) ([]model.Item, error) {
	s.logger(ctx).Info("Processing price query", zap.Float64("max_price", maxPrice))
	return s.findWhere(ctx, "price <= ?", maxPrice)
}

// FindByAvailability returns the items whose availability equals isAvailable
func (s *ItemStore) FindByAvailability(ctx context.Context, isAvailable bool) ([]model.Item, error) {
	s.logger(ctx).Info("Processing available query", zap.Bool("is_available", isAvailable))
	return s.findWhere(ctx, "is_available = ?", isAvailable)
}

func (s *ItemStore) findWhere(ctx context.Context, query interface{}, args ...interface{}) ([]model.Item, error) {
	defer s.metrics.TrackDBOperation("select")(time.Now())

	tx := s.db.WithContext(ctx)
	if query != nil {
		tx = tx.Where(query, args...)
	}

	items := []model.Item{}
	if err := tx.Order("id").Find(&items).Error; err != nil {
		s.logger(ctx).Error("Failed to query items", zap.Error(err))
		return nil, apperror.Internal("failed to query items", err)
	}
	return items, nil
}
