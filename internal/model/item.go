package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"shopcart-service/internal/apperror"
)

// MaxStringLength is the column width of every string field of an Item
const MaxStringLength = 63

// Item represents a line item in the shopping cart
type Item struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	SKU         string  `gorm:"column:sku;type:varchar(63)"`
	Name        string  `gorm:"type:varchar(63)"`
	BrandName   string  `gorm:"type:varchar(63)"`
	Price       float64 `gorm:"type:double precision"`
	Count       int
	IsAvailable bool
	Link        string `gorm:"type:varchar(63)"`
}

// TableName pins the table name regardless of gorm naming strategy
func (Item) TableName() string {
	return "items"
}

// NewItem builds an unsaved Item
func NewItem(sku, name, brandName string, price float64, count int, isAvailable bool, link string) *Item {
	return &Item{
		SKU:         sku,
		Name:        name,
		BrandName:   brandName,
		Price:       price,
		Count:       count,
		IsAvailable: isAvailable,
		Link:        link,
	}
}

func (i *Item) String() string {
	return fmt.Sprintf("<Item %q>", i.Name)
}

// ItemResponse is the wire representation of an Item. ID is null until the
// item has been saved.
type ItemResponse struct {
	ID          *uint   `json:"id"`
	SKU         string  `json:"sku"`
	Name        string  `json:"name"`
	BrandName   string  `json:"brand_name"`
	Price       float64 `json:"price"`
	Count       int     `json:"count"`
	IsAvailable bool    `json:"is_available"`
	Link        string  `json:"link"`
}

// Serialize converts the item to its wire representation
func (i *Item) Serialize() ItemResponse {
	resp := ItemResponse{
		SKU:         i.SKU,
		Name:        i.Name,
		BrandName:   i.BrandName,
		Price:       i.Price,
		Count:       i.Count,
		IsAvailable: i.IsAvailable,
		Link:        i.Link,
	}
	if i.ID != 0 {
		id := i.ID
		resp.ID = &id
	}
	return resp
}

// MarshalJSON encodes the item in its wire representation
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.Serialize())
}

// SerializeAll converts a list of items to their wire representation
func SerializeAll(items []Item) []ItemResponse {
	results := make([]ItemResponse, 0, len(items))
	for idx := range items {
		results = append(results, items[idx].Serialize())
	}
	return results
}

type fieldDecoder struct {
	key    string
	decode func(raw json.RawMessage, dst *Item) string
}

// itemFields lists the required business fields in wire order
var itemFields = []fieldDecoder{
	{"sku", stringField(func(i *Item, v string) { i.SKU = v })},
	{"name", stringField(func(i *Item, v string) { i.Name = v })},
	{"brand_name", stringField(func(i *Item, v string) { i.BrandName = v })},
	{"price", func(raw json.RawMessage, dst *Item) string {
		if err := json.Unmarshal(raw, &dst.Price); err != nil {
			return "must be a number"
		}
		return ""
	}},
	{"count", func(raw json.RawMessage, dst *Item) string {
		if err := json.Unmarshal(raw, &dst.Count); err != nil {
			return "must be an integer"
		}
		return ""
	}},
	{"is_available", func(raw json.RawMessage, dst *Item) string {
		if err := json.Unmarshal(raw, &dst.IsAvailable); err != nil {
			return "must be a boolean"
		}
		return ""
	}},
	{"link", stringField(func(i *Item, v string) { i.Link = v })},
}

func stringField(set func(*Item, string)) func(json.RawMessage, *Item) string {
	return func(raw json.RawMessage, dst *Item) string {
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return "must be a string"
		}
		if utf8.RuneCountInString(v) > MaxStringLength {
			return fmt.Sprintf("must be at most %d characters", MaxStringLength)
		}
		set(dst, v)
		return ""
	}
}

// Deserialize replaces the business fields of the item with those in the
// JSON object data. Every field is required; on failure the item is left
// untouched and the returned validation error names each bad field. The ID
// is never read from data.
func (i *Item) Deserialize(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return apperror.Validation("Invalid item: body of request contained bad or no data")
	}

	var decoded Item
	var problems []string
	for _, f := range itemFields {
		raw, ok := fields[f.key]
		if !ok {
			problems = append(problems, f.key+" is missing")
			continue
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			problems = append(problems, f.key+" must not be null")
			continue
		}
		if problem := f.decode(raw, &decoded); problem != "" {
			problems = append(problems, f.key+" "+problem)
		}
	}
	if len(problems) > 0 {
		return apperror.Validation("Invalid item", problems...)
	}

	decoded.ID = i.ID
	*i = decoded
	return nil
}

// ItemRepository persists and queries items
type ItemRepository interface {
	Save(ctx context.Context, item *Item) error
	Delete(ctx context.Context, item *Item) error
	DeleteAll(ctx context.Context) error
	Find(ctx context.Context, id uint) (*Item, error)
	FindOrFail(ctx context.Context, id uint) (*Item, error)
	ListAll(ctx context.Context) ([]Item, error)
	FindBySKU(ctx context.Context, sku string) ([]Item, error)
	FindByName(ctx context.Context, name string) ([]Item, error)
	FindByBrand(ctx context.Context, brandName string) ([]Item, error)
	FindByPrice(ctx context.Context, maxPrice float64) ([]Item, error)
	FindByAvailability(ctx context.Context, isAvailable bool) ([]Item, error)
}
