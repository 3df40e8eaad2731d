package database

import (
	"context"
	"errors"
	"fmt"

	"defaultreset/internal/models"

	"github.com/jinzhu/gorm"
)

// ErrProductNotFound is returned by Get for an unknown product id
var ErrProductNotFound = errors.New("product not found")

// Catalog queries and updates products and their attributes
type Catalog struct {
	db *gorm.DB
}

// NewCatalog creates a catalog on top of db
func NewCatalog(db *gorm.DB) *Catalog {
	return &Catalog{db: db}
}

// ListAll returns every product
func (c *Catalog) ListAll(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var products []models.Product
	if err := c.db.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// ListResettable returns every product that does not carry the
// do-not-reset marker. The exclusion happens in SQL.
func (c *Catalog) ListResettable(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var products []models.Product
	err := c.db.
		Where(`NOT EXISTS (
			SELECT 1 FROM product_attributes pa
			WHERE pa.product_id = products.id
			AND pa.name = ?
			AND pa.deleted_at IS NULL)`, models.AttrDoNotResetQuantity).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("list resettable products: %w", err)
	}
	return products, nil
}

// AttributeValue returns the first value of the named attribute on a product.
// The boolean is false when the product has no such attribute.
func (c *Catalog) AttributeValue(ctx context.Context, productID uint, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var attr models.ProductAttribute
	err := c.db.Where("product_id = ? AND name = ?", productID, name).
		Order("id").
		First(&attr).Error
	if gorm.IsRecordNotFoundError(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get attribute %s of product %d: %w", name, productID, err)
	}
	return attr.Value, true, nil
}

// SetStock overwrites the stock quantity of a product
func (c *Catalog) SetStock(ctx context.Context, productID uint, quantity int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", quantity).Error
	if err != nil {
		return fmt.Errorf("set stock of product %d: %w", productID, err)
	}
	return nil
}

// Get returns a single product with its attributes
func (c *Catalog) Get(ctx context.Context, productID uint) (*models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var product models.Product
	err := c.db.Preload("Attributes").First(&product, productID).Error
	if gorm.IsRecordNotFoundError(err) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	return &product, nil
}

// Import creates the given products, or updates stock and attributes of
// existing ones matched by SKU, in one transaction
func (c *Catalog) Import(ctx context.Context, products []models.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := c.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin import: %w", tx.Error)
	}

	for i := range products {
		if err := importProduct(tx, &products[i]); err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

func importProduct(tx *gorm.DB, p *models.Product) error {
	if p.SKU == "" {
		return fmt.Errorf("product %q has no sku", p.Name)
	}
	attrs := p.Attributes
	p.Attributes = nil

	var existing models.Product
	err := tx.Where("sku = ?", p.SKU).First(&existing).Error
	switch {
	case gorm.IsRecordNotFoundError(err):
		if err := tx.Create(p).Error; err != nil {
			return fmt.Errorf("create product %q: %w", p.Name, err)
		}
	case err != nil:
		return fmt.Errorf("find product %q: %w", p.SKU, err)
	default:
		p.ID = existing.ID
		err := tx.Model(&existing).Updates(map[string]interface{}{
			"name":  p.Name,
			"stock": p.Stock,
		}).Error
		if err != nil {
			return fmt.Errorf("update product %q: %w", p.SKU, err)
		}
		if err := tx.Unscoped().Where("product_id = ?", existing.ID).Delete(&models.ProductAttribute{}).Error; err != nil {
			return fmt.Errorf("clear attributes of %q: %w", p.SKU, err)
		}
	}

	for _, a := range attrs {
		attr := models.ProductAttribute{ProductID: p.ID, Name: a.Name, Value: a.Value}
		if err := tx.Create(&attr).Error; err != nil {
			return fmt.Errorf("create attribute %s of %q: %w", a.Name, p.Name, err)
		}
	}
	p.Attributes = attrs
	return nil
}
