package models

import (
	"github.com/jinzhu/gorm"
)

// Product represents a catalog item whose stock can be reset
type Product struct {
	gorm.Model
	SKU        string             `gorm:"unique_index" yaml:"sku"`
	Name       string             `yaml:"name"`
	Stock      int                `yaml:"stock"`
	Attributes []ProductAttribute `gorm:"foreignkey:ProductID" yaml:"attributes"`
}

// ProductAttribute represents a named attribute term attached to a product
type ProductAttribute struct {
	gorm.Model
	ProductID uint   `gorm:"index"`
	Name      string `gorm:"index" yaml:"name"`
	Value     string `yaml:"value"`
}

// Attribute names that drive the reset
const (
	AttrDefaultResetQuantity = "default_reset_quantity"
	AttrDoNotResetQuantity   = "do_not_reset_quantity"
)
