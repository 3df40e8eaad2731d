package reset

import (
	"context"
	"errors"
	"sort"

	"defaultreset/internal/database"
	"defaultreset/internal/models"
)

type memFlags struct {
	values map[string]string
	writes []string
	getErr error
}

func newMemFlags(kv ...string) *memFlags {
	f := &memFlags{values: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		f.values[kv[i]] = kv[i+1]
	}
	return f
}

func (f *memFlags) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", database.ErrOptionNotFound
	}
	return v, nil
}

func (f *memFlags) Set(_ context.Context, key, value string) error {
	f.values[key] = value
	f.writes = append(f.writes, key+"="+value)
	return nil
}

type memProduct struct {
	stock      int
	defaultQty *string
	doNotReset bool
}

type memCatalog struct {
	products map[uint]*memProduct
	setErr   error
	visits   map[uint]int
}

func newMemCatalog() *memCatalog {
	return &memCatalog{products: map[uint]*memProduct{}, visits: map[uint]int{}}
}

func (c *memCatalog) add(id uint, p memProduct) {
	c.products[id] = &p
}

func (c *memCatalog) ids() []uint {
	ids := make([]uint, 0, len(c.products))
	for id := range c.products {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *memCatalog) ListAll(context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, id := range c.ids() {
		p := models.Product{Stock: c.products[id].stock}
		p.ID = id
		out = append(out, p)
	}
	return out, nil
}

func (c *memCatalog) ListResettable(context.Context) ([]models.Product, error) {
	var out []models.Product
	for _, id := range c.ids() {
		if c.products[id].doNotReset {
			continue
		}
		p := models.Product{Stock: c.products[id].stock}
		p.ID = id
		out = append(out, p)
	}
	return out, nil
}

func (c *memCatalog) AttributeValue(_ context.Context, id uint, name string) (string, bool, error) {
	p, ok := c.products[id]
	if !ok {
		return "", false, errors.New("no such product")
	}
	if name != models.AttrDefaultResetQuantity || p.defaultQty == nil {
		return "", false, nil
	}
	return *p.defaultQty, true, nil
}

func (c *memCatalog) SetStock(_ context.Context, id uint, qty int) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.products[id].stock = qty
	c.visits[id]++
	return nil
}

func (c *memCatalog) stocks() map[uint]int {
	out := map[uint]int{}
	for id, p := range c.products {
		out[id] = p.stock
	}
	return out
}

func strPtr(s string) *string { return &s }

type countingRunner struct {
	calls int
	err   error
}

func (r *countingRunner) ResetQuantities(context.Context, Trigger) (Report, error) {
	if r.err != nil {
		return Report{}, r.err
	}
	r.calls++
	return Report{Trigger: TriggerAuto}, nil
}
