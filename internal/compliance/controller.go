// Package compliance holds the export-product model and the controller
// driving the product compliance editor: product selection, scheme
// classification, and immutable field/row edits.
package compliance

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/exportdesk/exportdesk/internal/collection"
	"github.com/exportdesk/exportdesk/internal/fieldpath"
	"github.com/exportdesk/exportdesk/internal/scheme"
)

// ErrNoSelection is returned when an operation needs a selected product
// but the selection is out of range (e.g. after a racing delete).
var ErrNoSelection = errors.New("compliance: no product selected")

var (
	deecItemEditor = collection.Editor[DeecItem]{
		NewRow:   func(ordinal int) DeecItem { return DeecItem{SerialNumber: ordinal} },
		Renumber: true,
	}
	areRowEditor = collection.Editor[AreDetailRow]{
		NewRow:   func(ordinal int) AreDetailRow { return AreDetailRow{SerialNumber: ordinal} },
		Renumber: true,
	}
)

// Controller owns the in-memory product list for one shipment job and
// the current selection. All mutating methods replace whole Product
// values; earlier snapshots handed to the persister stay valid.
type Controller struct {
	logger   *slog.Logger
	products []Product
	selected int

	// memoised DeriveSubforms result, keyed on the selected product's
	// scheme code so unrelated field edits skip re-resolution.
	memoCode  string
	memoValid bool
	memoTabs  []scheme.Subform
}

// NewController wraps an existing product list. An empty list gets one
// default product so the editor always has a row to type into.
func NewController(logger *slog.Logger, products []Product) *Controller {
	if len(products) == 0 {
		products = []Product{NewProduct(1)}
	}
	return &Controller{logger: logger, products: products}
}

// NewProduct returns a default product for the given serial. No
// scheme sub-records are attached; those appear on first edit.
func NewProduct(serial int) Product {
	return Product{SerialNumber: serial}
}

// Products returns the current product snapshot.
func (c *Controller) Products() []Product {
	return c.products
}

// SelectedIndex returns the selection, or -1 when nothing valid is
// selected.
func (c *Controller) SelectedIndex() int {
	if c.selected < 0 || c.selected >= len(c.products) {
		return -1
	}
	return c.selected
}

// SelectProduct moves the selection. Out-of-range indexes are kept as
// given so SelectedIndex degrades to -1 instead of failing; a product
// delete can race the click that selected it.
func (c *Controller) SelectProduct(index int) {
	c.selected = index
	c.memoValid = false
}

// AddProduct appends a default product with the next serial number.
// The new product is not auto-selected; selection stays explicit.
func (c *Controller) AddProduct() {
	c.products = append(c.copyProducts(), NewProduct(len(c.products)+1))
}

// RemoveProduct drops the product at index. Remaining serial numbers
// are not reassigned: they are printed on already-issued documents.
// Out-of-range indexes are a no-op.
func (c *Controller) RemoveProduct(index int) {
	if index < 0 || index >= len(c.products) {
		return
	}
	out := c.copyProducts()
	c.products = append(out[:index], out[index+1:]...)
	c.memoValid = false
}

// UpdateProductField applies a dotted-path edit to the product at
// index, e.g. "cessExpDuty.cenvat.amount". Unknown paths and stale
// indexes are absorbed with a warning; a keystroke must never abort
// the editing session.
func (c *Controller) UpdateProductField(index int, path string, value any) {
	if index < 0 || index >= len(c.products) {
		c.warn("update on stale product index", slog.Int("index", index), slog.String("path", path))
		return
	}
	updated, err := fieldpath.Set(c.products[index], path, value)
	if err != nil {
		c.warn("product field update rejected", slog.String("path", path), slog.Any("error", err))
		return
	}
	c.setProduct(index, updated)
	if path == "eximCode" {
		c.memoValid = false
		if code, ok := value.(string); ok && code != "" && !scheme.Known(code) {
			c.warn("unrecognised scheme code, default subforms apply", slog.String("eximCode", code))
		}
	}
}

// AppendDeecItem adds a default DEEC item row to the product at index.
func (c *Controller) AppendDeecItem(index int) {
	c.withDeec(index, deecItemEditor.Append)
}

// UpdateDeecItem edits one field of one DEEC item row.
func (c *Controller) UpdateDeecItem(index, row int, path string, value any) {
	c.withDeec(index, func(items []DeecItem) []DeecItem {
		return deecItemEditor.UpdateAt(items, row, func(it DeecItem) DeecItem {
			updated, err := fieldpath.Set(it, path, value)
			if err != nil {
				c.warn("deec item update rejected", slog.String("path", path), slog.Any("error", err))
				return it
			}
			return updated
		})
	})
}

// RemoveDeecItem deletes a DEEC item row and renumbers the remainder.
func (c *Controller) RemoveDeecItem(index, row int) {
	c.withDeec(index, func(items []DeecItem) []DeecItem {
		return deecItemEditor.Remove(items, row)
	})
}

// AppendAreRow adds a default ARE form row to the product at index.
func (c *Controller) AppendAreRow(index int) {
	c.withAre(index, areRowEditor.Append)
}

// UpdateAreRow edits one field of one ARE form row.
func (c *Controller) UpdateAreRow(index, row int, path string, value any) {
	c.withAre(index, func(rows []AreDetailRow) []AreDetailRow {
		return areRowEditor.UpdateAt(rows, row, func(r AreDetailRow) AreDetailRow {
			updated, err := fieldpath.Set(r, path, value)
			if err != nil {
				c.warn("are row update rejected", slog.String("path", path), slog.Any("error", err))
				return r
			}
			return updated
		})
	})
}

// RemoveAreRow deletes an ARE form row and renumbers the remainder.
func (c *Controller) RemoveAreRow(index, row int) {
	c.withAre(index, func(rows []AreDetailRow) []AreDetailRow {
		return areRowEditor.Remove(rows, row)
	})
}

// DeriveSubforms resolves the subform tabs for the selected product.
// The result is memoised on the scheme code; it returns nil when no
// product is selected.
func (c *Controller) DeriveSubforms() []scheme.Subform {
	p, err := c.SelectedProduct()
	if err != nil {
		return nil
	}
	code := p.EximCode
	if c.memoValid && c.memoCode == code {
		return c.memoTabs
	}
	c.memoCode = code
	c.memoTabs = scheme.ResolveSubforms(code)
	c.memoValid = true
	return c.memoTabs
}

func (c *Controller) withDeec(index int, fn func([]DeecItem) []DeecItem) {
	p, ok := c.productAt(index)
	if !ok {
		return
	}
	var details DeecDetails
	if p.DeecDetails != nil {
		details = *p.DeecDetails
	}
	details.Items = fn(details.Items)
	p.DeecDetails = &details
	c.setProduct(index, p)
}

func (c *Controller) withAre(index int, fn func([]AreDetailRow) []AreDetailRow) {
	p, ok := c.productAt(index)
	if !ok {
		return
	}
	p.AreDetails = fn(p.AreDetails)
	c.setProduct(index, p)
}

func (c *Controller) productAt(index int) (Product, bool) {
	if index < 0 || index >= len(c.products) {
		c.warn("row edit on stale product index", slog.Int("index", index))
		return Product{}, false
	}
	return c.products[index], true
}

func (c *Controller) setProduct(index int, p Product) {
	out := c.copyProducts()
	out[index] = p
	c.products = out
}

func (c *Controller) copyProducts() []Product {
	out := make([]Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Controller) warn(msg string, attrs ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, attrs...)
	}
}

// SelectedProduct returns the selected product value.
func (c *Controller) SelectedProduct() (Product, error) {
	idx := c.SelectedIndex()
	if idx < 0 {
		return Product{}, fmt.Errorf("%w: index %d of %d", ErrNoSelection, c.selected, len(c.products))
	}
	return c.products[idx], nil
}
