package compliance

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exportdesk/exportdesk/internal/scheme"
)

func TestNewControllerSeedsOneProduct(t *testing.T) {
	c := NewController(nil, nil)

	require.Len(t, c.Products(), 1)
	assert.Equal(t, 1, c.Products()[0].SerialNumber)
	assert.Equal(t, 0, c.SelectedIndex())
}

func TestAddProductDoesNotAutoSelect(t *testing.T) {
	c := NewController(nil, nil)
	c.AddProduct()

	require.Len(t, c.Products(), 2)
	assert.Equal(t, 2, c.Products()[1].SerialNumber)
	assert.Equal(t, 0, c.SelectedIndex())
}

func TestRemoveProductKeepsSerialNumbers(t *testing.T) {
	c := NewController(nil, nil)
	c.AddProduct()
	c.AddProduct()

	c.RemoveProduct(0)

	require.Len(t, c.Products(), 2)
	assert.Equal(t, 2, c.Products()[0].SerialNumber)
	assert.Equal(t, 3, c.Products()[1].SerialNumber)
}

func TestRemoveProductOutOfRangeNoOp(t *testing.T) {
	c := NewController(nil, nil)
	c.RemoveProduct(5)
	c.RemoveProduct(-1)
	assert.Len(t, c.Products(), 1)
}

func TestSelectionDegradesAfterRemoval(t *testing.T) {
	c := NewController(nil, nil)
	c.AddProduct()
	c.SelectProduct(1)
	require.Equal(t, 1, c.SelectedIndex())

	c.RemoveProduct(1)
	c.RemoveProduct(0)
	assert.Equal(t, -1, c.SelectedIndex())
	assert.Nil(t, c.DeriveSubforms())

	_, err := c.SelectedProduct()
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestUpdateProductFieldDottedPath(t *testing.T) {
	c := NewController(nil, nil)

	c.UpdateProductField(0, "cessExpDuty.cenvat.amount", 75.0)

	p := c.Products()[0]
	require.NotNil(t, p.CessExpDuty)
	require.NotNil(t, p.CessExpDuty.Cenvat)
	assert.Equal(t, 75.0, p.CessExpDuty.Cenvat.Amount)
}

func TestUpdateProductFieldBadPathAbsorbed(t *testing.T) {
	c := NewController(nil, nil)
	before := c.Products()

	c.UpdateProductField(0, "noSuchField", 1)
	c.UpdateProductField(9, "eximCode", "x")

	assert.Equal(t, before, c.Products())
}

func TestUpdateProductFieldLeavesSnapshotUntouched(t *testing.T) {
	c := NewController(nil, nil)
	c.UpdateProductField(0, "description", "woven garments")
	snapshot := c.Products()

	c.UpdateProductField(0, "description", "knitted garments")

	assert.Equal(t, "woven garments", snapshot[0].Description)
	assert.Equal(t, "knitted garments", c.Products()[0].Description)
}

func TestDeriveSubformsAdvanceLicence(t *testing.T) {
	c := NewController(nil, nil)
	c.UpdateProductField(0, "eximCode", scheme.CodeAdvanceLicence)

	assert.Equal(t, []scheme.Subform{
		scheme.SubformMain,
		scheme.SubformGeneral,
		scheme.SubformDEEC,
		scheme.SubformCessExportDuty,
		scheme.SubformAreDetails,
		scheme.SubformReExport,
		scheme.SubformOtherDetails,
	}, c.DeriveSubforms())
}

func TestDeriveSubformsEPCGAdvance(t *testing.T) {
	c := NewController(nil, nil)
	c.UpdateProductField(0, "eximCode", scheme.CodeEPCGAdvanceLicense)

	assert.Equal(t, []scheme.Subform{
		scheme.SubformMain,
		scheme.SubformGeneral,
		scheme.SubformDEEC,
		scheme.SubformEPCG,
		scheme.SubformCessExportDuty,
		scheme.SubformAreDetails,
		scheme.SubformReExport,
		scheme.SubformOtherDetails,
	}, c.DeriveSubforms())
}

func TestUnknownSchemeCodeIsLoggedNotRejected(t *testing.T) {
	var buf bytes.Buffer
	c := NewController(slog.New(slog.NewTextHandler(&buf, nil)), nil)

	c.UpdateProductField(0, "eximCode", "99 - NEW SCHEME")

	assert.Equal(t, "99 - NEW SCHEME", c.Products()[0].EximCode)
	assert.Contains(t, buf.String(), "unrecognised scheme code")
	assert.Equal(t, scheme.ResolveSubforms(""), c.DeriveSubforms())
}

func TestDeriveSubformsMemoisedUntilCodeChanges(t *testing.T) {
	c := NewController(nil, nil)
	c.UpdateProductField(0, "eximCode", scheme.CodeDrawback)

	first := c.DeriveSubforms()
	c.UpdateProductField(0, "description", "unrelated edit")
	again := c.DeriveSubforms()
	assert.Equal(t, first, again)

	c.UpdateProductField(0, "eximCode", "")
	assert.NotContains(t, c.DeriveSubforms(), scheme.SubformDrawback)
}

func TestDeecItemLifecycle(t *testing.T) {
	c := NewController(nil, nil)

	c.AppendDeecItem(0)
	c.AppendDeecItem(0)

	p := c.Products()[0]
	require.NotNil(t, p.DeecDetails)
	require.Len(t, p.DeecDetails.Items, 2)
	assert.Equal(t, 1, p.DeecDetails.Items[0].SerialNumber)
	assert.Equal(t, 2, p.DeecDetails.Items[1].SerialNumber)

	c.UpdateDeecItem(0, 1, "description", "polyester yarn")
	assert.Equal(t, "polyester yarn", c.Products()[0].DeecDetails.Items[1].Description)

	c.RemoveDeecItem(0, 0)
	items := c.Products()[0].DeecDetails.Items
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].SerialNumber)
	assert.Equal(t, "polyester yarn", items[0].Description)
}

func TestAreRowLifecycle(t *testing.T) {
	c := NewController(nil, nil)

	c.AppendAreRow(0)
	c.UpdateAreRow(0, 0, "formNumber", "ARE1/442/2026")
	c.UpdateAreRow(0, 2, "formNumber", "ARE1/443/2026")

	rows := c.Products()[0].AreDetails
	require.Len(t, rows, 3, "editing row 2 materialises the gap")
	assert.Equal(t, "ARE1/442/2026", rows[0].FormNumber)
	assert.Equal(t, "ARE1/443/2026", rows[2].FormNumber)
	assert.Equal(t, []int{1, 2, 3}, []int{rows[0].SerialNumber, rows[1].SerialNumber, rows[2].SerialNumber})

	c.RemoveAreRow(0, 1)
	rows = c.Products()[0].AreDetails
	require.Len(t, rows, 2)
	assert.Equal(t, 2, rows[1].SerialNumber)
}

func TestRowEditOnStaleProductIndexNoOp(t *testing.T) {
	c := NewController(nil, nil)
	before := c.Products()

	c.AppendDeecItem(4)
	c.RemoveAreRow(-1, 0)

	assert.Equal(t, before, c.Products())
}
