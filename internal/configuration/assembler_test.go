package configuration

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carport-configurator/internal/catalog"
)

type fakeCatalog struct {
	entities map[string]catalog.Entity // keyed by kind/id
	packages []catalog.Entity
}

func (f *fakeCatalog) Get(_ context.Context, _ catalog.ProductLine, kind catalog.Kind, id string) (*catalog.Entity, error) {
	if e, ok := f.entities[fmt.Sprintf("%s/%s", kind, id)]; ok {
		return &e, nil
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) List(_ context.Context, _ catalog.ProductLine, kind catalog.Kind) ([]catalog.Entity, error) {
	if kind == catalog.KindPackage {
		return f.packages, nil
	}
	return nil, nil
}

func validSelection() Selection {
	return Selection{
		StructureType: "freestanding",
		ModelID:       "model-1",
		CoverageID:    "coverage-1",
		Color:         "color-1",
		SurfaceID:     "surface-1",
		Dimensions:    &Dimensions{WidthCM: 300, DepthCM: 500, HeightCM: 250},
		Customer: &Customer{
			Name:  "Jane Roe",
			Email: "jane@example.com",
			Phone: "+391234567890",
		},
	}
}

func TestAssemble_Wood(t *testing.T) {
	cat := &fakeCatalog{entities: map[string]catalog.Entity{
		"models/model-1":     {ID: "model-1", Name: "Classic", PriceModifier: 2000},
		"coverages/coverage-1": {ID: "coverage-1", Name: "Polycarbonate", PriceModifier: 400},
		"colors/color-1":     {ID: "color-1", Name: "Oak", PriceModifier: 50},
		"surfaces/surface-1": {ID: "surface-1", Name: "Gravel", PriceModifier: 45},
	}}
	assembler := NewAssembler(cat, zap.NewNop())

	rec, err := assembler.Assemble(context.Background(), catalog.LineWood, validSelection())
	require.NoError(t, err)

	require.NotNil(t, rec.Wood)
	assert.Nil(t, rec.Steel)
	assert.NoError(t, rec.CheckVariant())
	assert.Equal(t, "freestanding", rec.Wood.StructureTypeID)
	assert.Equal(t, "model-1", rec.Wood.ModelID)
	assert.Equal(t, "color-1", rec.Wood.ColorID)
	assert.Equal(t, "surface-1", rec.Wood.SurfaceID)
	assert.Equal(t, StatusNew, rec.Status)

	// 2000 + 400 + 50 + 45*15m².
	assert.InDelta(t, 2000+400+50+675.0, rec.TotalPrice, 1e-9)
}

func TestAssemble_SteelPackageByName(t *testing.T) {
	cat := &fakeCatalog{
		entities: map[string]catalog.Entity{},
		packages: []catalog.Entity{
			{ID: "pkg-1", Name: "Comfort", PriceModifier: 300},
		},
	}
	assembler := NewAssembler(cat, zap.NewNop())

	sel := validSelection()
	sel.Package = "comfort" // case-insensitive match

	rec, err := assembler.Assemble(context.Background(), catalog.LineSteel, sel)
	require.NoError(t, err)

	require.NotNil(t, rec.Steel)
	assert.Equal(t, "comfort", rec.Steel.PackageType)
	assert.InDelta(t, 300.0, rec.TotalPrice, 1e-9)
}

func TestAssemble_MissingStepsFail(t *testing.T) {
	assembler := NewAssembler(&fakeCatalog{}, zap.NewNop())

	sel := validSelection()
	sel.Dimensions = nil
	_, err := assembler.Assemble(context.Background(), catalog.LineSteel, sel)
	assert.Error(t, err)

	sel = validSelection()
	sel.Customer = nil
	_, err = assembler.Assemble(context.Background(), catalog.LineSteel, sel)
	assert.Error(t, err)

	sel = validSelection()
	sel.Dimensions.WidthCM = 0
	_, err = assembler.Assemble(context.Background(), catalog.LineSteel, sel)
	assert.Error(t, err)

	_, err = assembler.Assemble(context.Background(), "plastic", validSelection())
	assert.Error(t, err)
}

func TestAssemble_IdentifiersNeverDefaulted(t *testing.T) {
	// Failed lookups degrade the price to zero but must not touch the
	// identifier fields; validation of completeness belongs to the pipeline.
	assembler := NewAssembler(&fakeCatalog{}, zap.NewNop())

	sel := validSelection()
	sel.ModelID = ""

	rec, err := assembler.Assemble(context.Background(), catalog.LineWood, sel)
	require.NoError(t, err)
	assert.Empty(t, rec.Wood.ModelID)
	assert.Zero(t, rec.TotalPrice)
}

func TestAssemble_TotalIsReproducible(t *testing.T) {
	cat := &fakeCatalog{entities: map[string]catalog.Entity{
		"models/model-1":     {ID: "model-1", PriceModifier: 1111.11},
		"coverages/coverage-1": {ID: "coverage-1", PriceModifier: 222.22},
		"colors/color-1":     {ID: "color-1", PriceModifier: 33.33},
		"surfaces/surface-1": {ID: "surface-1", PriceModifier: 4.44},
	}}
	assembler := NewAssembler(cat, zap.NewNop())

	first, err := assembler.Assemble(context.Background(), catalog.LineWood, validSelection())
	require.NoError(t, err)
	second, err := assembler.Assemble(context.Background(), catalog.LineWood, validSelection())
	require.NoError(t, err)

	assert.Equal(t, first.TotalPrice, second.TotalPrice)
}
