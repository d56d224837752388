package configuration

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"carport-configurator/internal/catalog"
)

// CatalogReader is the catalog surface the assembler needs for price
// modifier lookups.
type CatalogReader interface {
	Get(ctx context.Context, line catalog.ProductLine, kind catalog.Kind, id string) (*catalog.Entity, error)
	List(ctx context.Context, line catalog.ProductLine, kind catalog.Kind) ([]catalog.Entity, error)
}

// Assembler merges a wizard selection into one configuration candidate and
// prices it. Identifier fields are copied verbatim and never defaulted;
// price components degrade to zero when a lookup fails, notes default to
// empty. Reference completeness is the submission pipeline's job.
type Assembler struct {
	catalog CatalogReader
	logger  *zap.Logger
}

func NewAssembler(reader CatalogReader, logger *zap.Logger) *Assembler {
	return &Assembler{
		catalog: reader,
		logger:  logger,
	}
}

// Assemble builds the candidate record for the given product line.
func (a *Assembler) Assemble(ctx context.Context, line catalog.ProductLine, sel Selection) (*Record, error) {
	if !line.Valid() {
		return nil, fmt.Errorf("unknown product line: %q", line)
	}
	if sel.Dimensions == nil {
		return nil, fmt.Errorf("dimensions step is not completed")
	}
	if sel.Dimensions.WidthCM <= 0 || sel.Dimensions.DepthCM <= 0 || sel.Dimensions.HeightCM <= 0 {
		return nil, fmt.Errorf("invalid dimensions: %.0fx%.0fx%.0f cm",
			sel.Dimensions.WidthCM, sel.Dimensions.DepthCM, sel.Dimensions.HeightCM)
	}
	if sel.Customer == nil {
		return nil, fmt.Errorf("customer step is not completed")
	}

	record := &Record{
		ProductLine: line,
		Dimensions:  *sel.Dimensions,
		Customer:    *sel.Customer,
		Status:      StatusNew,
		Notes:       sel.Notes,
	}

	switch line {
	case catalog.LineSteel:
		record.Steel = &SteelConfiguration{
			StructureType:  sel.StructureType,
			ModelID:        sel.ModelID,
			CoverageID:     sel.CoverageID,
			StructureColor: sel.Color,
			SurfaceID:      sel.SurfaceID,
			PackageType:    sel.Package,
		}
	case catalog.LineWood:
		record.Wood = &WoodConfiguration{
			StructureTypeID: sel.StructureType,
			ModelID:         sel.ModelID,
			CoverageID:      sel.CoverageID,
			ColorID:         sel.Color,
			SurfaceID:       sel.SurfaceID,
			PackageID:       sel.Package,
		}
	}

	total := CalculatePrice(a.priceInputs(ctx, line, sel))["total"]
	record.TotalPrice = total

	return record, nil
}

func (a *Assembler) priceInputs(ctx context.Context, line catalog.ProductLine, sel Selection) PriceInputs {
	in := PriceInputs{
		WidthCM: sel.Dimensions.WidthCM,
		DepthCM: sel.Dimensions.DepthCM,
	}

	in.ModelBase = a.modifier(ctx, line, catalog.KindModel, sel.ModelID)
	in.CoverageModifier = a.modifier(ctx, line, catalog.KindCoverage, sel.CoverageID)
	in.StructureColorModifier = a.modifier(ctx, line, catalog.KindColor, sel.Color)
	in.SurfacePricePerM2 = a.modifier(ctx, line, catalog.KindSurface, sel.SurfaceID)

	if line == catalog.LineSteel {
		in.CoverageColorModifier = a.modifier(ctx, line, catalog.KindColor, sel.CoverageColorID)
		in.PackageModifier = a.packageModifierByName(ctx, sel.Package)
	} else {
		in.PackageModifier = a.modifier(ctx, line, catalog.KindPackage, sel.Package)
	}

	return in
}

// modifier resolves one selected entity's price modifier, contributing zero
// when the selection is absent or the lookup fails.
func (a *Assembler) modifier(ctx context.Context, line catalog.ProductLine, kind catalog.Kind, id string) float64 {
	if id == "" {
		return 0
	}

	entity, err := a.catalog.Get(ctx, line, kind, id)
	if err != nil {
		a.logger.Warn("Price modifier lookup failed",
			zap.String("product_line", string(line)),
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.Error(err))
		return 0
	}

	return entity.PriceModifier
}

// packageModifierByName handles the steel flow, where the package selection
// is stored as free text rather than a reference.
func (a *Assembler) packageModifierByName(ctx context.Context, name string) float64 {
	if name == "" {
		return 0
	}

	packages, err := a.catalog.List(ctx, catalog.LineSteel, catalog.KindPackage)
	if err != nil {
		a.logger.Warn("Package list lookup failed", zap.Error(err))
		return 0
	}

	for _, pkg := range packages {
		if strings.EqualFold(pkg.Name, name) {
			return pkg.PriceModifier
		}
	}

	return 0
}
