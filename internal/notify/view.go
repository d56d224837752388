package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"carport-configurator/internal/catalog"
	"carport-configurator/internal/configuration"
)

// NameResolver turns reference ids into display names, degrading to
// catalog.UnknownName instead of failing.
type NameResolver interface {
	EntityName(ctx context.Context, line catalog.ProductLine, kind catalog.Kind, id string) string
}

// View is the denormalized snapshot of a saved configuration that both email
// renderings share.
type View struct {
	ID          int64
	ProductLine string

	StructureType string
	Model         string
	Coverage      string
	Color         string
	Surface       string
	Package       string

	WidthCM  float64
	DepthCM  float64
	HeightCM float64

	TotalPrice float64
	Customer   configuration.Customer
	Notes      string
}

// buildView resolves the record's references to display names. The lookups
// are independent and run in parallel; each one degrades to "N/A" on its own
// without affecting the others.
func buildView(ctx context.Context, resolver NameResolver, rec *configuration.Record, id int64) View {
	view := View{
		ID:          id,
		ProductLine: string(rec.ProductLine),
		WidthCM:     rec.Dimensions.WidthCM,
		DepthCM:     rec.Dimensions.DepthCM,
		HeightCM:    rec.Dimensions.HeightCM,
		TotalPrice:  rec.TotalPrice,
		Customer:    rec.Customer,
		Notes:       rec.Notes,
	}

	type lookup struct {
		dst  *string
		kind catalog.Kind
		id   string
	}

	var lookups []lookup
	line := rec.ProductLine

	switch line {
	case catalog.LineSteel:
		steel := rec.Steel

		// Free-text fields are used verbatim.
		view.StructureType = orUnknown(steel.StructureType)
		view.Package = steel.PackageType

		// A typed color name is already human-readable; only a UUID needs
		// resolving.
		if err := uuid.Validate(steel.StructureColor); err == nil {
			lookups = append(lookups, lookup{&view.Color, catalog.KindColor, steel.StructureColor})
		} else {
			view.Color = orUnknown(steel.StructureColor)
		}

		lookups = append(lookups,
			lookup{&view.Model, catalog.KindModel, steel.ModelID},
			lookup{&view.Coverage, catalog.KindCoverage, steel.CoverageID},
			lookup{&view.Surface, catalog.KindSurface, steel.SurfaceID},
		)

	case catalog.LineWood:
		wood := rec.Wood
		lookups = append(lookups,
			lookup{&view.StructureType, catalog.KindStructureType, wood.StructureTypeID},
			lookup{&view.Model, catalog.KindModel, wood.ModelID},
			lookup{&view.Coverage, catalog.KindCoverage, wood.CoverageID},
			lookup{&view.Color, catalog.KindColor, wood.ColorID},
			lookup{&view.Surface, catalog.KindSurface, wood.SurfaceID},
			lookup{&view.Package, catalog.KindPackage, wood.PackageID},
		)
	}

	var wg sync.WaitGroup
	for _, l := range lookups {
		if l.id == "" {
			continue
		}
		wg.Add(1)
		go func(l lookup) {
			defer wg.Done()
			*l.dst = resolver.EntityName(ctx, line, l.kind, l.id)
		}(l)
	}
	wg.Wait()

	return view
}

func orUnknown(v string) string {
	if v == "" {
		return catalog.UnknownName
	}
	return v
}
