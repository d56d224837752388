package catalog

// ProductLine selects which product family a wizard flow, catalog table and
// configuration record belong to.
type ProductLine string

const (
	LineSteel ProductLine = "steel"
	LineWood  ProductLine = "wood"
)

func (l ProductLine) Valid() bool {
	return l == LineSteel || l == LineWood
}

// Kind is the logical catalog table name, before product-line prefixing.
type Kind string

const (
	KindModel         Kind = "models"
	KindColor         Kind = "colors"
	KindCoverage      Kind = "coverages"
	KindSurface       Kind = "surfaces"
	KindStructureType Kind = "structure_types"
	KindPackage       Kind = "packages"
)

// Kinds lists every catalog kind offered to the wizard.
var Kinds = []Kind{
	KindModel,
	KindColor,
	KindCoverage,
	KindSurface,
	KindStructureType,
	KindPackage,
}

func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Entity is one selectable catalog row. All catalog kinds share this shape:
// PriceModifier is the base price for models, the per-m² price for surfaces
// and a flat signed adjustment for everything else.
type Entity struct {
	ID            string  `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	Description   string  `db:"description" json:"description,omitempty"`
	ImageURL      string  `db:"image_url" json:"image_url,omitempty"`
	PriceModifier float64 `db:"price_modifier" json:"price_modifier"`
	Active        bool    `db:"active" json:"active"`
	DisplayOrder  int     `db:"display_order" json:"display_order"`
}
