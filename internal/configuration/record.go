package configuration

import (
	"fmt"

	"carport-configurator/internal/catalog"
)

// Configuration lifecycle tags. Admin screens may move a record through
// these out-of-band; the wizard only ever creates records in StatusNew.
const (
	StatusNew        = "new"
	StatusSubmitted  = "submitted"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Contact preference values accepted from the wizard.
const (
	ContactByEmail    = "email"
	ContactByPhone    = "phone"
	ContactByWhatsApp = "whatsapp"
)

// Customer holds the contact step of the wizard.
type Customer struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	City              string `json:"city"`
	PostalCode        string `json:"postal_code"`
	Province          string `json:"province,omitempty"`
	ContactPreference string `json:"contact_preference,omitempty"`
}

// Dimensions are configured in centimeters.
type Dimensions struct {
	WidthCM  float64 `json:"width_cm"`
	DepthCM  float64 `json:"depth_cm"`
	HeightCM float64 `json:"height_cm"`
}

// SteelConfiguration is the steel/aluminum carport variant. StructureType
// and PackageType are free text; StructureColor carries either a raw UUID or
// a color name resolved against the steel color catalog at persist time.
type SteelConfiguration struct {
	StructureType  string `json:"structure_type"`
	ModelID        string `json:"model_id"`
	CoverageID     string `json:"coverage_id"`
	StructureColor string `json:"structure_color"`
	SurfaceID      string `json:"surface_id,omitempty"`
	PackageType    string `json:"package_type,omitempty"`
}

// WoodConfiguration is the wood pergola variant. Unlike steel, structure
// type, color and package are all proper catalog references, and the surface
// is mandatory. The asymmetry mirrors the persisted schemas and is kept
// deliberately.
type WoodConfiguration struct {
	StructureTypeID string `json:"structure_type_id"`
	ModelID         string `json:"model_id"`
	CoverageID      string `json:"coverage_id"`
	ColorID         string `json:"color_id"`
	SurfaceID       string `json:"surface_id"`
	PackageID       string `json:"package_id,omitempty"`
}

// Record is one assembled configuration candidate: a tagged union over the
// product line, with exactly one variant populated.
type Record struct {
	ProductLine catalog.ProductLine `json:"product_line"`
	Dimensions  Dimensions          `json:"dimensions"`
	Customer    Customer            `json:"customer"`
	TotalPrice  float64             `json:"total_price"`
	Status      string              `json:"status,omitempty"`
	Notes       string              `json:"notes,omitempty"`

	Steel *SteelConfiguration `json:"steel,omitempty"`
	Wood  *WoodConfiguration  `json:"wood,omitempty"`
}

// CheckVariant enforces the union invariant: the variant matching the
// product line is set and the other is not.
func (r *Record) CheckVariant() error {
	switch r.ProductLine {
	case catalog.LineSteel:
		if r.Steel == nil {
			return fmt.Errorf("steel configuration is missing its steel variant")
		}
		if r.Wood != nil {
			return fmt.Errorf("steel configuration carries wood fields")
		}
	case catalog.LineWood:
		if r.Wood == nil {
			return fmt.Errorf("wood configuration is missing its wood variant")
		}
		if r.Steel != nil {
			return fmt.Errorf("wood configuration carries steel fields")
		}
	default:
		return fmt.Errorf("unknown product line: %q", r.ProductLine)
	}
	return nil
}
