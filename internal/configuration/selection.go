package configuration

import (
	"encoding/json"
	"fmt"
)

// StepKey identifies one wizard step.
type StepKey string

const (
	StepStructureType StepKey = "structure_type"
	StepModel         StepKey = "model"
	StepDimensions    StepKey = "dimensions"
	StepCoverage      StepKey = "coverage"
	StepColor         StepKey = "color"
	StepCoverageColor StepKey = "coverage_color"
	StepSurface       StepKey = "surface"
	StepPackage       StepKey = "package"
	StepCustomer      StepKey = "customer"
	StepNotes         StepKey = "notes"
)

// Selection is the wizard's accumulated per-step state. A field stays empty
// until the user reaches that step; nothing is cross-checked here — the
// submission pipeline validates the completed candidate.
//
// Field meaning differs by product line where the persisted schemas differ:
// StructureType is free text for steel and a structure-type id for wood,
// Color is a color name or UUID for steel and a color id for wood, Package
// is a package name for steel and a package id for wood.
type Selection struct {
	StructureType   string      `json:"structure_type,omitempty"`
	ModelID         string      `json:"model_id,omitempty"`
	Dimensions      *Dimensions `json:"dimensions,omitempty"`
	CoverageID      string      `json:"coverage_id,omitempty"`
	Color           string      `json:"color,omitempty"`
	CoverageColorID string      `json:"coverage_color_id,omitempty"`
	SurfaceID       string      `json:"surface_id,omitempty"`
	Package         string      `json:"package,omitempty"`
	Customer        *Customer   `json:"customer,omitempty"`
	Notes           string      `json:"notes,omitempty"`
}

// ApplyStep writes one step's raw JSON value into the selection. Scalar
// steps expect a JSON string; dimensions and customer expect their object
// shapes.
func (s *Selection) ApplyStep(key StepKey, value json.RawMessage) error {
	switch key {
	case StepDimensions:
		var dims Dimensions
		if err := json.Unmarshal(value, &dims); err != nil {
			return fmt.Errorf("decode dimensions: %w", err)
		}
		s.Dimensions = &dims

	case StepCustomer:
		var customer Customer
		if err := json.Unmarshal(value, &customer); err != nil {
			return fmt.Errorf("decode customer: %w", err)
		}
		s.Customer = &customer

	case StepStructureType, StepModel, StepCoverage, StepColor,
		StepCoverageColor, StepSurface, StepPackage, StepNotes:
		var v string
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		switch key {
		case StepStructureType:
			s.StructureType = v
		case StepModel:
			s.ModelID = v
		case StepCoverage:
			s.CoverageID = v
		case StepColor:
			s.Color = v
		case StepCoverageColor:
			s.CoverageColorID = v
		case StepSurface:
			s.SurfaceID = v
		case StepPackage:
			s.Package = v
		case StepNotes:
			s.Notes = v
		}

	default:
		return fmt.Errorf("unknown wizard step: %q", key)
	}

	return nil
}
