package configuration

// PriceInputs collects the per-entity modifiers looked up from the catalog
// for one candidate. Missing selections contribute zero.
type PriceInputs struct {
	ModelBase              float64
	CoverageModifier       float64
	StructureColorModifier float64
	CoverageColorModifier  float64 // steel only
	SurfacePricePerM2      float64
	PackageModifier        float64
	WidthCM                float64
	DepthCM                float64
}

// AreaM2 converts configured centimeter dimensions to square meters.
func AreaM2(widthCM, depthCM float64) float64 {
	return widthCM * depthCM / 10000
}

// CalculatePrice sums the flat price modifiers. The surface contributes its
// per-m² price times the covered area; every other component is a flat
// adjustment. Summation order does not matter.
func CalculatePrice(in PriceInputs) (priceDetails map[string]float64) {
	priceDetails = make(map[string]float64)

	priceDetails["model_base"] = in.ModelBase
	priceDetails["coverage"] = in.CoverageModifier
	priceDetails["structure_color"] = in.StructureColorModifier
	priceDetails["coverage_color"] = in.CoverageColorModifier
	priceDetails["surface"] = in.SurfacePricePerM2 * AreaM2(in.WidthCM, in.DepthCM)
	priceDetails["package"] = in.PackageModifier

	priceDetails["total"] = priceDetails["model_base"] +
		priceDetails["coverage"] +
		priceDetails["structure_color"] +
		priceDetails["coverage_color"] +
		priceDetails["surface"] +
		priceDetails["package"]

	return priceDetails
}
