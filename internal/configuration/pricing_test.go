package configuration

import "testing"

func TestCalculatePrice_SurfaceContribution(t *testing.T) {
	// 300x500 cm = 15 m²; 45/m² surface yields 675.00.
	in := PriceInputs{
		SurfacePricePerM2: 45.0,
		WidthCM:           300,
		DepthCM:           500,
	}

	prices := CalculatePrice(in)

	if prices["surface"] != 675.0 {
		t.Errorf("Incorrect surface cost, got %.2f, want %.2f", prices["surface"], 675.0)
	}
	if prices["total"] != 675.0 {
		t.Errorf("Incorrect total, got %.2f, want %.2f", prices["total"], 675.0)
	}
}

func TestCalculatePrice_FlatSum(t *testing.T) {
	in := PriceInputs{
		ModelBase:              1200,
		CoverageModifier:       350,
		StructureColorModifier: 80,
		CoverageColorModifier:  40,
		SurfacePricePerM2:      10,
		PackageModifier:        -100,
		WidthCM:                400,
		DepthCM:                250,
	}

	prices := CalculatePrice(in)

	// 400*250/10000 = 10 m² → surface 100.
	want := 1200.0 + 350 + 80 + 40 + 100 - 100
	if prices["total"] != want {
		t.Errorf("Incorrect total, got %.2f, want %.2f", prices["total"], want)
	}
}

func TestCalculatePrice_Deterministic(t *testing.T) {
	in := PriceInputs{
		ModelBase:         999.99,
		CoverageModifier:  123.45,
		SurfacePricePerM2: 33.3,
		PackageModifier:   50,
		WidthCM:           312,
		DepthCM:           487,
	}

	first := CalculatePrice(in)["total"]
	second := CalculatePrice(in)["total"]

	if first != second {
		t.Errorf("Same inputs priced differently: %.10f vs %.10f", first, second)
	}
}

func TestAreaM2(t *testing.T) {
	if got := AreaM2(300, 500); got != 15.0 {
		t.Errorf("AreaM2(300, 500) = %.2f, want 15.00", got)
	}
	if got := AreaM2(0, 500); got != 0 {
		t.Errorf("AreaM2(0, 500) = %.2f, want 0", got)
	}
}
