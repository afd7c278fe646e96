package models

import "math"

// Tarifs d'expédition par méthode
type shippingRate struct {
	Base  float64 // tarif de base
	PerKg float64 // tarif par kg facturable
}

var shippingRates = map[string]shippingRate{
	"standard":  {Base: 50, PerKg: 10},
	"express":   {Base: 100, PerKg: 15},
	"overnight": {Base: 200, PerKg: 25},
	"same_day":  {Base: 300, PerKg: 30},
	"pickup":    {Base: 0, PerKg: 0},
}

// Diviseur de poids volumétrique (cm³ → kg)
const dimensionalDivisor = 5000

// RecomputeTotals recalcule l'agrégat financier et le poids d'expédition à
// partir des lignes, remises, taxes et frais de port. Idempotent : deux appels
// sans changement d'entrée produisent des totaux identiques.
// Le total n'est volontairement pas borné à zéro — une remise supérieure au
// montant de la commande produit un total négatif, comme dans la caisse.
func (o *Order) RecomputeTotals() {
	var subtotal, weight float64
	for i := range o.Items {
		o.Items[i].TotalPrice = o.Items[i].UnitPrice * float64(o.Items[i].Quantity)
		subtotal += o.Items[i].TotalPrice
		weight += o.Items[i].Weight * float64(o.Items[i].Quantity)
	}

	var discountTotal float64
	for _, d := range o.Discounts {
		discountTotal += d.Amount
	}

	var taxTotal float64
	for _, t := range o.Taxes {
		taxTotal += t.Amount
	}

	o.ShippingInfo.Weight = roundMoney(weight)
	o.Totals.Subtotal = roundMoney(subtotal)
	o.Totals.DiscountTotal = roundMoney(discountTotal)
	o.Totals.TaxTotal = roundMoney(taxTotal)
	o.Totals.ShippingTotal = roundMoney(o.ShippingInfo.Cost)
	o.Totals.Total = roundMoney(o.Totals.Subtotal - o.Totals.DiscountTotal + o.Totals.TaxTotal + o.Totals.ShippingTotal)
	o.Totals.OutstandingAmount = roundMoney(o.Totals.Total - o.Totals.PaidAmount + o.Totals.RefundedAmount)
}

// CalculateShipping calcule le coût d'expédition : tarif de base de la méthode
// plus poids facturable × tarif au kg. Le poids facturable est le maximum du
// poids réel et du poids volumétrique (L×l×H / 5000). Fonction pure.
func CalculateShipping(weight float64, dims Dimensions, method string) (float64, error) {
	rate, ok := shippingRates[method]
	if !ok {
		return 0, &ValidationError{Field: "method", Message: "méthode d'expédition inconnue"}
	}
	dimensionalWeight := dims.Length * dims.Width * dims.Height / dimensionalDivisor
	billable := math.Max(weight, dimensionalWeight)
	return roundMoney(rate.Base + billable*rate.PerKg), nil
}

// roundMoney arrondit au centime pour éviter la dérive flottante cumulative
func roundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}
