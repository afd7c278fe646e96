package models

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/gocql/gocql"
)

// Statuts de commande
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusReturned   OrderStatus = "returned"
	StatusRefunded   OrderStatus = "refunded"
)

// Statuts de paiement (cycle de vie indépendant du statut logistique)
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentAuthorized    PaymentStatus = "authorized"
	PaymentCaptured      PaymentStatus = "captured"
	PaymentPartialRefund PaymentStatus = "partial_refund"
	PaymentRefunded      PaymentStatus = "refunded"
	PaymentFailed        PaymentStatus = "failed"
	PaymentCancelled     PaymentStatus = "cancelled"
)

// Metadata : valeurs libres attachées aux événements de timeline et aux erreurs.
// Restreint à string/float64/bool/map imbriquée pour rester sérialisable.
type Metadata map[string]any

// Normalize élimine les valeurs hors union autorisée (les entiers sont convertis en float64)
func (m Metadata) Normalize() Metadata {
	if m == nil {
		return nil
	}
	out := make(Metadata, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string, float64, bool:
			out[k] = val
		case int:
			out[k] = float64(val)
		case int64:
			out[k] = float64(val)
		case float32:
			out[k] = float64(val)
		case Metadata:
			out[k] = val.Normalize()
		case map[string]any:
			out[k] = Metadata(val).Normalize()
		}
	}
	return out
}

// TimelineEntry : une entrée de l'historique de statut (append-only, jamais réordonnée)
type TimelineEntry struct {
	Status    OrderStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Note      string      `json:"note,omitempty"`
	UpdatedBy string      `json:"updated_by,omitempty"`
	Metadata  Metadata    `json:"metadata,omitempty"`
}

// BundleItem : sous-ligne d'un article de type bundle
type BundleItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderItem : ligne de commande
type OrderItem struct {
	ProductID   string       `json:"product_id"`
	VariantID   string       `json:"variant_id,omitempty"`
	Name        string       `json:"name"`
	Quantity    int          `json:"quantity"`
	UnitPrice   float64      `json:"unit_price"`
	TotalPrice  float64      `json:"total_price"`
	Weight      float64      `json:"weight,omitempty"` // en kg, par unité
	BundleItems []BundleItem `json:"bundle_items,omitempty"`
}

// Adjustment : remise ou taxe appliquée à la commande
type Adjustment struct {
	Code   string  `json:"code"`
	Label  string  `json:"label,omitempty"`
	Amount float64 `json:"amount"`
}

// OrderTotals : agrégat financier dérivé, recalculé avant chaque sauvegarde
type OrderTotals struct {
	Subtotal          float64 `json:"subtotal"`
	DiscountTotal     float64 `json:"discount_total"`
	TaxTotal          float64 `json:"tax_total"`
	ShippingTotal     float64 `json:"shipping_total"`
	Total             float64 `json:"total"`
	PaidAmount        float64 `json:"paid_amount"`
	RefundedAmount    float64 `json:"refunded_amount"`
	OutstandingAmount float64 `json:"outstanding_amount"`
}

// Dimensions d'un colis en centimètres
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// ShippingInfo : informations d'expédition de la commande
type ShippingInfo struct {
	Method           string     `json:"method"`
	Carrier          string     `json:"carrier,omitempty"`
	TrackingNumber   string     `json:"tracking_number,omitempty"`
	Cost             float64    `json:"cost"`
	Weight           float64    `json:"weight"` // poids agrégé, recalculé à la sauvegarde
	Dimensions       Dimensions `json:"dimensions"`
	EstimatedDays    int        `json:"estimated_days,omitempty"`
	ActualDeliveryAt *time.Time `json:"actual_delivery_at,omitempty"`
}

// Order : racine d'agrégat du moteur de cycle de vie
type Order struct {
	OrderID       gocql.UUID      `json:"id"`
	OrderNumber   string          `json:"order_number"`
	CustomerID    string          `json:"customer_id"`
	Items         []OrderItem     `json:"items"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Timeline      []TimelineEntry `json:"timeline"`
	Totals        OrderTotals     `json:"totals"`
	Discounts     []Adjustment    `json:"discounts,omitempty"`
	Taxes         []Adjustment    `json:"taxes,omitempty"`
	ShippingInfo  ShippingInfo    `json:"shipping_info"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
	ShippedAt     *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty"`
	CancelledAt   *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// GenerateOrderNumber génère un numéro unique: timestamp + suffixe aléatoire
func GenerateOrderNumber() string {
	suffix := make([]byte, 2)
	rand.Read(suffix)
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), hex.EncodeToString(suffix))
}

// NewOrder crée une commande au statut pending avec sa première entrée de timeline.
// Les commandes vides ou à quantité nulle sont refusées.
func NewOrder(customerID string, items []OrderItem) (*Order, error) {
	if customerID == "" {
		return nil, &ValidationError{Field: "customer_id", Message: "identifiant client requis"}
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for i := range items {
		if items[i].Quantity < 1 {
			return nil, &ValidationError{
				Field:   fmt.Sprintf("items[%d].quantity", i),
				Message: "la quantité doit être au moins 1",
			}
		}
		// Le total de ligne est dérivé, jamais fourni par le client
		items[i].TotalPrice = items[i].UnitPrice * float64(items[i].Quantity)
	}

	now := time.Now()
	order := &Order{
		OrderID:       gocql.TimeUUID(),
		OrderNumber:   GenerateOrderNumber(),
		CustomerID:    customerID,
		Items:         items,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Timeline: []TimelineEntry{{
			Status:    StatusPending,
			Timestamp: now,
			Note:      "Commande créée",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.RecomputeTotals()
	return order, nil
}

// ApplyPayment enregistre un encaissement et met à jour le solde dû
func (o *Order) ApplyPayment(amount float64, status PaymentStatus) error {
	if amount < 0 {
		return &ValidationError{Field: "amount", Message: "montant négatif"}
	}
	o.Totals.PaidAmount += amount
	if status != "" {
		o.PaymentStatus = status
	}
	o.RecomputeTotals()
	return nil
}

// ApplyRefund enregistre un remboursement et met à jour le solde dû
func (o *Order) ApplyRefund(amount float64) error {
	if amount < 0 {
		return &ValidationError{Field: "amount", Message: "montant négatif"}
	}
	o.Totals.RefundedAmount += amount
	if o.Totals.RefundedAmount >= o.Totals.PaidAmount && o.Totals.PaidAmount > 0 {
		o.PaymentStatus = PaymentRefunded
	} else if o.Totals.RefundedAmount > 0 {
		o.PaymentStatus = PaymentPartialRefund
	}
	o.RecomputeTotals()
	return nil
}
