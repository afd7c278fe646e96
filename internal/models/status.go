package models

import "time"

// Table des transitions légales. cancelled et refunded sont des états terminaux.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusReturned},
	StatusDelivered:  {StatusReturned, StatusRefunded},
	StatusReturned:   {StatusRefunded},
	StatusCancelled:  {},
	StatusRefunded:   {},
}

// ValidStatus vérifie que le statut appartient à l'énumération
func ValidStatus(s OrderStatus) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo vérifie qu'une transition est autorisée par la table
func (o *Order) CanTransitionTo(target OrderStatus) bool {
	for _, allowed := range allowedTransitions[o.Status] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Transition est le seul chemin de code qui mute le statut d'une commande.
// Tout-ou-rien : si la validation échoue, aucun champ n'est modifié.
// Chaque transition réussie ajoute exactement une entrée à la timeline.
func (o *Order) Transition(target OrderStatus, note, actor string, metadata Metadata) error {
	if !ValidStatus(target) {
		return ErrUnknownStatus
	}
	if !o.CanTransitionTo(target) {
		return &InvalidTransitionError{From: o.Status, To: target}
	}

	now := time.Now()
	o.Timeline = append(o.Timeline, TimelineEntry{
		Status:    target,
		Timestamp: now,
		Note:      note,
		UpdatedBy: actor,
		Metadata:  metadata.Normalize(),
	})
	o.Status = target
	o.UpdatedAt = now

	switch target {
	case StatusConfirmed:
		o.ConfirmedAt = &now
	case StatusShipped:
		o.ShippedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
	return nil
}

// Cancel n'est légal que depuis pending, confirmed ou processing
func (o *Order) Cancel(actor, note string) error {
	switch o.Status {
	case StatusPending, StatusConfirmed, StatusProcessing:
		if note == "" {
			note = "Commande annulée"
		}
		return o.Transition(StatusCancelled, note, actor, nil)
	default:
		return &IllegalCancellationError{Status: o.Status}
	}
}

// MarkShippedViaTracking enregistre le numéro de suivi puis passe la commande
// en shipped via Transition — jamais d'affectation directe du statut.
func (o *Order) MarkShippedViaTracking(carrier, trackingNumber, actor string) error {
	if trackingNumber == "" {
		return &ValidationError{Field: "tracking_number", Message: "numéro de suivi requis"}
	}
	if err := o.Transition(StatusShipped, "Numéro de suivi ajouté", actor, Metadata{
		"carrier":         carrier,
		"tracking_number": trackingNumber,
	}); err != nil {
		return err
	}
	o.ShippingInfo.Carrier = carrier
	o.ShippingInfo.TrackingNumber = trackingNumber
	return nil
}

// MarkDeliveredViaActualDate enregistre la date de livraison effective puis
// passe la commande en delivered via Transition.
func (o *Order) MarkDeliveredViaActualDate(deliveredAt time.Time, actor string) error {
	if deliveredAt.IsZero() {
		return &ValidationError{Field: "actual_delivery_at", Message: "date de livraison requise"}
	}
	if err := o.Transition(StatusDelivered, "Livraison confirmée", actor, Metadata{
		"actual_delivery_at": deliveredAt.Format(time.RFC3339),
	}); err != nil {
		return err
	}
	o.ShippingInfo.ActualDeliveryAt = &deliveredAt
	return nil
}

// Fenêtre de retour après livraison
const ReturnWindow = 30 * 24 * time.Hour

// IsReturnEligible : retour possible uniquement si la commande est livrée
// depuis moins de 30 jours
func (o *Order) IsReturnEligible(now time.Time) bool {
	if o.Status != StatusDelivered || o.DeliveredAt == nil {
		return false
	}
	return now.Sub(*o.DeliveredAt) <= ReturnWindow
}
