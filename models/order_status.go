package models

// Order lifecycle. New orders enter as pending_whatsapp (sent via the
// messaging deep link, unconfirmed until staff act) or pending_payment
// (awaiting the gateway notification that flips them to paid). The kitchen
// moves tickets paid/pending_whatsapp -> cooking -> ready -> delivered.
const (
	OrderStatusPendingWhatsApp = "pending_whatsapp"
	OrderStatusPendingPayment  = "pending_payment"
	OrderStatusPaid            = "paid"
	OrderStatusCooking         = "cooking"
	OrderStatusReady           = "ready"
	OrderStatusDelivered       = "delivered"
	OrderStatusCancelled       = "cancelled"
)

var orderTransitions = map[string][]string{
	OrderStatusPendingWhatsApp: {OrderStatusCooking, OrderStatusCancelled},
	OrderStatusPendingPayment:  {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:            {OrderStatusCooking, OrderStatusCancelled},
	OrderStatusCooking:         {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:           {OrderStatusDelivered, OrderStatusCancelled},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a status removes the order from the
// active kitchen view for good.
func IsTerminalStatus(status string) bool {
	return status == OrderStatusDelivered || status == OrderStatusCancelled
}

// ActiveOrderStatuses are the statuses shown on the kitchen display,
// queried oldest-first on load.
func ActiveOrderStatuses() []string {
	return []string{OrderStatusPendingWhatsApp, OrderStatusPaid, OrderStatusCooking, OrderStatusReady}
}

// AdmitsToKitchen reports whether a freshly inserted order belongs on the
// kitchen display. pending_payment orders only show up once paid.
func AdmitsToKitchen(status string) bool {
	return status == OrderStatusPendingWhatsApp || status == OrderStatusPaid
}
