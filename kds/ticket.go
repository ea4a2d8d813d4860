package kds

import (
	"time"

	"github.com/menudigital/backend/models"
)

// Urgency buckets a ticket's waiting time: under 10 minutes is nominal,
// 10-20 warning, past 20 urgent.
type Urgency string

const (
	UrgencyNominal Urgency = "nominal"
	UrgencyWarning Urgency = "warning"
	UrgencyUrgent  Urgency = "urgent"
)

// TicketUrgency is a pure function of now - createdAt, recomputed on the
// display's redraw tick rather than per render.
func TicketUrgency(createdAt, now time.Time) Urgency {
	minutes := int(now.Sub(createdAt).Minutes())
	switch {
	case minutes > 20:
		return UrgencyUrgent
	case minutes > 10:
		return UrgencyWarning
	default:
		return UrgencyNominal
	}
}

// Ticket is an order decorated for the kitchen display.
type Ticket struct {
	models.Order
	ElapsedSeconds int     `json:"elapsed_seconds"`
	Urgency        Urgency `json:"urgency"`
}

// BuildTickets decorates a feed snapshot, preserving its FIFO order.
func BuildTickets(orders []models.Order, now time.Time) []Ticket {
	tickets := make([]Ticket, len(orders))
	for i, o := range orders {
		tickets[i] = Ticket{
			Order:          o,
			ElapsedSeconds: int(now.Sub(o.CreatedAt).Seconds()),
			Urgency:        TicketUrgency(o.CreatedAt, now),
		}
	}
	return tickets
}
