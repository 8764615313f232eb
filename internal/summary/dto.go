package summary

import (
	"time"

	"github.com/google/uuid"
)

// InvoiceQuery selects the orders of one month, for one fleet or all fleets.
type InvoiceQuery struct {
	FleetID *uuid.UUID
	Month   int
	Year    int
}

// Line is one order on the invoice.
type Line struct {
	OrderID    uuid.UUID `json:"orderId"`
	OutDate    time.Time `json:"outDate"`
	Name       string    `json:"name"`
	Note       string    `json:"note"`
	Quantity   float64   `json:"quantity"`
	SelectUnit string    `json:"selectUnit"`
	UnitPrice  float64   `json:"unitPrice"`
	UnitSize   float64   `json:"unitSize"`
	Total      float64   `json:"total"`
}

// BoatGroup holds every line of one boat.
type BoatGroup struct {
	BoatID    uuid.UUID `json:"boatId"`
	BoatName  string    `json:"boatName"`
	FleetName string    `json:"fleetName"`
	Lines     []Line    `json:"lines"`
	Subtotal  float64   `json:"subtotal"`
}

// Section is the part of a boat group printed on one page.
type Section struct {
	BoatID    uuid.UUID `json:"boatId"`
	BoatName  string    `json:"boatName"`
	FleetName string    `json:"fleetName"`
	Continued bool      `json:"continued"`
	Lines     []Line    `json:"lines"`
	Subtotal  *float64  `json:"subtotal,omitempty"`
}

// Page is one printable page.
type Page struct {
	Number   int       `json:"number"`
	Of       int       `json:"of"`
	Last     bool      `json:"last"`
	Sections []Section `json:"sections"`
}

// Invoice is the monthly summary for a fleet (or all fleets).
type Invoice struct {
	FleetID    *uuid.UUID  `json:"fleetId"`
	FleetName  string      `json:"fleetName"`
	Month      int         `json:"month"`
	Year       int         `json:"year"`
	Period     string      `json:"period"`
	OrderCount int         `json:"orderCount"`
	Total      float64     `json:"total"`
	Groups     []BoatGroup `json:"groups"`
	Pages      []Page      `json:"pages"`
}
