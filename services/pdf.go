package services

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"flightdeck/models"
	"flightdeck/pricing"
)

// Booking is the priced summary of one chosen flight.
type Booking struct {
	Flight      models.Flight       `json:"flight"`
	Params      models.SearchParams `json:"searchParams"`
	PerTraveler float64             `json:"perTraveler"`
	Total       float64             `json:"total"`
	Layovers    []int               `json:"layovers"` // minutes between segments
	IsEstimated bool                `json:"isEstimated"`
}

func NewBooking(f models.Flight, params models.SearchParams) Booking {
	perTraveler := pricing.EffectivePrice(f, 1, params.CabinClass)
	return Booking{
		Flight:      f,
		Params:      params,
		PerTraveler: perTraveler,
		Total:       pricing.EffectivePrice(f, params.Passengers, params.CabinClass),
		Layovers:    f.Layovers(),
		IsEstimated: f.Source == SourceEstimated,
	}
}

// GeneratePDFBytes renders the booking summary and returns raw bytes (no filesystem needed)
func GeneratePDFBytes(b Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	// ── Header Bar ───────────────────────────────────────────
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 210, 28, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetXY(20, 8)
	pdf.CellFormat(100, 10, "FlightDeck", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(212, 168, 67)
	pdf.SetXY(20, 18)
	pdf.CellFormat(170, 6, "Booking Summary", "", 1, "L", false, 0, "")

	pdf.SetY(35)
	pdf.SetTextColor(0, 0, 0)

	// ── Disclaimer ───────────────────────────────────────────
	pdf.SetFillColor(255, 248, 225)
	pdf.SetDrawColor(212, 168, 67)
	pdf.SetTextColor(130, 90, 20)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetLineWidth(0.4)
	y := pdf.GetY()
	pdf.Rect(20, y, 170, 12, "FD")
	pdf.SetXY(23, y+2)
	disclaimer := "This is NOT a booking confirmation. Fares for more than one traveler or premium cabins are estimates. Verify with the airline before booking."
	if b.IsEstimated {
		disclaimer = "ESTIMATED FARE - live flight data unavailable. This is NOT a booking confirmation. Verify all prices before booking."
	}
	pdf.MultiCell(164, 4, tr(disclaimer), "", "C", false)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Ln(6)

	sectionHeader := func(title string) {
		pdf.SetFillColor(13, 24, 37)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(170, 8, "  "+tr(title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.Ln(2)
	}

	row := func(label, value string) {
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(55, 7, tr(label), "", 0, "L", false, 0, "")
		pdf.SetTextColor(20, 20, 20)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(115, 7, tr(value), "", 1, "L", false, 0, "")
	}

	f := b.Flight

	// ── Trip Overview ─────────────────────────────────────────
	sectionHeader("Trip Overview")
	row("Route", fmt.Sprintf("%s -> %s", placeName(f.Departure.Airport), placeName(f.Arrival.Airport)))
	row("Departure date", fmtDateReadable(b.Params.DepartureDate))
	if b.Params.ReturnDate != "" {
		row("Return date", fmtDateReadable(b.Params.ReturnDate))
	}
	row("Travelers", fmt.Sprintf("%d x %s", max(b.Params.Passengers, 1), b.Params.CabinClass))
	row("Generated", time.Now().UTC().Format("02 Jan 2006, 15:04 UTC"))
	pdf.Ln(4)

	// ── Selected Flight ───────────────────────────────────────
	sectionHeader("Selected Flight")
	row("Airline", fmt.Sprintf("%s (%s)", f.Airline.Name, f.FlightNumber))
	row("Itinerary", formatFlightLeg(f.Departure, f.Arrival, f.Duration))
	row("Stops", stopsLabel(f.Stops))
	pdf.Ln(2)

	for i, s := range f.Segments {
		row(fmt.Sprintf("Segment %d", i+1), fmt.Sprintf("%s  %s -> %s", s.FlightNumber, s.Departure.Airport.Code, s.Arrival.Airport.Code))
		row("", formatFlightLeg(s.Departure, s.Arrival, s.Duration))
		if i < len(b.Layovers) {
			row("", fmt.Sprintf("Layover at %s: %s", s.Arrival.Airport.Code, models.FormatMinutes(b.Layovers[i])))
		}
	}
	pdf.Ln(4)

	// ── Cost Summary ──────────────────────────────────────────
	sectionHeader("Fare")
	row("Base fare", fmt.Sprintf("%s %.2f", f.Currency, f.Price))
	row("Per traveler", fmt.Sprintf("%s %.2f", f.Currency, b.PerTraveler))

	pdf.SetFillColor(212, 168, 67)
	pdf.SetTextColor(13, 24, 37)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(55, 9, "TOTAL", "", 0, "L", true, 0, "")
	pdf.CellFormat(115, 9, fmt.Sprintf("%s %.2f", f.Currency, b.Total), "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)

	// ── Footer ────────────────────────────────────────────────
	pdf.SetY(-22)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.3)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(150, 150, 150)
	pdf.CellFormat(0, 8,
		"Generated by FlightDeck - Not a booking confirmation - Prices subject to change",
		"", 0, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("PDF output failed: %w", err)
	}
	return buf.Bytes(), nil
}

func placeName(a models.Airport) string {
	if a.City != "" && !strings.EqualFold(a.City, a.Code) {
		return fmt.Sprintf("%s (%s)", a.City, a.Code)
	}
	return a.Code
}

func stopsLabel(stops int) string {
	switch stops {
	case 0:
		return "Direct"
	case 1:
		return "1 stop"
	}
	return fmt.Sprintf("%d stops", stops)
}

func fmtDateReadable(iso string) string {
	t, err := time.Parse(models.DateLayout, iso)
	if err != nil {
		return iso
	}
	return t.Format("02 Jan 2006 (Mon)")
}

func formatFlightLeg(dep, arr models.Endpoint, minutes int) string {
	depT, arrT := dep.Time(), arr.Time()
	if depT.IsZero() || arrT.IsZero() {
		if dep.At != "" && arr.At != "" {
			return dep.At + " -> " + arr.At
		}
		return "N/A"
	}
	result := fmt.Sprintf("%s -> %s", depT.Format("02 Jan 15:04"), arrT.Format("02 Jan 15:04"))
	if minutes > 0 {
		result += fmt.Sprintf(" (%s)", models.FormatMinutes(minutes))
	}
	return result
}
