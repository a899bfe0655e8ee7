package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"flightdeck/models"
	"flightdeck/services"
)

func (h *Handler) booking(c *gin.Context) (services.Booking, bool) {
	st, ok := h.session(c)
	if !ok {
		return services.Booking{}, false
	}
	f, found := st.Flight(c.Param("flightId"))
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Flight not found"})
		return services.Booking{}, false
	}
	return services.NewBooking(f, st.Params()), true
}

// Booking returns the priced summary of one loaded flight.
func (h *Handler) Booking(c *gin.Context) {
	b, ok := h.booking(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) DownloadBooking(c *gin.Context) {
	b, ok := h.booking(c)
	if !ok {
		return
	}

	pdfBytes, err := services.GeneratePDFBytes(b)
	if err != nil {
		log.Printf("❌ PDF generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate PDF"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", bookingFilename(b.Flight)))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func bookingFilename(f models.Flight) string {
	return fmt.Sprintf("flightdeck-%s-%s-%s.pdf", f.Departure.Airport.Code, f.Arrival.Airport.Code, f.FlightNumber)
}
