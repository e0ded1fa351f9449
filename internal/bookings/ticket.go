package bookings

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

// TicketRenderer produces the downloadable entry ticket for a booking.
// Stateless; implementations must not mutate the booking.
type TicketRenderer interface {
	RenderTicket(ctx context.Context, booking *Booking) ([]byte, ContentType, error)
}

// ContentType tells the transport layer how to serve the rendered bytes.
type ContentType string

const (
	ContentTypeHTML ContentType = "text/html; charset=utf-8"
	ContentTypePDF  ContentType = "application/pdf"
)

const ticketTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Ticket {{.BookingID}}</title></head>
<body style="font-family: sans-serif; max-width: 480px; margin: 24px auto;">
  <h2 style="margin-bottom: 4px;">{{.EventTitle}}</h2>
  <p style="color: #555; margin-top: 0;">{{.EventDate}} · {{.Location}}</p>
  <hr>
  <table style="width: 100%;">
    <tr><td>Booking</td><td style="text-align: right;"><strong>{{.BookingID}}</strong></td></tr>
    <tr><td>Seats</td><td style="text-align: right;">{{.SeatCount}}</td></tr>
    <tr><td>Admits remaining</td><td style="text-align: right;">{{.RemainingScans}} of {{.ScanLimit}}</td></tr>
    <tr><td>Amount paid</td><td style="text-align: right;">{{printf "%.2f" .FinalAmount}}</td></tr>
  </table>
  <hr>
  <p style="text-align: center; font-size: 22px; letter-spacing: 3px; font-family: monospace;">{{.QRCode}}</p>
  <p style="text-align: center; color: #777;">Present this code at the gate. Each seat admits one scan.</p>
</body>
</html>`

type htmlTicketRenderer struct {
	tmpl *template.Template
}

// NewHTMLTicketRenderer returns the default renderer: a self-contained HTML
// ticket the venue gate can scan the code off. Swap in a PDF implementation
// behind the same interface when print tickets are needed.
func NewHTMLTicketRenderer() TicketRenderer {
	return &htmlTicketRenderer{
		tmpl: template.Must(template.New("ticket").Parse(ticketTemplate)),
	}
}

func (r *htmlTicketRenderer) RenderTicket(ctx context.Context, booking *Booking) ([]byte, ContentType, error) {
	data := map[string]interface{}{
		"BookingID":      booking.BookingID,
		"EventTitle":     booking.Event.Title,
		"EventDate":      booking.Event.StartDate.Format("Mon, 02 Jan 2006 15:04"),
		"Location":       booking.Event.Location,
		"SeatCount":      booking.SeatCount,
		"RemainingScans": booking.RemainingScans(),
		"ScanLimit":      booking.QRScanLimit,
		"FinalAmount":    booking.FinalAmount,
		"QRCode":         booking.QRCode,
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, "", fmt.Errorf("failed to render ticket for %s: %w", booking.BookingID, err)
	}
	return buf.Bytes(), ContentTypeHTML, nil
}
