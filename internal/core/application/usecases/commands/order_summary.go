package commands

import (
	"fmt"
	"strings"

	"orderflow/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
)

// OrderSummaryText renders the operations chat message for a new order.
//
// Example output:
//
//	🧾 New order #42
//	Customer: Sam Smith (+447700900123)
//	• 2 x Salt beef bagel @ £10.00 = £20.00
//	Subtotal: £20.00
//	Delivery fee: £5.00
//	Total: £25.00
//	Delivery to: 1 High St, E1 6AN (asap)
//	Payment: card pi_123
func OrderSummaryText(o *order.Order, customerName, customerPhone string) string {
	md := o.Metadata()

	var b strings.Builder
	fmt.Fprintf(&b, "🧾 New order #%d\n", o.ID())

	customerLine := customerName
	if customerLine == "" {
		customerLine = "unknown"
	}
	if customerPhone != "" {
		customerLine += " (" + customerPhone + ")"
	}
	fmt.Fprintf(&b, "Customer: %s\n", customerLine)

	for _, line := range md.Basket {
		name := line.Name
		if name == "" {
			name = line.ProductID
		}
		fmt.Fprintf(&b, "• %d x %s @ %s = %s\n", line.Quantity, name, pounds(line.UnitPrice), pounds(line.LineTotal()))
	}

	fmt.Fprintf(&b, "Subtotal: %s\n", pounds(o.Subtotal()))
	fmt.Fprintf(&b, "Delivery fee: %s\n", pounds(o.DeliveryFee()))
	fmt.Fprintf(&b, "Total: %s\n", pounds(o.Total()))

	if md.Delivery.IsDelivery {
		destination := md.Delivery.Address
		if md.Delivery.Postcode != "" {
			destination += ", " + md.Delivery.Postcode
		}
		when := md.Delivery.ScheduledFor
		if when == "" {
			when = "asap"
		}
		fmt.Fprintf(&b, "Delivery to: %s (%s)\n", destination, when)
	} else {
		b.WriteString("Collection in store\n")
	}

	if md.Delivery.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", md.Delivery.Notes)
	}

	method := md.Payment.Method
	if method == "" {
		method = "card"
	}
	fmt.Fprintf(&b, "Payment: %s %s", method, md.Payment.PaymentIntentID)

	return b.String()
}

func pounds(d decimal.Decimal) string {
	return "£" + d.StringFixed(2)
}
