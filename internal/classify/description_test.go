package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractParties(t *testing.T) {
	tests := []struct {
		name        string
		description string
		supplier    string
		invoiceNo   string
	}{
		{
			name:        "invoice received",
			description: "Leverantörsfaktura - Mottagen - Elektroskandia Sverige AB - 31641715",
			supplier:    "Elektroskandia Sverige AB",
			invoiceNo:   "31641715",
		},
		{
			name:        "invoice paid",
			description: "Leverantörsfaktura - Betalat - Ahlsell Sverige AB - 7466687907",
			supplier:    "Ahlsell Sverige AB",
			invoiceNo:   "7466687907",
		},
		{
			name:        "received and paid at once",
			description: "Leverantörsfaktura - MottagenBetalat - Bauhaus - 99031122",
			supplier:    "Bauhaus",
			invoiceNo:   "99031122",
		},
		{
			name:        "credit note received",
			description: "Leverantörskreditfaktura - Mottagen - Nibe AB - 4962010809",
			supplier:    "Nibe AB",
			invoiceNo:   "4962010809",
		},
		{
			name:        "credit note refunded",
			description: "Leverantörskreditfaktura - Betalat - Nibe AB - 4962010809",
			supplier:    "Nibe AB",
			invoiceNo:   "4962010809",
		},
		{
			name:        "parenthesized note after invoice number",
			description: "Leverantörsfaktura - Mottagen - Nibe AB - 4962010809 (korrigerad med verifikation A532)",
			supplier:    "Nibe AB",
			invoiceNo:   "4962010809",
		},
		{
			name:        "invoice number with trailing letters",
			description: "Leverantörsfaktura - Betalat - Bauhaus - 123ABC",
			supplier:    "Bauhaus",
			invoiceNo:   "123",
		},
		{
			name:        "blank supplier field",
			description: "Leverantörsfaktura - Betalat -  - 31641715",
			supplier:    "",
			invoiceNo:   "31641715",
		},
		{
			name:        "missing invoice field",
			description: "Leverantörsfaktura - Mottagen - Elektroskandia Sverige AB",
			supplier:    "Elektroskandia Sverige AB",
			invoiceNo:   "",
		},
		{
			name:        "freeform description",
			description: "Kortbetalning Shell 2025-03-14",
			supplier:    "",
			invoiceNo:   "",
		},
		{
			name:        "unknown first field",
			description: "Hyresfaktura - Mottagen - Vasakronan - 2209",
			supplier:    "",
			invoiceNo:   "",
		},
		{
			name:        "unknown second field",
			description: "Leverantörsfaktura - Skickad - Bauhaus - 99031122",
			supplier:    "",
			invoiceNo:   "",
		},
		{
			name:        "credit note has no combined shape",
			description: "Leverantörskreditfaktura - MottagenBetalat - Bauhaus - 99031122",
			supplier:    "",
			invoiceNo:   "",
		},
		{
			name:        "empty description",
			description: "",
			supplier:    "",
			invoiceNo:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			supplier, invoiceNo := extractParties(tt.description)
			assert.Equal(t, tt.supplier, supplier)
			assert.Equal(t, tt.invoiceNo, invoiceNo)
		})
	}
}
