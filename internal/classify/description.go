package classify

import (
	"regexp"
	"strings"
)

// Canonical description shapes, fields separated by " - ":
//
//	Leverantörsfaktura - Mottagen - <Supplier> - <Invoice#>[ (<note>)]
//	Leverantörsfaktura - Betalat - <Supplier> - <Invoice#>[ (<note>)]
//	Leverantörsfaktura - MottagenBetalat - <Supplier> - <Invoice#>
//	Leverantörskreditfaktura - Mottagen - <Supplier> - <Invoice#>
//	Leverantörskreditfaktura - Betalat - <Supplier> - <Invoice#>
//
// Real data carries freeform variants beyond these; extraction never
// guesses at them. Empty fields are left for downstream enrichment.
var descriptionShapes = map[string][]string{
	"Leverantörsfaktura":       {"Mottagen", "Betalat", "MottagenBetalat"},
	"Leverantörskreditfaktura": {"Mottagen", "Betalat"},
}

const fieldSeparator = " - "

var invoicePrefix = regexp.MustCompile(`^\d+`)

// extractParties returns the supplier and invoice number declared by a
// canonical voucher description, or empty strings.
func extractParties(description string) (supplier, invoiceNo string) {
	fields := strings.Split(description, fieldSeparator)
	if len(fields) < 3 {
		return "", ""
	}
	seconds, ok := descriptionShapes[strings.TrimSpace(fields[0])]
	if !ok {
		return "", ""
	}
	second := strings.TrimSpace(fields[1])
	known := false
	for _, s := range seconds {
		if second == s {
			known = true
			break
		}
	}
	if !known {
		return "", ""
	}
	supplier = strings.TrimSpace(fields[2])
	if len(fields) > 3 {
		// Digits-only prefix; a trailing parenthesized note is dropped.
		invoiceNo = invoicePrefix.FindString(strings.TrimSpace(fields[3]))
	}
	return supplier, invoiceNo
}
