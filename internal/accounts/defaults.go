package accounts

// Standard BAS names for the accounts small-business SIE exports touch
// most, used when a file declares no #KONTO for a number.
var defaultNames = map[string]string{
	"1510": "Kundfordringar",
	"1910": "Kassa",
	"1930": "Företagskonto",
	"2440": "Leverantörsskulder",
	"2611": "Utgående moms 25%",
	"2641": "Ingående moms",
	"2710": "Personalskatt",
	"3010": "Försäljning",
	"4010": "Inköp material och varor",
	"5010": "Lokalhyra",
	"6570": "Bankkostnader",
	"7010": "Löner",
	"8310": "Ränteintäkter",
	"8410": "Räntekostnader",
}
