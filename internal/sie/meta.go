package sie

import (
	"strconv"
	"strings"
	"time"
)

// Meta holds the header directives of a SIE file. The decoder records them
// without interpreting beyond the encoding; the chart of accounts and the
// report currency are read from here by callers.
type Meta struct {
	Company   string            // #FNAMN
	OrgNumber string            // #ORGNR
	Currency  string            // #VALUTA, empty when the file declares none
	Format    string            // #FORMAT
	Generated time.Time         // #GEN
	Encoding  string            // selected by the probe
	Years     map[int]YearRange // #RAR, keyed by year index (0 current, -1 previous)
	Accounts  map[string]string // #KONTO, account number to name
}

// YearRange is one #RAR fiscal-year declaration.
type YearRange struct {
	Start time.Time
	End   time.Time
}

// Header directives that carry no data the reconciliation needs. They are
// accepted silently to keep decode logs readable.
var ignoredDirectives = map[string]bool{
	"#FLAGGA":  true,
	"#PROGRAM": true,
	"#SIETYP":  true,
	"#KPTYP":   true,
	"#ADRESS":  true,
	"#FTYP":    true,
	"#OMFATTN": true,
	"#TAXAR":   true,
	"#IB":      true,
	"#UB":      true,
	"#RES":     true,
	"#DIM":     true,
	"#OBJEKT":  true,
	"#ENHET":   true,
	"#SRU":     true,
	"#BKOD":    true,
	"#PROSA":   true,
}

func (d *Decoder) parseHeader(meta *Meta, line string, lineNo int) {
	fields := splitFields(line)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "#FNAMN":
		if len(fields) > 1 {
			meta.Company = fields[1]
		}
	case "#ORGNR":
		if len(fields) > 1 {
			meta.OrgNumber = fields[1]
		}
	case "#VALUTA":
		if len(fields) > 1 {
			meta.Currency = fields[1]
		}
	case "#FORMAT":
		if len(fields) > 1 {
			meta.Format = fields[1]
		}
	case "#GEN":
		if len(fields) > 1 {
			if ts, err := time.Parse(sieDateFormat, fields[1]); err == nil {
				meta.Generated = ts
			} else {
				d.log.Warn().Int("line", lineNo).Str("text", line).Msg("unparseable #GEN date")
			}
		}
	case "#RAR":
		d.parseRAR(meta, fields, line, lineNo)
	case "#KONTO":
		if len(fields) > 2 {
			meta.Accounts[fields[1]] = fields[2]
		} else {
			d.log.Warn().Int("line", lineNo).Str("text", line).Msg("incomplete #KONTO directive")
		}
	default:
		if !ignoredDirectives[fields[0]] {
			d.log.Warn().Int("line", lineNo).Str("directive", fields[0]).Msg("unrecognized header directive")
		}
	}
}

func (d *Decoder) parseRAR(meta *Meta, fields []string, line string, lineNo int) {
	if len(fields) < 4 {
		d.log.Warn().Int("line", lineNo).Str("text", line).Msg("incomplete #RAR directive")
		return
	}
	index, err := strconv.Atoi(fields[1])
	if err != nil {
		d.log.Warn().Int("line", lineNo).Str("text", line).Msg("unparseable #RAR index")
		return
	}
	start, err := time.Parse(sieDateFormat, fields[2])
	if err != nil {
		d.log.Warn().Int("line", lineNo).Str("text", line).Msg("unparseable #RAR start date")
		return
	}
	end, err := time.Parse(sieDateFormat, fields[3])
	if err != nil {
		d.log.Warn().Int("line", lineNo).Str("text", line).Msg("unparseable #RAR end date")
		return
	}
	meta.Years[index] = YearRange{Start: start, End: end}
}

// splitFields splits a directive line into fields, honoring double quotes.
func splitFields(s string) []string {
	var out []string
	var cur strings.Builder
	inQuote := false
	quoted := false
	flush := func() {
		if cur.Len() > 0 || quoted {
			out = append(out, cur.String())
		}
		cur.Reset()
		quoted = false
	}
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			quoted = true
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// unquote strips one pair of surrounding double quotes, if present.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
