// Package sie decodes SIE type 4 accounting exports: a line-oriented
// format of header directives followed by #VER voucher blocks of #TRANS
// transaction lines, in one of the legacy PC8 encodings.
package sie

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/levmatch/levmatch/internal/model"
)

const sieDateFormat = "20060102"

var (
	verPattern   = regexp.MustCompile(`^#VER\s+([A-Za-z0-9]+)\s+(\S+)\s+(\d{8})\s+("[^"]*"|\S+)(?:\s+(\d{8}))?$`)
	transPattern = regexp.MustCompile(`^#TRANS\s+(\d+)\s+\{[^}]*\}\s+(-?\d+\.?\d*)(?:\s+(\d{8}))?(?:\s+(.+))?$`)
)

// File is one decoded SIE file.
type File struct {
	Meta     Meta
	Vouchers []model.Voucher
}

// Decoder turns SIE byte streams into vouchers. Per-voucher problems are
// logged and the voucher skipped; only unreadable input or an exhausted
// encoding probe is fatal.
type Decoder struct {
	cfg model.Config
	log zerolog.Logger
}

// NewDecoder returns a Decoder using cfg's balance tolerance.
func NewDecoder(cfg model.Config, log zerolog.Logger) *Decoder {
	return &Decoder{cfg: cfg, log: log}
}

// DecodeFile reads and decodes the SIE file at path.
func (d *Decoder) DecodeFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading SIE file: %w", err)
	}
	f, err := d.Decode(data)
	if err != nil {
		var encErr *EncodingError
		if errors.As(err, &encErr) {
			encErr.Path = path
		}
		return nil, err
	}
	return f, nil
}

// Decode probes the encoding and parses the voucher stream. The state
// machine is two-state: outside a block, a parsed #VER is staged until its
// opening brace; inside, #TRANS lines accumulate until the closing brace.
func (d *Decoder) Decode(data []byte) (*File, error) {
	text, encoding, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	f := &File{Meta: Meta{
		Encoding: encoding,
		Years:    make(map[int]YearRange),
		Accounts: make(map[string]string),
	}}

	var staged *model.Voucher  // parsed #VER waiting for its { block
	var current *model.Voucher // block in progress
	malformed := false         // current voucher had an unparseable line

	for lineNo, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		n := lineNo + 1
		if line == "" {
			continue
		}

		if current != nil {
			switch {
			case strings.HasPrefix(line, "#TRANS"):
				if malformed {
					continue
				}
				tx, err := parseTrans(line)
				if err != nil {
					d.log.Error().Int("line", n).Str("voucher", current.ID()).Err(err).
						Msg("unparseable transaction, dropping voucher")
					malformed = true
					continue
				}
				current.Transactions = append(current.Transactions, tx)
			case strings.HasPrefix(line, "}"):
				if !malformed {
					d.finish(f, current)
				}
				current = nil
				malformed = false
			default:
				d.log.Warn().Int("line", n).Str("voucher", current.ID()).Str("text", line).
					Msg("ignoring non-transaction line in voucher block")
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "#VER"):
			if staged != nil {
				d.log.Warn().Str("voucher", staged.ID()).Msg("voucher block never opened, dropping")
			}
			var open bool
			staged, open = d.parseVer(line, n)
			if open && staged != nil {
				current, staged = staged, nil
			}
		case strings.HasPrefix(line, "{"):
			if staged == nil {
				d.log.Warn().Int("line", n).Msg("block start without #VER")
				continue
			}
			current, staged = staged, nil
		case strings.HasPrefix(line, "#"):
			d.parseHeader(&f.Meta, line, n)
		default:
			d.log.Warn().Int("line", n).Str("text", line).Msg("ignoring unrecognized line")
		}
	}

	if staged != nil {
		d.log.Warn().Str("voucher", staged.ID()).Msg("voucher block never opened, dropping")
	}
	if current != nil {
		d.log.Warn().Str("voucher", current.ID()).Msg("unterminated voucher block, dropping")
	}

	d.log.Info().Int("vouchers", len(f.Vouchers)).Str("encoding", encoding).Msg("decoded SIE input")
	return f, nil
}

// finish runs the balance check and emits the voucher. Unbalanced vouchers
// are emitted anyway: the run must reproduce the books faithfully, and
// rejecting them would silently lose records.
func (d *Decoder) finish(f *File, v *model.Voucher) {
	if len(v.Transactions) == 0 {
		d.log.Warn().Str("voucher", v.ID()).Msg("voucher has no transactions, dropping")
		return
	}
	if !v.Balanced(d.cfg.AmountTolerance) {
		d.log.Warn().Str("voucher", v.ID()).Str("balance", v.Balance().String()).
			Msg("voucher does not balance")
	}
	f.Vouchers = append(f.Vouchers, *v)
}

// parseVer parses a #VER line. The description may be a bare token or a
// double-quoted string, optionally followed by a registration date; the
// opening brace may share the line.
func (d *Decoder) parseVer(line string, lineNo int) (*model.Voucher, bool) {
	open := false
	if strings.HasSuffix(line, "{") {
		open = true
		line = strings.TrimSpace(strings.TrimSuffix(line, "{"))
	}
	m := verPattern.FindStringSubmatch(line)
	if m == nil {
		d.log.Warn().Int("line", lineNo).Str("text", line).Msg("unparseable #VER line, skipping voucher")
		return nil, false
	}
	number, err := strconv.Atoi(strings.Trim(m[2], `"`))
	if err != nil {
		d.log.Warn().Int("line", lineNo).Str("text", line).Msg("non-numeric voucher number, skipping voucher")
		return nil, false
	}
	date, err := time.Parse(sieDateFormat, m[3])
	if err != nil {
		d.log.Warn().Int("line", lineNo).Str("text", line).Msg("invalid voucher date, skipping voucher")
		return nil, false
	}
	v := &model.Voucher{
		Series:      m[1],
		Number:      number,
		Date:        date,
		Description: unquote(m[4]),
	}
	if m[5] != "" {
		regDate, err := time.Parse(sieDateFormat, m[5])
		if err != nil {
			d.log.Warn().Int("line", lineNo).Str("voucher", v.ID()).Msg("invalid registration date")
		} else {
			v.RegDate = regDate
		}
	}
	return v, open
}

// parseTrans parses one #TRANS line. The object list between braces is
// accepted but not interpreted. Amounts use a period decimal separator.
func parseTrans(line string) (model.Transaction, error) {
	m := transPattern.FindStringSubmatch(line)
	if m == nil {
		return model.Transaction{}, fmt.Errorf("line does not match #TRANS grammar")
	}
	amount, err := decimal.NewFromString(m[2])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", m[2], err)
	}
	tx := model.Transaction{Account: m[1], Amount: amount}
	if m[3] != "" {
		date, err := time.Parse(sieDateFormat, m[3])
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing date %q: %w", m[3], err)
		}
		tx.Date = date
	}
	if m[4] != "" {
		tx.Description = unquote(strings.TrimSpace(m[4]))
	}
	return tx, nil
}
