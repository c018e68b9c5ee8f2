package statues

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayKind selects how Format renders probabilities.
type DisplayKind string

// Display kinds: stored weights, fractions over a common denominator,
// decimals, percentages and histogram bars. A trailing '-' appends a bar
// to the number.
const (
	DisplayStored        DisplayKind = ""
	DisplayFraction      DisplayKind = "/"
	DisplayDecimal       DisplayKind = "."
	DisplayPercent       DisplayKind = "%"
	DisplayHistogram     DisplayKind = "-"
	DisplayFractionHisto DisplayKind = "/-"
	DisplayDecimalHisto  DisplayKind = ".-"
	DisplayPercentHisto  DisplayKind = "%-"
)

// Valid reports whether k is a known display kind.
func (k DisplayKind) Valid() bool {
	switch k {
	case DisplayStored, DisplayFraction, DisplayDecimal, DisplayPercent, DisplayHistogram,
		DisplayFractionHisto, DisplayDecimalHisto, DisplayPercentHisto:
		return true
	}
	return false
}

// FormatConfig controls Format.
type FormatConfig struct {
	Kind      DisplayKind
	Decimals  int          // digits after the point for '.' and '%'
	HistoSize int          // bar length standing for probability 1
	Locale    language.Tag // number formatting for '.' and '%'
}

// DefaultFormatConfig returns sensible defaults.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{
		Kind:      DisplayStored,
		Decimals:  6,
		HistoSize: 100,
		Locale:    language.English,
	}
}

// Format renders l one line per value, "value : probability", values
// right-aligned. An unknown kind is a DomainError.
func Format[P Prob[P]](l *Leaf[P], cfg FormatConfig) (string, error) {
	if !cfg.Kind.Valid() {
		return "", domainf("invalid display format '%s'; should be among '/', '.', '%%', '-', '/-', '.-', '%%-'", cfg.Kind)
	}
	if cfg.Decimals < 0 {
		cfg.Decimals = 0
	}
	lines := make([]string, len(l.d.vals))
	width := 0
	for i, v := range l.d.vals {
		lines[i] = formatValue(v)
		if n := utf8.RuneCountInString(lines[i]); n > width {
			width = n
		}
	}
	for i := range lines {
		lines[i] = pad(lines[i], width) + " : "
	}

	kind := string(cfg.Kind)
	printer := message.NewPrinter(cfg.Locale)
	switch {
	case kind == "":
		for i, p := range l.d.ps {
			lines[i] += p.String()
		}
	case kind[0] == '/':
		nums, den, err := commonDenominator(l.d.ps)
		if err != nil {
			return "", err
		}
		numWidth := 0
		for _, n := range nums {
			if len(n.String()) > numWidth {
				numWidth = len(n.String())
			}
		}
		suffix := ""
		if den.Cmp(big.NewInt(1)) != 0 {
			suffix = "/" + den.String()
		}
		for i, n := range nums {
			lines[i] += pad(n.String(), numWidth) + suffix
		}
	case kind[0] == '.':
		format := fmt.Sprintf("%%.%df", cfg.Decimals)
		for i, p := range l.d.ps {
			f, err := approx(p)
			if err != nil {
				return "", err
			}
			lines[i] += printer.Sprintf(format, f)
		}
	case kind[0] == '%':
		format := fmt.Sprintf("%%%d.%df %%%%", 4+cfg.Decimals, cfg.Decimals)
		for i, p := range l.d.ps {
			f, err := approx(p)
			if err != nil {
				return "", err
			}
			lines[i] += printer.Sprintf(format, 100*f)
		}
	}
	if kind != "" && kind[len(kind)-1] == '-' {
		for i, p := range l.d.ps {
			f, err := approx(p)
			if err != nil {
				return "", err
			}
			lines[i] += " " + strings.Repeat("-", int(0.5+f*float64(cfg.HistoSize)))
		}
	}
	return strings.Join(lines, "\n"), nil
}

// Histogram is Format with DisplayHistogram and the given bar size.
func Histogram[P Prob[P]](l *Leaf[P], size int) (string, error) {
	cfg := DefaultFormatConfig()
	cfg.Kind = DisplayHistogram
	cfg.HistoSize = size
	return Format(l, cfg)
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}

// exactRat converts a weight to a rational. Domains exposing Big are exact;
// float weights go through their shortest decimal representation.
func exactRat[P Prob[P]](p P) (*big.Rat, error) {
	if b, ok := any(p).(interface{ Big() *big.Rat }); ok {
		return b.Big(), nil
	}
	f, err := approx(p)
	if err != nil {
		return nil, err
	}
	r, ok := new(big.Rat).SetString(strconv.FormatFloat(f, 'g', -1, 64))
	if !ok {
		return nil, domainf("probability %s has no rational value", p)
	}
	return r, nil
}

// commonDenominator writes ps as numerators over their least common
// denominator, renormalizing first when they do not sum to one.
func commonDenominator[P Prob[P]](ps []P) ([]*big.Int, *big.Int, error) {
	rats := make([]*big.Rat, len(ps))
	total := new(big.Rat)
	for i, p := range ps {
		r, err := exactRat(p)
		if err != nil {
			return nil, nil, err
		}
		rats[i] = r
		total.Add(total, r)
	}
	if total.Sign() != 0 && total.Cmp(big.NewRat(1, 1)) != 0 {
		for _, r := range rats {
			r.Quo(r, total)
		}
	}
	den := big.NewInt(1)
	for _, r := range rats {
		d := r.Denom()
		g := new(big.Int).GCD(nil, nil, den, d)
		den.Mul(den, new(big.Int).Quo(d, g))
	}
	nums := make([]*big.Int, len(rats))
	for i, r := range rats {
		n := new(big.Int).Mul(r.Num(), den)
		nums[i] = n.Quo(n, r.Denom())
	}
	return nums, den, nil
}
