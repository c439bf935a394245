package workhours

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tags an Hours result
type Kind uint8

// Result kinds. NoPunches and Incomplete must never be rendered the same way
const (
	KindNoPunches Kind = iota
	KindOK
	KindIncomplete
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindIncomplete:
		return "incomplete"
	default:
		return "none"
	}
}

// Hours is the worked-hours result for one employee-day
type Hours struct {
	kind  Kind
	value decimal.Decimal
}

// OK wraps a computed value
func OK(v decimal.Decimal) Hours { return Hours{kind: KindOK, value: v} }

// Incomplete marks a day with an unpaired punch
func Incomplete() Hours { return Hours{kind: KindIncomplete} }

// NoPunches marks a day without punches; its value is zero
func NoPunches() Hours { return Hours{kind: KindNoPunches} }

// Kind returns the result tag
func (h Hours) Kind() Kind { return h.kind }

// Value returns the numeric hours. ok is false for Incomplete
func (h Hours) Value() (v decimal.Decimal, ok bool) {
	if h.kind == KindIncomplete {
		return decimal.Zero, false
	}
	return h.value, true
}

// String renders two decimals, or "--" for Incomplete
func (h Hours) String() string {
	if v, ok := h.Value(); ok {
		return v.StringFixed(2)
	}
	return "--"
}

type hoursWire struct {
	Kind  string  `json:"kind"`
	Value *string `json:"value,omitempty"`
}

// MarshalJSON emits {"kind":"ok","value":"8.00"}, {"kind":"none","value":"0.00"} or {"kind":"incomplete"}
func (h Hours) MarshalJSON() ([]byte, error) {
	w := hoursWire{Kind: h.kind.String()}
	if v, ok := h.Value(); ok {
		s := v.StringFixed(2)
		w.Value = &s
	}
	return json.Marshal(w)
}

// UnmarshalJSON is the inverse of MarshalJSON
func (h *Hours) UnmarshalJSON(b []byte) error {
	var w hoursWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	switch w.Kind {
	case "ok":
		v := decimal.Zero
		if w.Value != nil {
			d, err := decimal.NewFromString(*w.Value)
			if err != nil {
				return err
			}
			v = d
		}
		*h = OK(v)
	case "incomplete":
		*h = Incomplete()
	default:
		*h = NoPunches()
	}
	return nil
}

// Flag is a per-punch anomaly bitmask
type Flag uint8

// Punch anomaly flags
const (
	FlagLateArrival Flag = 1 << iota
	FlagLateLunch
	FlagEarlyOver
	FlagLateOver
)

var flagNames = []struct {
	f    Flag
	name string
}{
	{FlagLateArrival, "late_arrival"},
	{FlagLateLunch, "late_lunch"},
	{FlagEarlyOver, "early_over"},
	{FlagLateOver, "late_over"},
}

// Has reports whether all bits of o are set
func (f Flag) Has(o Flag) bool { return f&o == o && o != 0 }

// Strings lists set flags in a fixed order
func (f Flag) Strings() []string {
	out := []string{}
	for _, n := range flagNames {
		if f&n.f != 0 {
			out = append(out, n.name)
		}
	}
	return out
}

func (f Flag) String() string { return strings.Join(f.Strings(), ",") }

// MarshalJSON emits the flag names as a list
func (f Flag) MarshalJSON() ([]byte, error) { return json.Marshal(f.Strings()) }
