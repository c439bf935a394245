package punch

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// display chain keeps case; the key chain also folds it
var (
	displayPool = sync.Pool{New: func() any {
		return transform.Chain(norm.NFKC, runes.Remove(runes.In(unicode.Cf)), width.Fold)
	}}
	keyPool = sync.Pool{New: func() any {
		return transform.Chain(norm.NFKC, cases.Fold(), runes.Remove(runes.In(unicode.Cf)), width.Fold)
	}}
)

// DisplayName normalizes a group or user name for use as a report key.
// Directory exports mix fullwidth digits, NBSPs and zero-width joiners
func DisplayName(s string) string { return run(&displayPool, s) }

// FoldName returns a case-insensitive comparison key for s
func FoldName(s string) string { return run(&keyPool, s) }

func run(p *sync.Pool, s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")
	tr := p.Get().(transform.Transformer)
	out, _, err := transform.String(tr, s)
	tr.Reset()
	p.Put(tr)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(out), " ")
}
