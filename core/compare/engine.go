package compare

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FocuswithJustin/redline/core/wml"
)

// engine holds the state of one comparison call. Nothing is shared between
// calls, so comparisons may run concurrently.
type engine struct {
	settings   Settings
	caser      cases.Caser
	separators map[rune]bool

	// revision numbers generated w:ins and w:del markers.
	revision int

	// memo caches digests of normalized text atoms and media parts.
	memo  map[string]string
	media map[mediaKey]string

	// contentful marks source elements that produced atoms or lie on an
	// atom's ancestor chain; every other child is carried through verbatim.
	contentful map[*wml.Element]bool

	// shells maps identifiers to the elements they were assigned to, and
	// origins to the part those elements live in.
	shells  map[string]*wml.Element
	origins map[string]*wml.Part

	newUnid func() string
}

type mediaKey struct {
	pkg    *wml.Package
	target string
}

func newEngine(s Settings) *engine {
	if s.HashAlgorithm == "" {
		s.HashAlgorithm = HashSHA1
	}
	tag := language.Und
	if s.Culture != "" {
		tag = language.Make(s.Culture)
	}
	e := &engine{
		settings:   s,
		caser:      cases.Lower(tag),
		separators: make(map[rune]bool, len(s.WordSeparators)),
		memo:       map[string]string{},
		media:      map[mediaKey]string{},
		contentful: map[*wml.Element]bool{},
		shells:     map[string]*wml.Element{},
		origins:    map[string]*wml.Part{},
		newUnid: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")
		},
	}
	for _, r := range s.WordSeparators {
		e.separators[r] = true
	}
	return e
}

// register records every element of pkg under its identifier. Elements
// registered first win, so the before document must be registered first.
func (e *engine) register(pkg *wml.Package) {
	for _, part := range parts(pkg) {
		part.Root.Walk(func(el *wml.Element) bool {
			id := el.Attr(UnidAttr)
			if id == "" {
				return true
			}
			if _, ok := e.shells[id]; !ok {
				e.shells[id] = el
				e.origins[id] = part
			}
			return true
		})
	}
}

// adopt registers el under a fresh identifier and returns it.
func (e *engine) adopt(el *wml.Element, part *wml.Part) string {
	id := e.newUnid()
	e.shells[id] = el
	e.origins[id] = part
	return id
}

func (e *engine) digest(data []byte) string {
	if e.settings.HashAlgorithm == HashBLAKE3 {
		sum := blake3.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func (e *engine) digestString(s string) string {
	if h, ok := e.memo[s]; ok {
		return h
	}
	h := e.digest([]byte(s))
	e.memo[s] = h
	return h
}

// parts returns the parts of pkg that have content.
func parts(pkg *wml.Package) []*wml.Part {
	var out []*wml.Part
	for _, p := range []*wml.Part{pkg.Main, pkg.Footnotes, pkg.Endnotes} {
		if p != nil && p.Root != nil {
			out = append(out, p)
		}
	}
	return out
}
