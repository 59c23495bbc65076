package encoding

import (
	"sort"
	"strings"
)

type codeRange struct {
	lo, hi uint32
}

type cidRange struct {
	n      int
	lo, hi uint32
	cid    uint32
}

// A CMap maps multi-byte character codes to CIDs. Codes are split from a
// string according to the codespace ranges, one to four bytes each.
type CMap struct {
	Name     string
	Vertical bool

	codespace [4][]codeRange
	ranges    []cidRange
	singles   map[uint32]uint32
	identity  bool
}

// NewCMap returns an empty CMap.
func NewCMap(name string) *CMap {
	return &CMap{Name: name, singles: make(map[uint32]uint32)}
}

// IdentityCMap returns the predefined Identity-H or Identity-V CMap, which
// uses two-byte codes equal to their CID.
func IdentityCMap(vertical bool) *CMap {
	name := "Identity-H"
	if vertical {
		name = "Identity-V"
	}
	m := NewCMap(name)
	m.Vertical = vertical
	m.identity = true
	m.AddCodespace(2, 0, 0xffff)
	return m
}

// IsIdentity reports whether m maps every two-byte code to itself.
func (m *CMap) IsIdentity() bool { return m.identity }

// AddCodespace adds a range of valid n-byte codes.
func (m *CMap) AddCodespace(n int, lo, hi uint32) {
	if n < 1 || n > 4 {
		return
	}
	m.codespace[n-1] = append(m.codespace[n-1], codeRange{lo, hi})
}

// HasCodespace reports whether any codespace range is defined.
func (m *CMap) HasCodespace() bool {
	for _, cs := range m.codespace {
		if len(cs) > 0 {
			return true
		}
	}
	return false
}

// AddCIDRange maps the n-byte codes lo..hi to consecutive CIDs from cid.
func (m *CMap) AddCIDRange(n int, lo, hi, cid uint32) {
	if hi < lo {
		return
	}
	if hi == lo {
		m.singles[lo] = cid
		return
	}
	m.ranges = append(m.ranges, cidRange{n: n, lo: lo, hi: hi, cid: cid})
}

// AddCID maps one code to a CID.
func (m *CMap) AddCID(code, cid uint32) {
	m.singles[code] = cid
}

// UseCMap copies the codespaces and mappings of parent into m. Entries
// already in m take precedence.
func (m *CMap) UseCMap(parent *CMap) {
	for i := range parent.codespace {
		m.codespace[i] = append(m.codespace[i], parent.codespace[i]...)
	}
	m.ranges = append(append([]cidRange(nil), parent.ranges...), m.ranges...)
	for code, cid := range parent.singles {
		if _, ok := m.singles[code]; !ok {
			m.singles[code] = cid
		}
	}
	if parent.identity && len(m.ranges) == 0 && len(m.singles) == 0 {
		m.identity = true
	}
	if !m.Vertical {
		m.Vertical = parent.Vertical
	}
}

// Next splits the first code off raw and returns it with its length in
// bytes. When no codespace matches, a single byte is consumed.
func (m *CMap) Next(raw string) (code uint32, n int) {
	for i := 0; i < 4 && i < len(raw); i++ {
		code = code<<8 | uint32(raw[i])
		for _, r := range m.codespace[i] {
			if r.lo <= code && code <= r.hi {
				return code, i + 1
			}
		}
	}
	if len(raw) == 0 {
		return 0, 0
	}
	// Fall back to the shortest length defined.
	for i := range m.codespace {
		if len(m.codespace[i]) > 0 && i < len(raw) {
			code = 0
			for j := 0; j <= i; j++ {
				code = code<<8 | uint32(raw[j])
			}
			return code, i + 1
		}
	}
	return uint32(raw[0]), 1
}

// Each calls fn for every code with an explicit mapping. Ranges longer
// than 0x10000 codes are cut short.
func (m *CMap) Each(fn func(code, cid uint32)) {
	for _, r := range m.ranges {
		for c := r.lo; c <= r.hi && c-r.lo < 0x10000; c++ {
			if _, ok := m.singles[c]; !ok {
				fn(c, r.cid+c-r.lo)
			}
		}
	}
	for code, cid := range m.singles {
		fn(code, cid)
	}
}

// Lookup returns the CID for code.
func (m *CMap) Lookup(code uint32) (uint32, bool) {
	if cid, ok := m.singles[code]; ok {
		return cid, true
	}
	for i := len(m.ranges) - 1; i >= 0; i-- {
		r := m.ranges[i]
		if r.lo <= code && code <= r.hi {
			return r.cid + code - r.lo, true
		}
	}
	if m.identity {
		return code, true
	}
	return 0, false
}

// A ToUnicode maps character codes to text.
type ToUnicode struct {
	m        map[uint32]string
	identity bool
}

// NewToUnicode returns an empty mapping.
func NewToUnicode() *ToUnicode {
	return &ToUnicode{m: make(map[uint32]string)}
}

// IdentityToUnicode maps each code below 0x10000, other than surrogates,
// to the rune of the same value. Explicit entries added later take
// precedence.
func IdentityToUnicode() *ToUnicode {
	t := NewToUnicode()
	t.identity = true
	return t
}

// IsIdentity reports whether unmapped codes fall back to themselves.
func (t *ToUnicode) IsIdentity() bool { return t != nil && t.identity }

// Set maps code to s.
func (t *ToUnicode) Set(code uint32, s string) { t.m[code] = s }

// SetRange maps lo..hi to dst with its last character incremented for each
// code after lo.
func (t *ToUnicode) SetRange(lo, hi uint32, dst string) {
	rr := []rune(dst)
	if len(rr) == 0 || hi < lo || hi-lo > 0xffff {
		return
	}
	for c := lo; ; c++ {
		t.m[c] = string(rr)
		if c == hi {
			break
		}
		rr[len(rr)-1]++
	}
}

// Get returns the text for code.
func (t *ToUnicode) Get(code uint32) (string, bool) {
	if t == nil {
		return "", false
	}
	s, ok := t.m[code]
	if !ok && t.identity && code < 0x10000 && (code < 0xd800 || code > 0xdfff) {
		return string(rune(code)), true
	}
	return s, ok
}

// Len returns the number of explicitly mapped codes.
func (t *ToUnicode) Len() int {
	if t == nil {
		return 0
	}
	return len(t.m)
}

// Fill sets every code for which t has no mapping from other.
func (t *ToUnicode) Fill(other *ToUnicode) {
	if other == nil {
		return
	}
	for c, s := range other.m {
		if _, ok := t.m[c]; !ok {
			t.m[c] = s
		}
	}
}

// String renders the mapping in code order, for debugging.
func (t *ToUnicode) String() string {
	codes := make([]uint32, 0, len(t.m))
	for c := range t.m {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	var b strings.Builder
	for _, c := range codes {
		b.WriteString(t.m[c])
	}
	return b.String()
}
