// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoding

import (
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// IsPDFDocEncoded reports whether every byte of s has a PDFDocEncoding
// mapping.
func IsPDFDocEncoded(s string) bool {
	if IsUTF16(s) {
		return false
	}
	for i := 0; i < len(s); i++ {
		if pdfDocEncoding[s[i]] == NoRune {
			return false
		}
	}
	return true
}

// PDFDocDecode converts a PDFDocEncoding string to UTF-8.
func PDFDocDecode(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 || pdfDocEncoding[s[i]] != rune(s[i]) {
			goto Decode
		}
	}
	return s

Decode:
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		r[i] = pdfDocEncoding[s[i]]
	}
	return string(r)
}

// IsUTF16 reports whether s starts with a UTF-16BE byte order mark.
func IsUTF16(s string) bool {
	return len(s) >= 2 && s[0] == 0xfe && s[1] == 0xff && len(s)%2 == 0
}

// UTF16Decode decodes big-endian UTF-16 without a byte order mark. A
// trailing odd byte is dropped.
func UTF16Decode(s string) string {
	u := make([]uint16, 0, len(s)/2)
	for i := 0; i+1 < len(s); i += 2 {
		u = append(u, uint16(s[i])<<8|uint16(s[i+1]))
	}
	return string(utf16.Decode(u))
}

// Normalize applies compatibility normalization to extracted text, which
// splits ligatures and folds presentation forms.
func Normalize(s string) string {
	if norm.NFKC.IsNormalString(s) {
		return s
	}
	return norm.NFKC.String(s)
}

// ReverseIfMirrored maps characters that are mirrored in right-to-left text
// to their counterpart.
func ReverseIfMirrored(s string) string {
	return strings.Map(func(r rune) rune {
		if m, ok := mirrored[r]; ok {
			return m
		}
		return r
	}, s)
}

var mirrored = map[rune]rune{
	'(': ')', ')': '(',
	'<': '>', '>': '<',
	'[': ']', ']': '[',
	'{': '}', '}': '{',
	'«': '»', '»': '«',
}

// pdfDocEncoding maps PDFDocEncoding bytes to runes.
var pdfDocEncoding = func() [256]rune {
	var t [256]rune
	for i := range t {
		t[i] = rune(i)
	}
	for i := 0; i < 0x20; i++ {
		if i != '\t' && i != '\n' && i != '\r' && i != '\f' {
			t[i] = NoRune
		}
	}
	copy(t[0x18:0x20], []rune{'˘', 'ˇ', 'ˆ', '˙', '˝', '˛', '˚', '˜'})
	t[0x7f] = NoRune
	copy(t[0x80:0xa1], []rune{
		'•', '†', '‡', '…', '—', '–', 'ƒ', '⁄', '‹', '›', '−', '‰', '„', '“', '”', '‘',
		'’', '‚', '™', 'ﬁ', 'ﬂ', 'Ł', 'Œ', 'Š', 'Ÿ', 'Ž', 'ı', 'ł', 'œ', 'š', 'ž', NoRune,
		'€',
	})
	t[0xad] = NoRune
	return t
}()
