// Package textio reads transcript text in whatever encoding it was saved in
// and returns NFC-normalized UTF-8.
package textio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Encoding names the encoding a text was decoded from.
type Encoding string

const (
	UTF8     Encoding = "utf-8"
	UTF16    Encoding = "utf-16"
	UTF16LE  Encoding = "utf-16le"
	UTF16BE  Encoding = "utf-16be"
	CP949    Encoding = "cp949"
	Fallback Encoding = "utf-8-replace"
)

// DecodeError reports that no candidate encoding decoded the input cleanly.
// The accompanying text is still usable; invalid bytes became U+FFFD.
type DecodeError struct {
	Path  string
	Tried []Encoding
}

func (e *DecodeError) Error() string {
	names := make([]string, len(e.Tried))
	for i, enc := range e.Tried {
		names[i] = string(enc)
	}
	if e.Path == "" {
		return fmt.Sprintf("no encoding fits input (tried %s)", strings.Join(names, ", "))
	}
	return fmt.Sprintf("no encoding fits %s (tried %s)", e.Path, strings.Join(names, ", "))
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

type candidate struct {
	name Encoding
	enc  encoding.Encoding
	fits func([]byte) bool
}

var (
	utf16BOM = candidate{UTF16, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), hasUTF16BOM}
	utf16LE  = candidate{UTF16LE, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), looksUTF16(1)}
	utf16BE  = candidate{UTF16BE, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), looksUTF16(0)}
	cp949    = candidate{CP949, korean.EUCKR, func([]byte) bool { return true }}
)

// Decode converts data to NFC-normalized UTF-8 and reports the encoding it
// used. A leading byte order mark is dropped. When nothing fits, Decode
// returns best-effort text together with a *DecodeError.
//
// Input without NUL bytes holds no ASCII if it is UTF-16, so the byte
// parity test cannot tell it from CP949. Such input is decoded every way
// that works and the reading with the most common Hangul syllables wins.
func Decode(data []byte) (string, Encoding, error) {
	if utf8.Valid(data) {
		return normalize(bytes.TrimPrefix(data, bomUTF8)), UTF8, nil
	}

	tried := []Encoding{UTF8}
	decode := func(c candidate) (string, bool) {
		tried = append(tried, c.name)
		out, _, err := transform.Bytes(c.enc.NewDecoder(), data)
		if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
			return "", false
		}
		return normalize(bytes.TrimPrefix(out, bomUTF8)), true
	}

	if utf16BOM.fits(data) {
		if text, ok := decode(utf16BOM); ok {
			return text, UTF16, nil
		}
	}

	if bytes.IndexByte(data, 0) >= 0 {
		for _, c := range []candidate{utf16LE, utf16BE, cp949} {
			if !c.fits(data) {
				continue
			}
			if text, ok := decode(c); ok {
				return text, c.name, nil
			}
		}
	} else {
		best, bestEnc, bestScore := "", Encoding(""), -1.0
		for _, c := range []candidate{cp949, utf16LE, utf16BE} {
			if c.name != CP949 && len(data)%2 != 0 {
				continue
			}
			text, ok := decode(c)
			if !ok {
				continue
			}
			score := commonHangulScore(text)
			if c.name != CP949 && score < minUTF16Score {
				continue
			}
			if score > bestScore {
				best, bestEnc, bestScore = text, c.name, score
			}
		}
		if bestEnc != "" {
			return best, bestEnc, nil
		}
	}

	text := strings.ToValidUTF8(string(data), string(utf8.RuneError))
	return normalize([]byte(strings.TrimPrefix(text, string(bomUTF8)))),
		Fallback, &DecodeError{Tried: tried}
}

// minUTF16Score is the least commonHangulScore a BOM-less, NUL-less UTF-16
// reading needs.
const minUTF16Score = 0.5

// commonHangulScore is the share of runes in s that are ASCII or one of the
// 2350 KS X 1001 syllables. Misread bytes mostly land on rare syllables or
// private-use runes.
func commonHangulScore(s string) float64 {
	enc := korean.EUCKR.NewEncoder()
	total, common := 0, 0
	for _, r := range s {
		total++
		if r < utf8.RuneSelf {
			common++
			continue
		}
		if r < 0xAC00 || r > 0xD7A3 {
			continue
		}
		b, err := enc.Bytes([]byte(string(r)))
		if err == nil && len(b) == 2 && b[0] >= 0xB0 && b[0] <= 0xC8 && b[1] >= 0xA1 {
			common++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(common) / float64(total)
}

// ReadFile reads and decodes path. A *DecodeError is returned alongside
// usable text; any other error means nothing was read.
func ReadFile(path string) (string, Encoding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	text, enc, err := Decode(data)
	var de *DecodeError
	if errors.As(err, &de) {
		de.Path = path
	}
	return text, enc, err
}

func normalize(b []byte) string {
	return norm.NFC.String(string(b))
}

func hasUTF16BOM(data []byte) bool {
	return bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE)
}

// looksUTF16 accepts even-length input whose NUL bytes, if any, all sit at
// the given parity. ASCII in UTF-16LE puts its zero byte at odd offsets.
func looksUTF16(zeroParity int) func([]byte) bool {
	return func(data []byte) bool {
		if len(data) < 2 || len(data)%2 != 0 {
			return false
		}
		zeros := 0
		for i, b := range data {
			if b != 0 {
				continue
			}
			if i%2 != zeroParity {
				return false
			}
			zeros++
		}
		return zeros > 0
	}
}
