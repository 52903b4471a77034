package attestation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/veritalabs/supplement-verifier/internal/domain"
)

// DefaultSchemaVersion tags the canonical attestation shape. Any change
// to the field set requires a bump here.
const DefaultSchemaVersion = "1.0"

var ErrUnsupportedType = errors.New("canonical: unsupported value type")

// Builder assembles the canonical attestation object for a batch. The
// schema version is fixed at construction so every attestation built by
// one process carries the same tag.
type Builder struct {
	SchemaVersion string
}

func NewBuilder(schemaVersion string) *Builder {
	if schemaVersion == "" {
		schemaVersion = DefaultSchemaVersion
	}
	return &Builder{SchemaVersion: schemaVersion}
}

// Build returns the attestation object for a batch, its extracted
// fields and the fingerprint of the document they came from. Dates are
// rendered as ISO calendar dates; a missing expiry stays an explicit
// null.
func (b *Builder) Build(batch *domain.Batch, extracted map[string]any, documentFingerprint string) map[string]any {
	var expires any
	if batch.ExpiresDate != nil {
		expires = batch.ExpiresDate.Format("2006-01-02")
	}
	return map[string]any{
		"batchId":             batch.BatchID,
		"productName":         batch.ProductName,
		"supplementType":      batch.SupplementType,
		"manufacturer":        batch.Manufacturer,
		"productionDate":      batch.ProductionDate.Format("2006-01-02"),
		"expiresDate":         expires,
		"documentFingerprint": documentFingerprint,
		"extractedFields":     extracted,
		"schemaVersion":       b.SchemaVersion,
	}
}

// CanonicalJSON rebuilds the canonical attestation JSON for a batch
// from its stored extraction record.
func (b *Builder) CanonicalJSON(batch *domain.Batch, extraction *domain.Extraction) (string, error) {
	fields, err := DecodeFields(extraction.ExtractedFields)
	if err != nil {
		return "", fmt.Errorf("decode extracted fields for batch %q: %w", batch.BatchID, err)
	}
	raw, err := MarshalCanonical(b.Build(batch, fields, extraction.DocumentFingerprint))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// DecodeFields decodes a stored extracted-fields document preserving
// number text verbatim, so re-deriving the attestation never reformats
// a numeric value.
func DecodeFields(raw []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// MarshalCanonical encodes v as deterministic JSON: object keys sorted
// lexicographically at every level, minimal separators, explicit
// nulls, and ASCII-only string escaping. The output is byte-compatible
// with Python's json.dumps(sort_keys=True, separators=(",", ":"),
// ensure_ascii=True), which produced every attestation hash already on
// chain.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeValue(buf *bytes.Buffer, v any) error {
	switch value := v.(type) {
	case nil:
		buf.WriteString("null")
		return nil
	case string:
		writeString(buf, value)
		return nil
	case bool:
		if value {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case json.Number:
		buf.WriteString(value.String())
		return nil
	case int:
		buf.WriteString(strconv.Itoa(value))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(value, 10))
		return nil
	case float64:
		buf.WriteString(formatFloat(value))
		return nil
	case map[string]any:
		return writeMap(buf, value)
	case []any:
		buf.WriteByte('[')
		for i, item := range value {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeValue(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case []string:
		buf.WriteByte('[')
		for i, item := range value {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeString(buf, item)
		}
		buf.WriteByte(']')
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
	}
}

func writeMap(buf *bytes.Buffer, m map[string]any) error {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, k)
		buf.WriteByte(':')
		if err := writeValue(buf, m[k]); err != nil {
			return err
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeString emits a JSON string with every rune outside printable
// ASCII escaped as \uXXXX (surrogate pairs above the BMP), matching
// the reference encoder's ensure_ascii behavior.
func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				buf.WriteRune(r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(buf, `\u%04x\u%04x`, hi, lo)
			default:
				fmt.Fprintf(buf, `\u%04x`, r)
			}
		}
	}
	buf.WriteByte('"')
}

// formatFloat renders a float the way the reference encoder does:
// shortest round-trip form, exponent notation when the decimal exponent
// is >= 16 or < -4, and integral values keeping a trailing ".0" rather
// than collapsing to an integer literal.
func formatFloat(f float64) string {
	sci := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp >= 16 || exp < -4 {
		return sci
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}
