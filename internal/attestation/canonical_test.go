package attestation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"gorm.io/datatypes"

	"github.com/veritalabs/supplement-verifier/internal/domain"
)

func TestMarshalCanonicalSortsKeysAtEveryLevel(t *testing.T) {
	in := map[string]any{
		"zulu":  1,
		"alpha": map[string]any{"z": 1, "a": 2},
		"mike":  []any{map[string]any{"b": true, "a": false}},
	}
	out, err := MarshalCanonical(in)
	if err != nil {
		t.Fatalf("MarshalCanonical: %v", err)
	}
	want := `{"alpha":{"a":2,"z":1},"mike":[{"a":false,"b":true}],"zulu":1}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestMarshalCanonicalEscapesNonASCII(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Señor", "\"Se\\u00f1or\""},
		{"check ✓", "\"check \\u2713\""},
		{"😀", "\"\\ud83d\\ude00\""},
		{"tab\there", "\"tab\\there\""},
		{`quote"back\`, "\"quote\\\"back\\\\\""},
		{"line\nbreak", "\"line\\nbreak\""},
		{"nul\x00", "\"nul\\u0000\""},
	}
	for _, tc := range cases {
		out, err := MarshalCanonical(tc.in)
		if err != nil {
			t.Fatalf("MarshalCanonical(%q): %v", tc.in, err)
		}
		if string(out) != tc.want {
			t.Errorf("MarshalCanonical(%q) = %s, want %s", tc.in, out, tc.want)
		}
	}
}

func TestMarshalCanonicalFloats(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{1, "1.0"},
		{-2, "-2.0"},
		{0.5, "0.5"},
		{3.14, "3.14"},
		{0.95, "0.95"},
		// Exponent notation starts at 1e16 and below 1e-4, matching the
		// reference encoder's repr thresholds.
		{1e15, "1000000000000000.0"},
		{1e16, "1e+16"},
		{-2e16, "-2e+16"},
		{1.2345678901234568e16, "1.2345678901234568e+16"},
		{0.0001, "0.0001"},
		{0.00001, "1e-05"},
		{1e100, "1e+100"},
		{0, "0.0"},
	}
	for _, tc := range cases {
		out, err := MarshalCanonical(tc.in)
		if err != nil {
			t.Fatalf("MarshalCanonical(%v): %v", tc.in, err)
		}
		if string(out) != tc.want {
			t.Errorf("MarshalCanonical(%v) = %s, want %s", tc.in, out, tc.want)
		}
	}
}

func TestMarshalCanonicalNumberVerbatim(t *testing.T) {
	// Stored "0.30" must never collapse to "0.3"; the hash on chain was
	// computed over the original digits.
	out, err := MarshalCanonical(map[string]any{"confidence": json.Number("0.30")})
	if err != nil {
		t.Fatalf("MarshalCanonical: %v", err)
	}
	if want := `{"confidence":0.30}`; string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestMarshalCanonicalUnsupportedType(t *testing.T) {
	_, err := MarshalCanonical(struct{}{})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("got %v, want ErrUnsupportedType", err)
	}
}

func TestDecodeFieldsPreservesNumberText(t *testing.T) {
	fields, err := DecodeFields([]byte(`{"confidence":0.30,"count":7}`))
	if err != nil {
		t.Fatalf("DecodeFields: %v", err)
	}
	out, err := MarshalCanonical(fields)
	if err != nil {
		t.Fatalf("MarshalCanonical: %v", err)
	}
	if want := `{"confidence":0.30,"count":7}`; string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func testBatch() *domain.Batch {
	return &domain.Batch{
		BatchID:        "B1",
		ProductName:    "Omega-3",
		SupplementType: "fish oil",
		Manufacturer:   "Acme Labs",
		ProductionDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Status:         domain.BatchStatusReady,
	}
}

func testExtraction() *domain.Extraction {
	return &domain.Extraction{
		BatchID:             "B1",
		ExtractedFields:     datatypes.JSON(`{"confidence":0.95,"labName":"Eurofins"}`),
		DocumentFingerprint: "0xabc",
	}
}

func TestCanonicalJSONExactBytes(t *testing.T) {
	builder := NewBuilder("")
	got, err := builder.CanonicalJSON(testBatch(), testExtraction())
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	want := `{"batchId":"B1","documentFingerprint":"0xabc","expiresDate":null,` +
		`"extractedFields":{"confidence":0.95,"labName":"Eurofins"},` +
		`"manufacturer":"Acme Labs","productName":"Omega-3","productionDate":"2026-01-15",` +
		`"schemaVersion":"1.0","supplementType":"fish oil"}`
	if got != want {
		t.Fatalf("canonical JSON mismatch\n got: %s\nwant: %s", got, want)
	}
}

func TestCanonicalJSONDeterministic(t *testing.T) {
	builder := NewBuilder(DefaultSchemaVersion)
	batch := testBatch()
	extraction := testExtraction()

	first, err := builder.CanonicalJSON(batch, extraction)
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := builder.CanonicalJSON(batch, extraction)
		if err != nil {
			t.Fatalf("CanonicalJSON: %v", err)
		}
		if again != first {
			t.Fatalf("iteration %d produced different bytes", i)
		}
	}
}

func TestCanonicalJSONExpiresDate(t *testing.T) {
	builder := NewBuilder("")
	batch := testBatch()
	expires := time.Date(2028, 6, 30, 0, 0, 0, 0, time.UTC)
	batch.ExpiresDate = &expires

	got, err := builder.CanonicalJSON(batch, testExtraction())
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	if !strings.Contains(got, `"expiresDate":"2028-06-30"`) {
		t.Fatalf("expires date missing or misformatted: %s", got)
	}
}

func TestCanonicalJSONSensitiveToFieldChange(t *testing.T) {
	builder := NewBuilder("")
	base, err := builder.CanonicalJSON(testBatch(), testExtraction())
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}

	tampered := testExtraction()
	tampered.ExtractedFields = datatypes.JSON(`{"confidence":0.96,"labName":"Eurofins"}`)
	got, err := builder.CanonicalJSON(testBatch(), tampered)
	if err != nil {
		t.Fatalf("CanonicalJSON: %v", err)
	}
	if got == base {
		t.Fatal("single field change did not alter canonical bytes")
	}
}

func TestCanonicalJSONRejectsMalformedFields(t *testing.T) {
	builder := NewBuilder("")
	extraction := testExtraction()
	extraction.ExtractedFields = datatypes.JSON(`{"broken":`)
	if _, err := builder.CanonicalJSON(testBatch(), extraction); err == nil {
		t.Fatal("expected error for malformed extracted fields")
	}
}
