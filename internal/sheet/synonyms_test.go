package sheet

import (
	"strings"
	"testing"
)

func TestParseSynonyms(t *testing.T) {
	data := `
pc:
  - header: Nom machine
    field: asset_name
  - header: SN
    field: remark
consumable:
  - header: Toner K
    field: black
`
	file, err := ParseSynonyms(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ParseSynonyms: %v", err)
	}

	pc := file.Apply(PCSchema)
	if field, ok := pc.Lookup("nom machine"); !ok || field != FieldAssetName {
		t.Errorf("Lookup(nom machine) = %q, %v", field, ok)
	}
	// Built-in spellings keep precedence.
	if field, _ := pc.Lookup("sn"); field != FieldSerialNumber {
		t.Errorf("Lookup(sn) = %q, want serial_number", field)
	}
	if _, ok := PCSchema.Lookup("nom machine"); ok {
		t.Error("Apply must not modify the built-in schema")
	}

	printer := file.Apply(PrinterSchema)
	if len(printer.Synonyms()) != len(PrinterSchema.Synonyms()) {
		t.Error("printer schema should be unchanged")
	}
}

func TestParseSynonymsInvalid(t *testing.T) {
	tests := map[string]string{
		"unknown kind":  "scanner:\n  - header: x\n    field: asset_name\n",
		"unknown field": "pc:\n  - header: x\n    field: toner_type\n",
		"empty header":  "pc:\n  - header: \" \"\n    field: asset_name\n",
		"bad yaml":      "pc: [\n",
	}
	for name, data := range tests {
		if _, err := ParseSynonyms(strings.NewReader(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestParseSynonymsEmpty(t *testing.T) {
	file, err := ParseSynonyms(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseSynonyms: %v", err)
	}
	if got := file.Apply(PCSchema); len(got.Synonyms()) != len(PCSchema.Synonyms()) {
		t.Error("empty file should not extend the schema")
	}
}
