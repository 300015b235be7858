package watchlist

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `[
		{
			"bond_code": "123456",
			"bond_name": "Test Conv",
			"stock_code": "688001",
			"stock_name": "Test Stock",
			"bond_price": 115.5,
			"premium_rate": 12.3,
			"amount": 5000
		},
		{
			"bond_code": "110095",
			"bond_name": "Second Conv",
			"stock_code": "600001",
			"stock_name": "Second Stock"
		}
	]`)

	mapping, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if len(mapping) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(mapping))
	}

	p, ok := mapping["123456"]
	if !ok {
		t.Fatal("pair 123456 not found")
	}
	if p.StockCode != "688001" {
		t.Errorf("StockCode: expected 688001, got %s", p.StockCode)
	}
	if p.RefPrice != 115.5 {
		t.Errorf("RefPrice: expected 115.5, got %v", p.RefPrice)
	}

	// Необязательные поля по умолчанию нулевые
	second := mapping["110095"]
	if second.RefPrice != 0 || second.RefPremium != 0 || second.RefAmount != 0 {
		t.Errorf("optional fields must default to zero, got %+v", second)
	}
}

func TestLoadSkipsEntriesWithoutBondCode(t *testing.T) {
	path := writeFile(t, `[
		{"bond_name": "no code"},
		{"bond_code": "123456", "bond_name": "ok"}
	]`)

	mapping, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(mapping) != 1 {
		t.Errorf("expected 1 pair, got %d", len(mapping))
	}
}

func TestLoadMissingFile(t *testing.T) {
	mapping, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if len(mapping) != 0 {
		t.Errorf("expected empty mapping on failure, got %d entries", len(mapping))
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeFile(t, `{"not": "an array"`)

	mapping, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed file")
	}
	if len(mapping) != 0 {
		t.Errorf("expected empty mapping on failure, got %d entries", len(mapping))
	}
}

func TestLoadEmptyList(t *testing.T) {
	path := writeFile(t, `[]`)

	mapping, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(mapping) != 0 {
		t.Errorf("expected empty mapping, got %d entries", len(mapping))
	}
}
