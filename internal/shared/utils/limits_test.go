package utils

import (
	"strings"
	"testing"
)

func TestValidateSize(t *testing.T) {
	v := NewSizeValidator(8)
	if err := v.ValidateSize([]byte("12345678")); err != nil {
		t.Fatalf("at limit: %v", err)
	}
	if err := v.ValidateSize([]byte("123456789")); err == nil {
		t.Fatal("over limit accepted")
	}
}

func TestValidateFieldsSize(t *testing.T) {
	v := NewSizeValidator(64)
	if err := v.ValidateFields(map[string]interface{}{"name": "ok"}); err != nil {
		t.Fatalf("small map: %v", err)
	}
	big := map[string]interface{}{"blob": strings.Repeat("x", 128)}
	if err := v.ValidateFields(big); err == nil {
		t.Fatal("oversized map accepted")
	}
}

func TestValidateFieldsDepth(t *testing.T) {
	v := FieldsValidator()

	nested := map[string]interface{}{}
	leaf := nested
	for i := 0; i < MaxFieldDepth+2; i++ {
		child := map[string]interface{}{}
		leaf["child"] = child
		leaf = child
	}
	if err := v.ValidateFields(nested); err == nil {
		t.Fatal("over-deep map accepted")
	}

	shallow := map[string]interface{}{"a": map[string]interface{}{"b": float64(1)}}
	if err := v.ValidateFields(shallow); err != nil {
		t.Fatalf("shallow map: %v", err)
	}
}
