// Package utils provides payload validation shared across the registry and
// backends.
package utils

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Payload size limits (in bytes).
const (
	// MaxFieldsSize bounds one record's canonical field encoding.
	MaxFieldsSize = 256 * 1024
	// MaxSnapshotSize bounds a decompressed snapshot import.
	MaxSnapshotSize = 64 * 1024 * 1024
	// MaxFieldDepth bounds nesting inside a field map.
	MaxFieldDepth = 16
)

// SizeValidator checks encoded payloads against a byte limit.
type SizeValidator struct {
	maxSize int
}

// NewSizeValidator creates a validator with the given limit.
func NewSizeValidator(maxSize int) *SizeValidator {
	return &SizeValidator{maxSize: maxSize}
}

// FieldsValidator returns a validator with the per-record field limit.
func FieldsValidator() *SizeValidator {
	return NewSizeValidator(MaxFieldsSize)
}

// ValidateSize checks that data fits the limit.
func (v *SizeValidator) ValidateSize(data []byte) error {
	if len(data) > v.maxSize {
		return fmt.Errorf("payload size %d bytes exceeds maximum %d bytes", len(data), v.maxSize)
	}
	return nil
}

// ValidateFields checks a field map's encoded size and nesting depth.
func (v *SizeValidator) ValidateFields(fields map[string]interface{}) error {
	if err := checkDepth(fields, 0); err != nil {
		return err
	}
	raw, err := sonic.ConfigStd.Marshal(fields)
	if err != nil {
		return fmt.Errorf("fields not encodable: %w", err)
	}
	return v.ValidateSize(raw)
}

func checkDepth(value interface{}, depth int) error {
	if depth > MaxFieldDepth {
		return fmt.Errorf("field nesting exceeds maximum depth %d", MaxFieldDepth)
	}
	switch v := value.(type) {
	case map[string]interface{}:
		for _, child := range v {
			if err := checkDepth(child, depth+1); err != nil {
				return err
			}
		}
	case []interface{}:
		for _, child := range v {
			if err := checkDepth(child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
