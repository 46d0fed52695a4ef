package helpers

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yigit/catequesis/internal/pkg/apperrors"
)

// ParseID parses a path or form identifier. Malformed values become ErrInvalidID.
func ParseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidID, value)
	}
	return id, nil
}

// ParseOptionalID parses an optional identifier; an empty value yields nil.
func ParseOptionalID(value string) (*uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := ParseID(value)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
