package catalog

import (
	"sort"
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// AttributeValue is one choosable value of an attribute, e.g. "red" for color.
// Values are presented ordered by Weight, then by the order they were added.
type AttributeValue struct {
	ID     string
	Label  string
	Weight int
}

// Attribute is a dimension that distinguishes the variations of a product
type Attribute struct {
	Key    string
	Label  string
	Values []AttributeValue
}

// NewAttribute creates an attribute without values
func NewAttribute(key, label string) (*Attribute, error) {
	if err := validateAttributeKey(key); err != nil {
		return nil, err
	}
	if strings.TrimSpace(label) == "" {
		return nil, shared.NewDomainError("INVALID_ATTRIBUTE", "Attribute label cannot be empty")
	}
	return &Attribute{
		Key:    key,
		Label:  label,
		Values: make([]AttributeValue, 0),
	}, nil
}

// AddValue appends a value to the attribute
func (a *Attribute) AddValue(id, label string, weight int) error {
	if err := validateAttributeKey(id); err != nil {
		return shared.NewDomainError("INVALID_ATTRIBUTE_VALUE", "Attribute value id must be a non-empty identifier")
	}
	if strings.TrimSpace(label) == "" {
		return shared.NewDomainError("INVALID_ATTRIBUTE_VALUE", "Attribute value label cannot be empty")
	}
	if a.HasValue(id) {
		return shared.NewDomainError("DUPLICATE_ATTRIBUTE_VALUE", "Attribute "+a.Key+" already has value "+id)
	}
	a.Values = append(a.Values, AttributeValue{ID: id, Label: label, Weight: weight})
	return nil
}

// RemoveValue removes a value from the attribute
func (a *Attribute) RemoveValue(id string) error {
	for i, v := range a.Values {
		if v.ID == id {
			a.Values = append(a.Values[:i], a.Values[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

// SetWeight changes the display weight of a value
func (a *Attribute) SetWeight(id string, weight int) error {
	for i := range a.Values {
		if a.Values[i].ID == id {
			a.Values[i].Weight = weight
			return nil
		}
	}
	return shared.ErrNotFound
}

// HasValue reports whether id is a declared value of the attribute
func (a *Attribute) HasValue(id string) bool {
	_, ok := a.Value(id)
	return ok
}

// Value returns the declared value with the given id
func (a *Attribute) Value(id string) (AttributeValue, bool) {
	for _, v := range a.Values {
		if v.ID == id {
			return v, true
		}
	}
	return AttributeValue{}, false
}

// SortedValues returns the declared values in presentation order
func (a *Attribute) SortedValues() []AttributeValue {
	values := make([]AttributeValue, len(a.Values))
	copy(values, a.Values)
	sort.SliceStable(values, func(i, j int) bool {
		return values[i].Weight < values[j].Weight
	})
	return values
}

// IsValidAttributeKey reports whether key can name an attribute or an attribute value
func IsValidAttributeKey(key string) bool {
	return validateAttributeKey(key) == nil
}

func validateAttributeKey(key string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_ATTRIBUTE", "Attribute key cannot be empty")
	}
	if len(key) > 64 {
		return shared.NewDomainError("INVALID_ATTRIBUTE", "Attribute key cannot exceed 64 characters")
	}
	for _, r := range key {
		if !isCodeRune(r) {
			return shared.NewDomainError("INVALID_ATTRIBUTE", "Attribute key can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}
