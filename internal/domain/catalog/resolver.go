package catalog

import (
	"strings"

	"github.com/storefront/backend/internal/domain/shared"
)

// ResolutionKind classifies the outcome of resolving a selection
type ResolutionKind string

const (
	// ResolutionMatched means exactly one variation has the selected values
	ResolutionMatched ResolutionKind = "matched"
	// ResolutionAmbiguous means some attributes are still unassigned
	ResolutionAmbiguous ResolutionKind = "ambiguous"
	// ResolutionNoMatch means every attribute is assigned but no variation has that combination
	ResolutionNoMatch ResolutionKind = "no_match"
)

// Resolution is the result of VariationResolver.Resolve
type Resolution struct {
	Kind      ResolutionKind
	Variation *ProductVariation
	// Missing lists unassigned attribute keys in precedence order (Ambiguous only)
	Missing []string
}

// IsMatched returns true if a single variation was selected
func (r Resolution) IsMatched() bool {
	return r.Kind == ResolutionMatched
}

// VariationResolver answers selection questions for one product: which
// variation a selection denotes, which values are still choosable per
// attribute, and what a sensible complete selection is.
//
// A resolver is immutable after construction and safe for concurrent use.
type VariationResolver struct {
	attributes []Attribute
	position   map[string]int
	variations []ProductVariation
	// used holds the distinct value ids the variations assign per attribute
	used []map[string]struct{}
	// order holds declared value ids per attribute in presentation order
	order [][]string
}

// NewVariationResolver builds a resolver over the product's attributes (in
// precedence order) and its variations (in declared order). It fails when a
// variation does not assign exactly one declared value per attribute, and when
// two variations share the same assignment.
func NewVariationResolver(attributes []Attribute, variations []ProductVariation) (*VariationResolver, error) {
	if len(variations) == 0 {
		return nil, shared.NewDomainError(shared.CodePurchasableUnavailable, "Product has no purchasable variations")
	}

	r := &VariationResolver{
		attributes: make([]Attribute, len(attributes)),
		position:   make(map[string]int, len(attributes)),
		variations: make([]ProductVariation, len(variations)),
		used:       make([]map[string]struct{}, len(attributes)),
		order:      make([][]string, len(attributes)),
	}

	for i, attr := range attributes {
		if _, dup := r.position[attr.Key]; dup {
			return nil, shared.NewDomainError(shared.CodeInvalidVariation, "Attribute "+attr.Key+" is listed twice")
		}
		attr.Values = append([]AttributeValue(nil), attr.Values...)
		r.attributes[i] = attr
		r.position[attr.Key] = i
		r.used[i] = make(map[string]struct{})
		for _, v := range attr.SortedValues() {
			r.order[i] = append(r.order[i], v.ID)
		}
	}

	assignments := make(map[string]string, len(variations))
	for i := range variations {
		v := variations[i]
		attrs := make(map[string]string, len(v.Attributes))
		for k, val := range v.Attributes {
			attrs[k] = val
		}
		v.Attributes = attrs

		if len(v.Attributes) != len(r.attributes) {
			return nil, shared.NewDomainError(shared.CodeInvalidVariation,
				"Variation "+v.SKU+" must assign exactly one value to every attribute")
		}
		for idx := range r.attributes {
			attr := &r.attributes[idx]
			val, ok := v.Attributes[attr.Key]
			if !ok || !attr.HasValue(val) {
				return nil, shared.NewDomainError(shared.CodeInvalidVariation,
					"Variation "+v.SKU+" has no valid value for attribute "+attr.Key)
			}
			r.used[idx][val] = struct{}{}
		}

		fingerprint := r.fingerprint(v.Attributes)
		if other, dup := assignments[fingerprint]; dup {
			return nil, shared.NewDomainError(shared.CodeDuplicateVariation,
				"Variations "+other+" and "+v.SKU+" share the same attribute values")
		}
		assignments[fingerprint] = v.SKU
		r.variations[i] = v
	}

	return r, nil
}

// Attributes returns the attributes in precedence order
func (r *VariationResolver) Attributes() []Attribute {
	out := make([]Attribute, len(r.attributes))
	copy(out, r.attributes)
	return out
}

// Variations returns the variations in declared order
func (r *VariationResolver) Variations() []ProductVariation {
	out := make([]ProductVariation, len(r.variations))
	copy(out, r.variations)
	return out
}

// Cardinality returns how many distinct values the variations use for key
func (r *VariationResolver) Cardinality(key string) int {
	idx, ok := r.position[key]
	if !ok {
		return 0
	}
	return len(r.used[idx])
}

// IsInteractive reports whether the customer has a real choice for key.
// Attributes with a single used value are pinned and shown read-only.
func (r *VariationResolver) IsInteractive(key string) bool {
	return r.Cardinality(key) > 1
}

// AvailableValues returns the values of key that appear in at least one
// variation agreeing with the selection on every other attribute. The
// attribute's own current value is ignored. When no variation agrees with the
// other attributes, all declared values are returned so the control is never
// empty.
func (r *VariationResolver) AvailableValues(selection Selection, key string) ([]string, error) {
	idx, ok := r.position[key]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeInvalidSelection, "Unknown attribute "+key)
	}
	sel, err := r.normalize(selection)
	if err != nil {
		return nil, err
	}

	available := make(map[string]struct{})
	for i := range r.variations {
		if r.consistent(&r.variations[i], sel, key) {
			available[r.variations[i].Attributes[key]] = struct{}{}
		}
	}

	if len(available) == 0 {
		return append([]string(nil), r.order[idx]...), nil
	}

	values := make([]string, 0, len(available))
	for _, id := range r.order[idx] {
		if _, ok := available[id]; ok {
			values = append(values, id)
		}
	}
	return values, nil
}

// Resolve maps a selection to a variation. Pinned attributes the selection
// leaves out are filled with their single value. A complete selection that
// no variation carries is reported as NoMatch and is never coerced.
func (r *VariationResolver) Resolve(selection Selection) (Resolution, error) {
	sel, err := r.normalize(selection)
	if err != nil {
		return Resolution{}, err
	}
	r.pin(sel)

	var missing []string
	for _, attr := range r.attributes {
		if _, ok := sel[attr.Key]; !ok {
			missing = append(missing, attr.Key)
		}
	}
	if len(missing) > 0 {
		return Resolution{Kind: ResolutionAmbiguous, Missing: missing}, nil
	}

	for i := range r.variations {
		if r.consistent(&r.variations[i], sel, "") {
			v := r.variations[i]
			return Resolution{Kind: ResolutionMatched, Variation: &v}, nil
		}
	}
	return Resolution{Kind: ResolutionNoMatch}, nil
}

// Default returns a complete selection that resolves to a variation. Values of
// previous are kept in precedence order as long as they can still be extended
// to a variation; the rest is filled from the first matching variation in
// declared order. Unknown keys and values in previous are ignored.
func (r *VariationResolver) Default(previous Selection) Selection {
	order := make([]int, len(r.attributes))
	for i := range order {
		order[i] = i
	}
	return r.complete(previous, order)
}

// Refresh handles a customer changing one attribute. The changed attribute is
// authoritative; the other attributes keep their previous value when it is
// still valid alongside the change, and are snapped otherwise.
func (r *VariationResolver) Refresh(previous Selection, key, value string) (Selection, error) {
	idx, ok := r.position[key]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeInvalidSelection, "Unknown attribute "+key)
	}
	if !r.attributes[idx].HasValue(value) {
		return nil, shared.NewDomainError(shared.CodeInvalidSelection, "Unknown value "+value+" for attribute "+key)
	}

	order := make([]int, 0, len(r.attributes))
	order = append(order, idx)
	for i := range r.attributes {
		if i != idx {
			order = append(order, i)
		}
	}
	return r.complete(previous.With(key, value), order), nil
}

// Title returns the line item title for a variation of this product
func (r *VariationResolver) Title(productTitle string, variation *ProductVariation) string {
	return variation.Title(productTitle, r.attributes)
}

// complete keeps previous values in the given attribute order while they are
// extendable, then fills the remainder from the first consistent variation.
func (r *VariationResolver) complete(previous Selection, order []int) Selection {
	kept := make(Selection, len(r.attributes))
	for _, idx := range order {
		attr := &r.attributes[idx]
		val, ok := previous[attr.Key]
		if !ok || !attr.HasValue(val) {
			continue
		}
		kept[attr.Key] = val
		if r.firstConsistent(kept) == nil {
			delete(kept, attr.Key)
		}
	}

	// The empty selection is consistent with every variation, so this never fails.
	v := r.firstConsistent(kept)
	result := make(Selection, len(r.attributes))
	for _, attr := range r.attributes {
		result[attr.Key] = v.Attributes[attr.Key]
	}
	return result
}

func (r *VariationResolver) firstConsistent(sel Selection) *ProductVariation {
	for i := range r.variations {
		if r.consistent(&r.variations[i], sel, "") {
			return &r.variations[i]
		}
	}
	return nil
}

// consistent reports whether v agrees with every assigned attribute of sel except skip
func (r *VariationResolver) consistent(v *ProductVariation, sel Selection, skip string) bool {
	for k, val := range sel {
		if k == skip {
			continue
		}
		if v.Attributes[k] != val {
			return false
		}
	}
	return true
}

// normalize validates the selection and returns a copy without empty values
func (r *VariationResolver) normalize(selection Selection) (Selection, error) {
	sel := selection.Clone()
	for k, v := range sel {
		idx, ok := r.position[k]
		if !ok {
			return nil, shared.NewDomainError(shared.CodeInvalidSelection, "Unknown attribute "+k)
		}
		if !r.attributes[idx].HasValue(v) {
			return nil, shared.NewDomainError(shared.CodeInvalidSelection, "Unknown value "+v+" for attribute "+k)
		}
	}
	return sel, nil
}

// pin assigns single-valued attributes the selection leaves open
func (r *VariationResolver) pin(sel Selection) {
	for i, attr := range r.attributes {
		if _, ok := sel[attr.Key]; ok || len(r.used[i]) != 1 {
			continue
		}
		for only := range r.used[i] {
			sel[attr.Key] = only
		}
	}
}

func (r *VariationResolver) fingerprint(attrs map[string]string) string {
	parts := make([]string, len(r.attributes))
	for i, attr := range r.attributes {
		parts[i] = attrs[attr.Key]
	}
	return strings.Join(parts, "\x1f")
}
