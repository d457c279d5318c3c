package order

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"

	"github.com/gowebpki/jcs"
)

// CombinabilityPolicy decides whether a requested line item may be merged
// into an existing one that has the same purchased entity
type CombinabilityPolicy interface {
	Combinable(existing, requested map[string]any) bool
}

// CombinabilityFunc adapts a function to CombinabilityPolicy
type CombinabilityFunc func(existing, requested map[string]any) bool

// Combinable implements CombinabilityPolicy
func (f CombinabilityFunc) Combinable(existing, requested map[string]any) bool {
	return f(existing, requested)
}

// StrictDataEquality merges only when both data maps are structurally equal.
// Comparison happens on the canonical JSON form, so data read back from
// storage (numbers as float64, nested maps) equals the data that was written.
func StrictDataEquality() CombinabilityPolicy {
	return CombinabilityFunc(dataEqual)
}

// IgnoringKeys is StrictDataEquality after dropping the given top level keys
// from both sides, e.g. request timestamps that should not split lines.
func IgnoringKeys(keys ...string) CombinabilityPolicy {
	ignored := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		ignored[k] = struct{}{}
	}
	strip := func(data map[string]any) map[string]any {
		out := make(map[string]any, len(data))
		for k, v := range data {
			if _, skip := ignored[k]; !skip {
				out[k] = v
			}
		}
		return out
	}
	return CombinabilityFunc(func(existing, requested map[string]any) bool {
		return dataEqual(strip(existing), strip(requested))
	})
}

// PolicyRegistry maps purchasable types to combinability policies
type PolicyRegistry struct {
	mu       sync.RWMutex
	fallback CombinabilityPolicy
	byType   map[string]CombinabilityPolicy
}

// NewPolicyRegistry creates a registry; a nil fallback means StrictDataEquality
func NewPolicyRegistry(fallback CombinabilityPolicy) *PolicyRegistry {
	if fallback == nil {
		fallback = StrictDataEquality()
	}
	return &PolicyRegistry{
		fallback: fallback,
		byType:   make(map[string]CombinabilityPolicy),
	}
}

// Register sets the policy used for a purchasable type
func (r *PolicyRegistry) Register(purchasableType string, policy CombinabilityPolicy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[purchasableType] = policy
}

// For returns the policy for a purchasable type
func (r *PolicyRegistry) For(purchasableType string) CombinabilityPolicy {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.byType[purchasableType]; ok {
		return p
	}
	return r.fallback
}

// CanonicalData returns the RFC 8785 canonical JSON encoding of data.
// Nil and empty data both encode as {}.
func CanonicalData(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal line item data: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalize line item data: %w", err)
	}
	return canonical, nil
}

// DataFingerprint returns a stable hash of data, used to index line items
func DataFingerprint(data map[string]any) (string, error) {
	canonical, err := CanonicalData(data)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

func dataEqual(a, b map[string]any) bool {
	ca, errA := CanonicalData(a)
	cb, errB := CanonicalData(b)
	if errA != nil || errB != nil {
		// Not JSON representable; fall back to in-memory comparison
		return reflect.DeepEqual(cloneData(a), cloneData(b))
	}
	return bytes.Equal(ca, cb)
}
