// Package catalog defines Collectible, a general-purpose asset for kiosks
// whose items need only a name and free-form attributes.
package catalog

import (
	"errors"
	"maps"
	"slices"
	"strings"

	"github.com/mesh-intelligence/kiosk/pkg/types"
)

// ErrNameRequired is returned by New when the name is blank.
var ErrNameRequired = errors.New("collectible name is required")

// Collectible is a named item with string attributes.
type Collectible struct {
	ID         types.ID          `cbor:"id" json:"id"`
	Name       string            `cbor:"name" json:"name"`
	Attributes map[string]string `cbor:"attributes,omitempty" json:"attributes,omitempty"`
}

// New creates a collectible with a fresh ID.
func New(name string, attrs map[string]string) (Collectible, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Collectible{}, ErrNameRequired
	}
	c := Collectible{ID: types.NewID(), Name: name}
	if len(attrs) > 0 {
		c.Attributes = maps.Clone(attrs)
	}
	return c, nil
}

// AssetID implements kiosk.Asset.
func (c Collectible) AssetID() types.ID { return c.ID }

// String renders the collectible as name{k=v,...} with sorted keys.
func (c Collectible) String() string {
	if len(c.Attributes) == 0 {
		return c.Name
	}
	keys := slices.Sorted(maps.Keys(c.Attributes))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + c.Attributes[k]
	}
	return c.Name + "{" + strings.Join(parts, ",") + "}"
}

// ParseAttributes turns key=value pairs into an attribute map.
// Returns ErrBadAttribute for a pair without '=' or with an empty key.
func ParseAttributes(pairs []string) (map[string]string, error) {
	attrs := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, ErrBadAttribute
		}
		attrs[strings.TrimSpace(k)] = v
	}
	return attrs, nil
}

// ErrBadAttribute is returned by ParseAttributes for a malformed pair.
var ErrBadAttribute = errors.New("attribute must be key=value")
