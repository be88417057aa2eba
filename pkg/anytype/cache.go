package anytype

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// MetadataCache is an in-process cache of spaces, properties and types.
// Properties and types are indexed per space under both their id and their
// key; both entries point at the same record.
//
// Locking: each of the three stores has its own mutex and no code path holds
// two of them. Per-space indexes are never modified after they are published;
// mutators build a replacement and install it with a single assignment, so
// readers never observe a partially applied update and a panic inside a
// mutator cannot leave a store half-written. No lock is held across I/O.
//
// All operations are no-ops, or return nothing, while the cache is disabled.
type MetadataCache struct {
	enabled atomic.Bool

	spacesMu sync.Mutex
	spaces   []Space // nil until SetSpaces is called

	propertiesMu sync.Mutex
	properties   map[string]dualIndex[Property]

	typesMu sync.Mutex
	types   map[string]dualIndex[Type]
}

// NewMetadataCache creates an enabled, empty cache.
func NewMetadataCache() *MetadataCache {
	c := &MetadataCache{
		properties: make(map[string]dualIndex[Property]),
		types:      make(map[string]dualIndex[Type]),
	}
	c.enabled.Store(true)

	return c
}

// IsEnabled reports whether the cache serves and accepts data.
func (c *MetadataCache) IsEnabled() bool {
	return c.enabled.Load()
}

// Enable clears every store and enables the cache.
func (c *MetadataCache) Enable() {
	c.Clear()
	c.enabled.Store(true)
}

// Disable clears every store and disables the cache.
func (c *MetadataCache) Disable() {
	c.enabled.Store(false)
	c.Clear()
}

// Clear empties every store.
func (c *MetadataCache) Clear() {
	c.ClearSpaces()
	c.ClearProperties("")
	c.ClearTypes("")
}

// ClearSpaces forgets the space list, so HasSpaces reports false.
func (c *MetadataCache) ClearSpaces() {
	c.spacesMu.Lock()
	defer c.spacesMu.Unlock()

	c.spaces = nil
}

// ClearProperties drops the properties of spaceID, or of every space when spaceID is empty.
func (c *MetadataCache) ClearProperties(spaceID string) {
	fresh := make(map[string]dualIndex[Property])

	c.propertiesMu.Lock()
	defer c.propertiesMu.Unlock()

	if spaceID == "" {
		c.properties = fresh
	} else {
		delete(c.properties, spaceID)
	}
}

// ClearTypes drops the types of spaceID, or of every space when spaceID is empty.
func (c *MetadataCache) ClearTypes(spaceID string) {
	fresh := make(map[string]dualIndex[Type])

	c.typesMu.Lock()
	defer c.typesMu.Unlock()

	if spaceID == "" {
		c.types = fresh
	} else {
		delete(c.types, spaceID)
	}
}

// ClearSpaceItems drops the properties and types of spaceID and leaves the space list alone.
func (c *MetadataCache) ClearSpaceItems(spaceID string) {
	c.ClearProperties(spaceID)
	c.ClearTypes(spaceID)
}

// Spaces

// SetSpaces replaces the space list. An empty list is cached as "no spaces".
func (c *MetadataCache) SetSpaces(spaces []Space) {
	if !c.IsEnabled() {
		return
	}

	list := make([]Space, len(spaces))
	copy(list, spaces)

	c.spacesMu.Lock()
	defer c.spacesMu.Unlock()

	c.spaces = list
}

// HasSpaces reports whether a space list has been cached, even an empty one.
func (c *MetadataCache) HasSpaces() bool {
	if !c.IsEnabled() {
		return false
	}

	return c.spaceList() != nil
}

// Spaces returns the cached space list and whether one is cached.
func (c *MetadataCache) Spaces() ([]Space, bool) {
	if !c.IsEnabled() {
		return nil, false
	}

	list := c.spaceList()
	if list == nil {
		return nil, false
	}

	return slices.Clone(list), true
}

// GetSpace returns the cached space with id.
func (c *MetadataCache) GetSpace(id string) (Space, bool) {
	if !c.IsEnabled() {
		return Space{}, false
	}

	for _, space := range c.spaceList() {
		if space.ID == id {
			return space, true
		}
	}

	return Space{}, false
}

// LookupSpace returns the cached spaces whose id or name matches text, ignoring case.
func (c *MetadataCache) LookupSpace(text string) ([]Space, bool) {
	if !c.IsEnabled() {
		return nil, false
	}

	list := c.spaceList()
	if list == nil {
		return nil, false
	}

	check := normalize(text)

	var matches []Space

	for _, space := range list {
		if strings.EqualFold(space.ID, check) || strings.ToLower(space.Name) == check {
			matches = append(matches, space)
		}
	}

	return matches, true
}

// NumSpaces returns the number of cached spaces.
func (c *MetadataCache) NumSpaces() int {
	return len(c.spaceList())
}

// spaceList returns the published slice. SetSpaces always installs a fresh
// slice, so the result may be read without the lock.
func (c *MetadataCache) spaceList() []Space {
	c.spacesMu.Lock()
	defer c.spacesMu.Unlock()

	return c.spaces
}

// Properties

// SetProperties replaces every property of spaceID.
func (c *MetadataCache) SetProperties(spaceID string, properties []Property) {
	if !c.IsEnabled() {
		return
	}

	records := make([]*Property, 0, len(properties))
	for i := range properties {
		records = append(records, properties[i].clone())
	}

	index := newDualIndex(records, propertyIdent)

	c.propertiesMu.Lock()
	defer c.propertiesMu.Unlock()

	c.properties[spaceID] = index
}

// SetProperty adds or replaces one property. It only applies when spaceID
// already has a cached property set.
func (c *MetadataCache) SetProperty(spaceID string, property Property) {
	if !c.IsEnabled() {
		return
	}

	record := property.clone()

	c.propertiesMu.Lock()
	defer c.propertiesMu.Unlock()

	if index, ok := c.properties[spaceID]; ok {
		c.properties[spaceID] = index.with(record, propertyIdent)
	}
}

// DeleteProperty removes a property, by id or key, under both of its entries.
func (c *MetadataCache) DeleteProperty(spaceID, idOrKey string) {
	if !c.IsEnabled() {
		return
	}

	c.propertiesMu.Lock()
	defer c.propertiesMu.Unlock()

	if index, ok := c.properties[spaceID]; ok {
		c.properties[spaceID] = index.without(idOrKey, propertyIdent)
	}
}

// HasProperties reports whether spaceID has a cached property set.
func (c *MetadataCache) HasProperties(spaceID string) bool {
	_, ok := c.propertyIndex(spaceID)

	return ok
}

// GetProperty returns a property by id or key.
func (c *MetadataCache) GetProperty(spaceID, idOrKey string) (Property, bool) {
	index, ok := c.propertyIndex(spaceID)
	if !ok {
		return Property{}, false
	}

	record := index.get(idOrKey)
	if record == nil {
		return Property{}, false
	}

	return *record.clone(), true
}

// LookupProperty returns properties whose id, key or name equals text,
// ignoring case and surrounding space. The bool is false when spaceID has no
// cached set.
func (c *MetadataCache) LookupProperty(spaceID, text string) ([]Property, bool) {
	index, ok := c.propertyIndex(spaceID)
	if !ok {
		return nil, false
	}

	check := normalize(text)

	var matches []Property

	for _, record := range index.values(propertyIdent) {
		if strings.ToLower(record.ID) == check || strings.ToLower(record.Key) == check ||
			strings.ToLower(record.Name) == check {
			matches = append(matches, *record.clone())
		}
	}

	return matches, true
}

// LookupPropertyByKey returns the property whose key equals key, ignoring case.
func (c *MetadataCache) LookupPropertyByKey(spaceID, key string) (Property, bool) {
	index, ok := c.propertyIndex(spaceID)
	if !ok {
		return Property{}, false
	}

	record := index.byKey(key, propertyIdent)
	if record == nil {
		return Property{}, false
	}

	return *record.clone(), true
}

// PropertiesForSpace returns every cached property of spaceID, once each.
func (c *MetadataCache) PropertiesForSpace(spaceID string) ([]Property, bool) {
	index, ok := c.propertyIndex(spaceID)
	if !ok {
		return nil, false
	}

	records := index.values(propertyIdent)
	properties := make([]Property, 0, len(records))

	for _, record := range records {
		properties = append(properties, *record.clone())
	}

	return properties, true
}

// NumProperties counts distinct cached properties across all spaces.
func (c *MetadataCache) NumProperties() int {
	c.propertiesMu.Lock()
	indexes := make([]dualIndex[Property], 0, len(c.properties))

	for _, index := range c.properties {
		indexes = append(indexes, index)
	}
	c.propertiesMu.Unlock()

	total := 0
	for _, index := range indexes {
		total += len(index.values(propertyIdent))
	}

	return total
}

func (c *MetadataCache) propertyIndex(spaceID string) (dualIndex[Property], bool) {
	if !c.IsEnabled() {
		return nil, false
	}

	c.propertiesMu.Lock()
	defer c.propertiesMu.Unlock()

	index, ok := c.properties[spaceID]

	return index, ok
}

// Types

// SetTypes replaces every type of spaceID. Archived types are dropped.
func (c *MetadataCache) SetTypes(spaceID string, types []Type) {
	if !c.IsEnabled() {
		return
	}

	records := make([]*Type, 0, len(types))

	for i := range types {
		if !types[i].Archived {
			records = append(records, types[i].clone())
		}
	}

	index := newDualIndex(records, typeIdent)

	c.typesMu.Lock()
	defer c.typesMu.Unlock()

	c.types[spaceID] = index
}

// SetType adds or replaces one type. It only applies when spaceID already has
// a cached type set. An archived type removes any cached entry with its id.
func (c *MetadataCache) SetType(spaceID string, typ Type) {
	if !c.IsEnabled() {
		return
	}

	record := typ.clone()

	c.typesMu.Lock()
	defer c.typesMu.Unlock()

	index, ok := c.types[spaceID]
	if !ok {
		return
	}

	if record.Archived {
		c.types[spaceID] = index.without(record.ID, typeIdent)
	} else {
		c.types[spaceID] = index.with(record, typeIdent)
	}
}

// DeleteType removes a type, by id or key, under both of its entries.
func (c *MetadataCache) DeleteType(spaceID, idOrKey string) {
	if !c.IsEnabled() {
		return
	}

	c.typesMu.Lock()
	defer c.typesMu.Unlock()

	if index, ok := c.types[spaceID]; ok {
		c.types[spaceID] = index.without(idOrKey, typeIdent)
	}
}

// HasTypes reports whether spaceID has a cached type set.
func (c *MetadataCache) HasTypes(spaceID string) bool {
	_, ok := c.typeIndex(spaceID)

	return ok
}

// GetType returns a non-archived type by id or key.
func (c *MetadataCache) GetType(spaceID, idOrKey string) (Type, bool) {
	index, ok := c.typeIndex(spaceID)
	if !ok {
		return Type{}, false
	}

	record := index.get(idOrKey)
	if record == nil || record.Archived {
		return Type{}, false
	}

	return *record.clone(), true
}

// LookupTypes returns non-archived types whose id, key, name or plural name
// equals text, ignoring case and surrounding space.
func (c *MetadataCache) LookupTypes(spaceID, text string) ([]Type, bool) {
	index, ok := c.typeIndex(spaceID)
	if !ok {
		return nil, false
	}

	check := normalize(text)

	var matches []Type

	for _, record := range index.values(typeIdent) {
		if record.Archived {
			continue
		}

		if strings.ToLower(record.ID) == check || strings.ToLower(record.Key) == check ||
			strings.ToLower(record.Name) == check || strings.ToLower(record.PluralName) == check {
			matches = append(matches, *record.clone())
		}
	}

	return matches, true
}

// LookupTypeByKey returns the non-archived type whose key equals key, ignoring case.
func (c *MetadataCache) LookupTypeByKey(spaceID, key string) (Type, bool) {
	index, ok := c.typeIndex(spaceID)
	if !ok {
		return Type{}, false
	}

	record := index.byKey(key, typeIdent)
	if record == nil || record.Archived {
		return Type{}, false
	}

	return *record.clone(), true
}

// TypesForSpace returns every cached non-archived type of spaceID, once each.
func (c *MetadataCache) TypesForSpace(spaceID string) ([]Type, bool) {
	index, ok := c.typeIndex(spaceID)
	if !ok {
		return nil, false
	}

	records := index.values(typeIdent)
	types := make([]Type, 0, len(records))

	for _, record := range records {
		if !record.Archived {
			types = append(types, *record.clone())
		}
	}

	return types, true
}

// NumTypes counts distinct cached types across all spaces.
func (c *MetadataCache) NumTypes() int {
	c.typesMu.Lock()
	indexes := make([]dualIndex[Type], 0, len(c.types))

	for _, index := range c.types {
		indexes = append(indexes, index)
	}
	c.typesMu.Unlock()

	total := 0
	for _, index := range indexes {
		total += len(index.values(typeIdent))
	}

	return total
}

func (c *MetadataCache) typeIndex(spaceID string) (dualIndex[Type], bool) {
	if !c.IsEnabled() {
		return nil, false
	}

	c.typesMu.Lock()
	defer c.typesMu.Unlock()

	index, ok := c.types[spaceID]

	return index, ok
}

// String summarizes the cache contents.
func (c *MetadataCache) String() string {
	return fmt.Sprintf("enabled=%t spaces=%d properties=%d types=%d",
		c.IsEnabled(), c.NumSpaces(), c.NumProperties(), c.NumTypes())
}

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func (p *Property) clone() *Property {
	out := *p
	out.Tags = slices.Clone(p.Tags)

	return &out
}

func (t *Type) clone() *Type {
	out := *t
	out.Properties = slices.Clone(t.Properties)

	if t.Icon != nil {
		icon := *t.Icon
		out.Icon = &icon
	}

	return &out
}

func propertyIdent(p *Property) (string, string) {
	return p.ID, p.Key
}

func typeIdent(t *Type) (string, string) {
	return t.ID, t.Key
}

// dualIndex maps both the id and the lowercased key of each record to the
// same pointer. A published index is never written to; with and without
// return modified copies.
type dualIndex[T any] map[string]*T

type identFunc[T any] func(*T) (id, key string)

func newDualIndex[T any](records []*T, ident identFunc[T]) dualIndex[T] {
	index := make(dualIndex[T], len(records)*2)
	for _, record := range records {
		index.put(record, ident)
	}

	return index
}

func (ix dualIndex[T]) put(record *T, ident identFunc[T]) {
	id, key := ident(record)
	if id != "" {
		ix[id] = record
	}

	if key != "" {
		ix[strings.ToLower(key)] = record
	}
}

// remove deletes both entries of record, leaving entries that point elsewhere.
func (ix dualIndex[T]) remove(record *T, ident identFunc[T]) {
	id, key := ident(record)
	for _, k := range []string{id, strings.ToLower(key)} {
		if ix[k] == record {
			delete(ix, k)
		}
	}
}

func (ix dualIndex[T]) clone() dualIndex[T] {
	out := make(dualIndex[T], len(ix)+2)
	for k, v := range ix {
		out[k] = v
	}

	return out
}

func (ix dualIndex[T]) with(record *T, ident identFunc[T]) dualIndex[T] {
	out := ix.clone()
	id, key := ident(record)

	for _, k := range []string{id, strings.ToLower(key)} {
		if previous, ok := out[k]; ok && k != "" {
			out.remove(previous, ident)
		}
	}

	out.put(record, ident)

	return out
}

func (ix dualIndex[T]) without(idOrKey string, ident identFunc[T]) dualIndex[T] {
	record := ix.get(idOrKey)
	if record == nil {
		return ix
	}

	out := ix.clone()
	out.remove(record, ident)

	return out
}

func (ix dualIndex[T]) get(idOrKey string) *T {
	if record, ok := ix[idOrKey]; ok {
		return record
	}

	return ix[strings.ToLower(strings.TrimSpace(idOrKey))]
}

// byKey matches on the key only, so an id that happens to equal the query is ignored.
func (ix dualIndex[T]) byKey(key string, ident identFunc[T]) *T {
	record, ok := ix[normalize(key)]
	if !ok {
		return nil
	}

	if _, recordKey := ident(record); strings.EqualFold(recordKey, normalize(key)) {
		return record
	}

	return nil
}

// values returns each record once, ordered by id.
func (ix dualIndex[T]) values(ident identFunc[T]) []*T {
	seen := make(map[*T]struct{}, len(ix)/2+1)
	out := make([]*T, 0, len(ix)/2+1)

	for _, record := range ix {
		if _, ok := seen[record]; ok {
			continue
		}

		seen[record] = struct{}{}
		out = append(out, record)
	}

	slices.SortFunc(out, func(a, b *T) int {
		idA, _ := ident(a)
		idB, _ := ident(b)

		return cmp.Compare(idA, idB)
	})

	return out
}
