package objects

import "sync"

// ClassTag is the stable identifier of an entity class, e.g. "dcim.device".
// A statically ordered registry of class descriptors stands in for
// reflection-based subclass discovery (see DESIGN.md).
type ClassTag string

// FieldSpec declares the permitted shape of one data_model entry.
type FieldSpec struct {
	Kind Kind
	// MaxLen bounds KindString/KindSlug values; 0 means unbounded.
	MaxLen int
	// Enum lists the permitted values for KindEnum.
	Enum []string
	// RefClass is the target class for KindReference/KindReferenceList/
	// KindTagList/KindVLANList.
	RefClass ClassTag
}

// ClassDef is the metatype carrying everything the engine needs to know
// about one entity class: API path, field model, dependency order, and
// the rest of what would otherwise live as per-subclass attributes.
type ClassDef struct {
	Tag           ClassTag
	Name          string
	APIPath       string
	PrimaryKey    string
	SecondaryKey  string
	DataModel     map[string]FieldSpec
	Dependencies  []ClassTag
	Prune         bool
	ReadOnly      bool
	MinAPIVersion string

	// HasLastUpdated gates participation in cache-delta reconstruction.
	HasLastUpdated bool
	// HasSlug enables slug-based lookup/generation.
	HasSlug bool
	// EnforceSecondaryKey switches GetDisplayName to the "<pk> (<sk>)" form.
	EnforceSecondaryKey bool
	// SkipIfMissingPK is declared per class but read by no code path:
	// entries missing a primary key are neither dropped nor rejected,
	// whatever its value.
	SkipIfMissingPK bool
}

var (
	registryMu sync.RWMutex
	registry   = map[ClassTag]*ClassDef{}
	// order preserves registration order. The Sync Orchestrator iterates
	// it but applies each class's Dependencies first, so it need not be a
	// dependency order itself.
	order []ClassTag
)

// Register adds a class descriptor to the static registry. Called from
// package init() in the classes_*.go files, in declaration order.
func Register(def *ClassDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[def.Tag]; exists {
		panic("objects: duplicate class registration for " + string(def.Tag))
	}
	registry[def.Tag] = def
	order = append(order, def.Tag)
}

// Lookup returns the class descriptor for tag, or nil if unknown.
func Lookup(tag ClassTag) *ClassDef {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[tag]
}

// Order returns every registered class tag in declaration order — the
// order the sync orchestrator iterates entity classes in.
func Order() []ClassTag {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]ClassTag, len(order))
	copy(out, order)
	return out
}

// MustLookup is like Lookup but panics on an unknown class — used at
// call sites where the class tag is a compile-time constant and a miss
// indicates a programming error, not bad input.
func MustLookup(tag ClassTag) *ClassDef {
	def := Lookup(tag)
	if def == nil {
		panic("objects: unknown class " + string(tag))
	}
	return def
}
