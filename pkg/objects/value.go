// Package objects implements the typed NetBox object model: the set of
// entity classes the sync engine understands, their field kinds, and the
// per-entity state machine (new/dirty/unset) described by the reconciler.
package objects

import "fmt"

// Kind identifies the permitted value shape of a data_model field.
type Kind int

const (
	// KindString is a length-bounded string, truncated on assignment.
	KindString Kind = iota
	// KindSlug is a KindString that is additionally normalized and made
	// unique within its class.
	KindSlug
	// KindInt is a plain integer.
	KindInt
	// KindBool is a plain boolean.
	KindBool
	// KindEnum is a string constrained to a fixed value set.
	KindEnum
	// KindReference points at a single entity of another class.
	KindReference
	// KindReferenceList is an ordered, de-duplicated list of references.
	KindReferenceList
	// KindCustomFields is an open string-keyed map that merges on assignment.
	KindCustomFields
	// KindTagList is additive on assignment; removal is a separate operation.
	KindTagList
	// KindVLANList replaces wholesale on assignment.
	KindVLANList
	// KindStringList is a plain ordered list of strings (e.g. custom field
	// object_types/choices), replaced wholesale on assignment, except that
	// Update merges a custom field's object_types with the existing list.
	KindStringList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindSlug:
		return "slug"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	case KindEnum:
		return "enum"
	case KindReference:
		return "reference"
	case KindReferenceList:
		return "reference_list"
	case KindCustomFields:
		return "custom_fields"
	case KindTagList:
		return "tag_list"
	case KindVLANList:
		return "vlan_list"
	case KindStringList:
		return "string_list"
	default:
		return "unknown"
	}
}

// Value is the tagged-union runtime representation of a field value. Only
// the member matching Kind is meaningful.
type Value struct {
	Kind    Kind
	Str     string
	Int     int64
	Bool    bool
	Ref     *Entity
	RefList []*Entity
	Fields  map[string]any
	StrList []string
}

// IsEmpty reports whether the value is the "unset" representation for its
// kind — the representation PATCHed out when an unset_items entry is
// committed.
func (v Value) IsEmpty() bool {
	switch v.Kind {
	case KindString, KindSlug, KindEnum:
		return v.Str == ""
	case KindInt:
		return v.Int == 0
	case KindBool:
		return false
	case KindReference:
		return v.Ref == nil
	case KindReferenceList, KindTagList, KindVLANList:
		return len(v.RefList) == 0
	case KindCustomFields:
		return len(v.Fields) == 0
	case KindStringList:
		return len(v.StrList) == 0
	default:
		return true
	}
}

// NBValue renders the value in the shape NetBox's JSON API expects: an id
// for references, a list of ids for reference lists, the scalar itself
// otherwise. Unresolved references (new entities with NBID==0) render as
// nil so the caller can detect and defer them.
func (v Value) NBValue() any {
	switch v.Kind {
	case KindString, KindSlug, KindEnum:
		return v.Str
	case KindInt:
		return v.Int
	case KindBool:
		return v.Bool
	case KindReference:
		if v.Ref == nil || v.Ref.NBID <= 0 {
			return nil
		}
		return v.Ref.NBID
	case KindReferenceList, KindTagList, KindVLANList:
		ids := make([]int, 0, len(v.RefList))
		for _, e := range v.RefList {
			if e == nil || e.NBID <= 0 {
				continue
			}
			ids = append(ids, e.NBID)
		}
		return ids
	case KindCustomFields:
		return v.Fields
	case KindStringList:
		return v.StrList
	default:
		return nil
	}
}

// Unresolved reports whether a reference-kind value points at an entity
// that does not yet have a NetBox id — the condition that forces a field
// to be deferred to a later sync pass.
func (v Value) Unresolved() bool {
	switch v.Kind {
	case KindReference:
		return v.Ref != nil && v.Ref.NBID <= 0
	case KindReferenceList, KindTagList, KindVLANList:
		for _, e := range v.RefList {
			if e != nil && e.NBID <= 0 {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindString, KindSlug, KindEnum:
		return v.Str
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindReference:
		if v.Ref == nil {
			return ""
		}
		return v.Ref.GetDisplayName(false)
	case KindReferenceList, KindTagList, KindVLANList:
		out := ""
		for i, e := range v.RefList {
			if i > 0 {
				out += ","
			}
			if e != nil {
				out += e.GetDisplayName(false)
			}
		}
		return out
	case KindStringList:
		out := ""
		for i, s := range v.StrList {
			if i > 0 {
				out += ","
			}
			out += s
		}
		return out
	default:
		return ""
	}
}

func StringValue(s string) Value      { return Value{Kind: KindString, Str: s} }
func SlugValue(s string) Value        { return Value{Kind: KindSlug, Str: s} }
func EnumValue(s string) Value        { return Value{Kind: KindEnum, Str: s} }
func IntValue(i int64) Value          { return Value{Kind: KindInt, Int: i} }
func BoolValue(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func RefValue(e *Entity) Value        { return Value{Kind: KindReference, Ref: e} }
func RefListValue(es []*Entity) Value { return Value{Kind: KindReferenceList, RefList: es} }
func TagListValue(es []*Entity) Value { return Value{Kind: KindTagList, RefList: es} }
func VLANListValue(es []*Entity) Value {
	return Value{Kind: KindVLANList, RefList: es}
}
func CustomFieldsValue(m map[string]any) Value {
	return Value{Kind: KindCustomFields, Fields: m}
}
func StringListValue(s []string) Value { return Value{Kind: KindStringList, StrList: s} }
