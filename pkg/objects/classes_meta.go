package objects

// Meta class: CustomField, the definition of a per-class custom-field slot
// itself (distinct from the open custom_fields value bag every other
// class's KindCustomFields field carries).

const ClassCustomField ClassTag = "extras.customfield"

// customFieldObjectTypes lists the object_types/content_types this
// engine's classes are permitted to attach custom field definitions to.
var customFieldObjectTypes = []string{
	"dcim.device", "dcim.interface", "dcim.inventoryitem", "dcim.powerport",
	"virtualization.clustergroup", "virtualization.vminterface", "virtualization.virtualmachine",
}

func init() {
	Register(&ClassDef{
		Tag:        ClassCustomField,
		Name:       "custom field",
		APIPath:    "extras/custom-fields",
		PrimaryKey: "name",
		DataModel: map[string]FieldSpec{
			"object_types": {Kind: KindStringList},
			"type":         {Kind: KindEnum, Enum: []string{"text", "longtext", "integer", "boolean", "date", "url", "json", "select", "multiselect"}},
			"name":         {Kind: KindString, MaxLen: 50},
			"label":        {Kind: KindString, MaxLen: 50},
			"description":  {Kind: KindString, MaxLen: 200},
			"required":     {Kind: KindBool},
			"default":      {Kind: KindString},
			"choices":      {Kind: KindStringList},
		},
	})
}

// PermittedCustomFieldObjectTypes returns the object_type identifiers a
// custom field definition may legally target.
func PermittedCustomFieldObjectTypes() []string {
	out := make([]string, len(customFieldObjectTypes))
	copy(out, customFieldObjectTypes)
	return out
}
