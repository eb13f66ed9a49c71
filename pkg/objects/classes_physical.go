package objects

// Physical on-device classes: Interface, InventoryItem, PowerPort.

const (
	ClassInterface     ClassTag = "dcim.interface"
	ClassInventoryItem ClassTag = "dcim.inventoryitem"
	ClassPowerPort     ClassTag = "dcim.powerport"
)

func init() {
	Register(&ClassDef{
		Tag:                 ClassInterface,
		Name:                "interface",
		APIPath:             "dcim/interfaces",
		PrimaryKey:          "name",
		SecondaryKey:        "device",
		EnforceSecondaryKey: true,
		HasLastUpdated:      true,
		Prune:               true,
		DataModel: map[string]FieldSpec{
			"name":                {Kind: KindString, MaxLen: 64},
			"device":              {Kind: KindReference, RefClass: ClassDevice},
			"label":               {Kind: KindString, MaxLen: 64},
			"type":                {Kind: KindEnum, Enum: interfaceTypeEnum},
			"enabled":             {Kind: KindBool},
			"mac_address":         {Kind: KindString},
			"primary_mac_address": {Kind: KindReference, RefClass: ClassMACAddress},
			"wwn":                 {Kind: KindString},
			"mgmt_only":           {Kind: KindBool},
			"mtu":                 {Kind: KindInt},
			"mode":                {Kind: KindEnum, Enum: []string{"access", "tagged", "tagged-all"}},
			"speed":               {Kind: KindInt},
			"duplex":              {Kind: KindEnum, Enum: []string{"half", "full", "auto"}},
			"untagged_vlan":       {Kind: KindReference, RefClass: ClassVLAN},
			"tagged_vlans":        {Kind: KindVLANList, RefClass: ClassVLAN},
			"description":         {Kind: KindString, MaxLen: 200},
			"mark_connected":      {Kind: KindBool},
			"tags":                {Kind: KindTagList, RefClass: ClassTagTag},
			"parent":              {Kind: KindReference, RefClass: ClassInterface},
		},
		Dependencies: []ClassTag{ClassDevice, ClassMACAddress, ClassVLAN, ClassTagTag},
	})

	Register(&ClassDef{
		Tag:                 ClassInventoryItem,
		Name:                "inventory item",
		APIPath:             "dcim/inventory-items",
		PrimaryKey:          "name",
		SecondaryKey:        "device",
		EnforceSecondaryKey: true,
		HasLastUpdated:      true,
		Prune:               true,
		DataModel: map[string]FieldSpec{
			"device":        {Kind: KindReference, RefClass: ClassDevice},
			"name":          {Kind: KindString, MaxLen: 64},
			"label":         {Kind: KindString, MaxLen: 64},
			"manufacturer":  {Kind: KindReference, RefClass: ClassManufacturer},
			"part_id":       {Kind: KindString, MaxLen: 50},
			"serial":        {Kind: KindString, MaxLen: 50},
			"asset_tag":     {Kind: KindString, MaxLen: 50},
			"discovered":    {Kind: KindBool},
			"description":   {Kind: KindString, MaxLen: 200},
			"tags":          {Kind: KindTagList, RefClass: ClassTagTag},
			"custom_fields": {Kind: KindCustomFields},
		},
		Dependencies: []ClassTag{ClassDevice, ClassManufacturer, ClassTagTag},
	})

	Register(&ClassDef{
		Tag:                 ClassPowerPort,
		Name:                "power port",
		APIPath:             "dcim/power-ports",
		PrimaryKey:          "name",
		SecondaryKey:        "device",
		EnforceSecondaryKey: true,
		HasLastUpdated:      true,
		Prune:               true,
		DataModel: map[string]FieldSpec{
			"device":         {Kind: KindReference, RefClass: ClassDevice},
			"name":           {Kind: KindString, MaxLen: 64},
			"label":          {Kind: KindString, MaxLen: 64},
			"description":    {Kind: KindString, MaxLen: 200},
			"maximum_draw":   {Kind: KindInt},
			"allocated_draw": {Kind: KindInt},
			"mark_connected": {Kind: KindBool},
			"tags":           {Kind: KindTagList, RefClass: ClassTagTag},
			"custom_fields":  {Kind: KindCustomFields},
		},
		Dependencies: []ClassTag{ClassDevice, ClassTagTag},
	})
}

// interfaceTypeEnum enumerates the physical/virtual interface form factors
// the engine is prepared to stamp onto dcim.interface.type: a subset of
// NetBox's own choice set covering the speeds/types this engine's
// sources actually report.
var interfaceTypeEnum = []string{
	"virtual", "lag",
	"100base-tx", "1000base-t", "2.5gbase-t", "5gbase-t", "10gbase-t",
	"10gbase-cx4", "1000base-x-sfp", "10gbase-x-sfpp", "25gbase-x-sfp28",
	"40gbase-x-qsfpp", "50gbase-x-sfp28", "100gbase-x-cfp2", "100gbase-x-qsfp28",
	"200gbase-x-qsfp56", "400gbase-x-qsfpdd", "other",
}
