package objects

// Network addressing classes: Prefix, VLAN, VLANGroup, IPAddress,
// MACAddress, FHRPGroup.

const (
	ClassPrefix     ClassTag = "ipam.prefix"
	ClassVLAN       ClassTag = "ipam.vlan"
	ClassVLANGroup  ClassTag = "ipam.vlangroup"
	ClassIPAddress  ClassTag = "ipam.ipaddress"
	ClassMACAddress ClassTag = "dcim.macaddress"
	ClassFHRPGroup  ClassTag = "ipam.fhrpgroup"
)

// scopeObjectTypeEnum enumerates the polymorphic assigned_object_type /
// scope_type values the engine may stamp: Site, SiteGroup, Cluster,
// ClusterGroup for scope_type; Interface/VMInterface for
// assigned_object_type.
var scopeObjectTypeEnum = []string{
	"dcim.site", "dcim.sitegroup", "virtualization.cluster", "virtualization.clustergroup",
	"dcim.interface", "virtualization.vminterface",
}

func init() {
	Register(&ClassDef{
		Tag:            ClassVLANGroup,
		Name:           "VLAN group",
		APIPath:        "ipam/vlan-groups",
		PrimaryKey:     "name",
		HasSlug:        true,
		HasLastUpdated: true,
		ReadOnly:       true,
		DataModel: map[string]FieldSpec{
			"name":        {Kind: KindString, MaxLen: 100},
			"slug":        {Kind: KindSlug, MaxLen: 100},
			"description": {Kind: KindString, MaxLen: 200},
			"scope_type":  {Kind: KindEnum, Enum: scopeObjectTypeEnum},
			"scope_id":    {Kind: KindInt},
		},
	})

	RegisterDisplayName(ClassVLAN, func(e *Entity, _ bool) string {
		vid := e.Data["vid"].String()
		if site := e.Data["site"].Ref; site != nil {
			return vid + " (site: " + site.GetDisplayName(false) + ")"
		}
		if group := e.Data["group"].Ref; group != nil {
			return vid + " (group: " + group.GetDisplayName(false) + ")"
		}
		return vid
	})

	Register(&ClassDef{
		Tag:                 ClassVLAN,
		Name:                "VLAN",
		APIPath:             "ipam/vlans",
		PrimaryKey:          "vid",
		SecondaryKey:        "name",
		EnforceSecondaryKey: true,
		HasLastUpdated:      true,
		DataModel: map[string]FieldSpec{
			"vid":         {Kind: KindInt},
			"name":        {Kind: KindString, MaxLen: 64},
			"site":        {Kind: KindReference, RefClass: ClassSite},
			"description": {Kind: KindString, MaxLen: 200},
			"tenant":      {Kind: KindReference, RefClass: ClassTenant},
			"tags":        {Kind: KindTagList, RefClass: ClassTagTag},
			"group":       {Kind: KindReference, RefClass: ClassVLANGroup},
		},
		Dependencies: []ClassTag{ClassSite, ClassTenant, ClassVLANGroup, ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassPrefix,
		Name:           "IP prefix",
		APIPath:        "ipam/prefixes",
		PrimaryKey:     "prefix",
		HasLastUpdated: true,
		ReadOnly:       true,
		DataModel: map[string]FieldSpec{
			"prefix":      {Kind: KindString},
			"site":        {Kind: KindReference, RefClass: ClassSite},
			"scope_type":  {Kind: KindEnum, Enum: scopeObjectTypeEnum},
			"scope_id":    {Kind: KindInt},
			"tenant":      {Kind: KindReference, RefClass: ClassTenant},
			"vlan":        {Kind: KindReference, RefClass: ClassVLAN},
			"vrf":         {Kind: KindReference, RefClass: ClassVRF},
			"description": {Kind: KindString, MaxLen: 200},
			"tags":        {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassSite, ClassTenant, ClassVLAN, ClassVRF, ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassIPAddress,
		Name:           "IP address",
		APIPath:        "ipam/ip-addresses",
		PrimaryKey:     "address",
		HasLastUpdated: true,
		Prune:          true,
		DataModel: map[string]FieldSpec{
			"address":              {Kind: KindString},
			"assigned_object_type": {Kind: KindEnum, Enum: scopeObjectTypeEnum},
			"assigned_object_id":   {Kind: KindReference, RefClass: ClassInterface},
			"description":          {Kind: KindString, MaxLen: 200},
			"role":                 {Kind: KindEnum, Enum: []string{"loopback", "secondary", "anycast", "vip", "vrrp", "hsrp", "glbp", "carp"}},
			"dns_name":             {Kind: KindString, MaxLen: 255},
			"tags":                 {Kind: KindTagList, RefClass: ClassTagTag},
			"tenant":               {Kind: KindReference, RefClass: ClassTenant},
			"vrf":                  {Kind: KindReference, RefClass: ClassVRF},
		},
		Dependencies: []ClassTag{ClassTenant, ClassVRF, ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassMACAddress,
		Name:           "MAC address",
		APIPath:        "dcim/mac-addresses",
		PrimaryKey:     "mac_address",
		HasLastUpdated: true,
		Prune:          true,
		MinAPIVersion:  "4.2.0",
		DataModel: map[string]FieldSpec{
			"mac_address":          {Kind: KindString},
			"assigned_object_type": {Kind: KindEnum, Enum: scopeObjectTypeEnum},
			"assigned_object_id":   {Kind: KindReference, RefClass: ClassInterface},
			"description":          {Kind: KindString, MaxLen: 200},
			"tags":                 {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassFHRPGroup,
		Name:           "FHRP group",
		APIPath:        "ipam/fhrp-groups",
		PrimaryKey:     "group_id",
		HasLastUpdated: true,
		ReadOnly:       true,
		DataModel: map[string]FieldSpec{
			"group_id":      {Kind: KindInt},
			"ip_addresses":  {Kind: KindReferenceList, RefClass: ClassIPAddress},
			"description":   {Kind: KindString, MaxLen: 200},
			"tags":          {Kind: KindTagList, RefClass: ClassTagTag},
			"custom_fields": {Kind: KindCustomFields},
		},
		Dependencies: []ClassTag{ClassIPAddress, ClassTagTag},
	})
}
