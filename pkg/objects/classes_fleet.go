package objects

// Fleet topology classes: ClusterGroup, ClusterType, Cluster; DeviceRole,
// DeviceType, Manufacturer, Platform; Device.

const (
	ClassClusterGroup ClassTag = "virtualization.clustergroup"
	ClassClusterType  ClassTag = "virtualization.clustertype"
	ClassCluster      ClassTag = "virtualization.cluster"
	ClassDeviceRole   ClassTag = "dcim.devicerole"
	ClassDeviceType   ClassTag = "dcim.devicetype"
	ClassManufacturer ClassTag = "dcim.manufacturer"
	ClassPlatform     ClassTag = "dcim.platform"
	ClassDevice       ClassTag = "dcim.device"
)

func init() {
	Register(&ClassDef{
		Tag:            ClassManufacturer,
		Name:           "manufacturer",
		APIPath:        "dcim/manufacturers",
		PrimaryKey:     "name",
		HasSlug:        true,
		HasLastUpdated: true,
		DataModel: map[string]FieldSpec{
			"name":        {Kind: KindString, MaxLen: 100},
			"slug":        {Kind: KindSlug, MaxLen: 100},
			"description": {Kind: KindString, MaxLen: 200},
			"tags":        {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassDeviceType,
		Name:           "device type",
		APIPath:        "dcim/device-types",
		PrimaryKey:     "model",
		HasSlug:        true,
		HasLastUpdated: true,
		DataModel: map[string]FieldSpec{
			"model":        {Kind: KindString, MaxLen: 100},
			"slug":         {Kind: KindSlug, MaxLen: 100},
			"part_number":  {Kind: KindString, MaxLen: 50},
			"manufacturer": {Kind: KindReference, RefClass: ClassManufacturer},
			"tags":         {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassManufacturer, ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassPlatform,
		Name:           "platform",
		APIPath:        "dcim/platforms",
		PrimaryKey:     "name",
		HasSlug:        true,
		HasLastUpdated: true,
		DataModel: map[string]FieldSpec{
			"name":         {Kind: KindString, MaxLen: 100},
			"slug":         {Kind: KindSlug, MaxLen: 100},
			"manufacturer": {Kind: KindReference, RefClass: ClassManufacturer},
			"description":  {Kind: KindString, MaxLen: 200},
			"tags":         {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassManufacturer, ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassClusterType,
		Name:           "cluster type",
		APIPath:        "virtualization/cluster-types",
		PrimaryKey:     "name",
		HasSlug:        true,
		HasLastUpdated: true,
		DataModel: map[string]FieldSpec{
			"name":        {Kind: KindString, MaxLen: 100},
			"slug":        {Kind: KindSlug, MaxLen: 100},
			"description": {Kind: KindString, MaxLen: 200},
			"tags":        {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassClusterGroup,
		Name:           "cluster group",
		APIPath:        "virtualization/cluster-groups",
		PrimaryKey:     "name",
		HasSlug:        true,
		HasLastUpdated: true,
		DataModel: map[string]FieldSpec{
			"name":          {Kind: KindString, MaxLen: 100},
			"slug":          {Kind: KindSlug, MaxLen: 100},
			"description":   {Kind: KindString, MaxLen: 200},
			"tags":          {Kind: KindTagList, RefClass: ClassTagTag},
			"custom_fields": {Kind: KindCustomFields},
		},
		Dependencies: []ClassTag{ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassDeviceRole,
		Name:           "device role",
		APIPath:        "dcim/device-roles",
		PrimaryKey:     "name",
		HasSlug:        true,
		HasLastUpdated: true,
		DataModel: map[string]FieldSpec{
			"name":        {Kind: KindString, MaxLen: 100},
			"slug":        {Kind: KindSlug, MaxLen: 100},
			"color":       {Kind: KindString, MaxLen: 6},
			"description": {Kind: KindString, MaxLen: 200},
			"vm_role":     {Kind: KindBool},
			"tags":        {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassCluster,
		Name:           "cluster",
		APIPath:        "virtualization/clusters",
		PrimaryKey:     "name",
		SecondaryKey:   "site",
		HasLastUpdated: true,
		DataModel: map[string]FieldSpec{
			"name":     {Kind: KindString, MaxLen: 100},
			"comments": {Kind: KindString},
			"type":     {Kind: KindReference, RefClass: ClassClusterType},
			"tenant":   {Kind: KindReference, RefClass: ClassTenant},
			"group":    {Kind: KindReference, RefClass: ClassClusterGroup},
			"scope_id": {Kind: KindReference, RefClass: ClassSite},
			"tags":     {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassClusterType, ClassTenant, ClassClusterGroup, ClassSite, ClassTagTag},
	})

	Register(&ClassDef{
		Tag:                 ClassDevice,
		Name:                "device",
		APIPath:             "dcim/devices",
		PrimaryKey:          "name",
		SecondaryKey:        "site",
		EnforceSecondaryKey: true,
		HasLastUpdated:      true,
		Prune:               true,
		DataModel: map[string]FieldSpec{
			"name":          {Kind: KindString, MaxLen: 64},
			"device_type":   {Kind: KindReference, RefClass: ClassDeviceType},
			"role":          {Kind: KindReference, RefClass: ClassDeviceRole},
			"platform":      {Kind: KindReference, RefClass: ClassPlatform},
			"serial":        {Kind: KindString, MaxLen: 50},
			"site":          {Kind: KindReference, RefClass: ClassSite},
			"status":        {Kind: KindEnum, Enum: []string{"offline", "active", "planned", "staged", "failed", "inventory", "decommissioning"}},
			"cluster":       {Kind: KindReference, RefClass: ClassCluster},
			"asset_tag":     {Kind: KindString, MaxLen: 50},
			"primary_ip4":   {Kind: KindReference, RefClass: ClassIPAddress},
			"primary_ip6":   {Kind: KindReference, RefClass: ClassIPAddress},
			"tags":          {Kind: KindTagList, RefClass: ClassTagTag},
			"tenant":        {Kind: KindReference, RefClass: ClassTenant},
			"custom_fields": {Kind: KindCustomFields},
		},
		Dependencies: []ClassTag{ClassDeviceType, ClassDeviceRole, ClassPlatform, ClassSite, ClassCluster, ClassTenant, ClassTagTag},
	})
}
