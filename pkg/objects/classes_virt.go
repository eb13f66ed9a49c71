package objects

// Virtualisation classes: VM, VMInterface, VirtualDisk.

const (
	ClassVM          ClassTag = "virtualization.virtualmachine"
	ClassVMInterface ClassTag = "virtualization.vminterface"
	ClassVirtualDisk ClassTag = "virtualization.virtualdisk"
)

func init() {
	Register(&ClassDef{
		Tag:            ClassVM,
		Name:           "virtual machine",
		APIPath:        "virtualization/virtual-machines",
		PrimaryKey:     "name",
		SecondaryKey:   "cluster",
		HasLastUpdated: true,
		Prune:          true,
		DataModel: map[string]FieldSpec{
			"name":          {Kind: KindString, MaxLen: 64},
			"serial":        {Kind: KindString, MaxLen: 50},
			"status":        {Kind: KindEnum, Enum: []string{"offline", "active", "planned", "staged", "failed", "decommissioning"}},
			"cluster":       {Kind: KindReference, RefClass: ClassCluster},
			"role":          {Kind: KindReference, RefClass: ClassDeviceRole},
			"platform":      {Kind: KindReference, RefClass: ClassPlatform},
			"vcpus":         {Kind: KindInt},
			"memory":        {Kind: KindInt},
			"disk":          {Kind: KindInt},
			"comments":      {Kind: KindString},
			"primary_ip4":   {Kind: KindReference, RefClass: ClassIPAddress},
			"primary_ip6":   {Kind: KindReference, RefClass: ClassIPAddress},
			"site":          {Kind: KindReference, RefClass: ClassSite},
			"tags":          {Kind: KindTagList, RefClass: ClassTagTag},
			"tenant":        {Kind: KindReference, RefClass: ClassTenant},
			"device":        {Kind: KindReference, RefClass: ClassDevice},
			"custom_fields": {Kind: KindCustomFields},
		},
		Dependencies: []ClassTag{ClassCluster, ClassDeviceRole, ClassPlatform, ClassSite, ClassTenant, ClassDevice, ClassTagTag},
	})

	Register(&ClassDef{
		Tag:                 ClassVMInterface,
		Name:                "virtual machine interface",
		APIPath:             "virtualization/interfaces",
		PrimaryKey:          "name",
		SecondaryKey:        "virtual_machine",
		EnforceSecondaryKey: true,
		HasLastUpdated:      true,
		Prune:               true,
		DataModel: map[string]FieldSpec{
			"name":                {Kind: KindString, MaxLen: 64},
			"virtual_machine":     {Kind: KindReference, RefClass: ClassVM},
			"enabled":             {Kind: KindBool},
			"mac_address":         {Kind: KindString},
			"primary_mac_address": {Kind: KindReference, RefClass: ClassMACAddress},
			"mtu":                 {Kind: KindInt},
			"mode":                {Kind: KindEnum, Enum: []string{"access", "tagged", "tagged-all"}},
			"untagged_vlan":       {Kind: KindReference, RefClass: ClassVLAN},
			"tagged_vlans":        {Kind: KindVLANList, RefClass: ClassVLAN},
			"description":         {Kind: KindString, MaxLen: 200},
			"tags":                {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassVM, ClassMACAddress, ClassVLAN, ClassTagTag},
	})

	Register(&ClassDef{
		Tag:                 ClassVirtualDisk,
		Name:                "virtual disk",
		APIPath:             "virtualization/virtual-disks",
		PrimaryKey:          "name",
		SecondaryKey:        "virtual_machine",
		EnforceSecondaryKey: true,
		HasLastUpdated:      true,
		Prune:               true,
		MinAPIVersion:       "3.7.0",
		DataModel: map[string]FieldSpec{
			"name":            {Kind: KindString, MaxLen: 64},
			"virtual_machine": {Kind: KindReference, RefClass: ClassVM},
			"description":     {Kind: KindString, MaxLen: 200},
			"size":            {Kind: KindInt},
			"tags":            {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassVM, ClassTagTag},
	})
}
