package objects

// Organisational classes: Tag, Tenant, Site, SiteGroup, VRF.

const (
	ClassTagTag    ClassTag = "extras.tag"
	ClassTenant    ClassTag = "tenancy.tenant"
	ClassSite      ClassTag = "dcim.site"
	ClassSiteGroup ClassTag = "dcim.sitegroup"
	ClassVRF       ClassTag = "ipam.vrf"
)

func init() {
	Register(&ClassDef{
		Tag:        ClassTagTag,
		Name:       "tag",
		APIPath:    "extras/tags",
		PrimaryKey: "name",
		HasSlug:    true,
		DataModel: map[string]FieldSpec{
			"name":         {Kind: KindString, MaxLen: 100},
			"slug":         {Kind: KindSlug, MaxLen: 100},
			"color":        {Kind: KindString, MaxLen: 6},
			"description":  {Kind: KindString, MaxLen: 200},
			"tagged_items": {Kind: KindInt},
		},
	})

	Register(&ClassDef{
		Tag:            ClassTenant,
		Name:           "tenant",
		APIPath:        "tenancy/tenants",
		PrimaryKey:     "name",
		HasSlug:        true,
		HasLastUpdated: true,
		DataModel: map[string]FieldSpec{
			"name":        {Kind: KindString, MaxLen: 100},
			"slug":        {Kind: KindSlug, MaxLen: 100},
			"comments":    {Kind: KindString},
			"description": {Kind: KindString, MaxLen: 200},
			"tags":        {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassSiteGroup,
		Name:           "site group",
		APIPath:        "dcim/site-groups",
		PrimaryKey:     "name",
		HasSlug:        true,
		HasLastUpdated: true,
		ReadOnly:       true,
		DataModel: map[string]FieldSpec{
			"name": {Kind: KindString, MaxLen: 100},
			"slug": {Kind: KindSlug, MaxLen: 100},
		},
	})

	Register(&ClassDef{
		Tag:            ClassSite,
		Name:           "site",
		APIPath:        "dcim/sites",
		PrimaryKey:     "name",
		HasSlug:        true,
		HasLastUpdated: true,
		DataModel: map[string]FieldSpec{
			"name":     {Kind: KindString, MaxLen: 100},
			"slug":     {Kind: KindSlug, MaxLen: 100},
			"comments": {Kind: KindString},
			"tenant":   {Kind: KindReference, RefClass: ClassTenant},
			"group":    {Kind: KindReference, RefClass: ClassSiteGroup},
			"tags":     {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassTenant, ClassSiteGroup, ClassTagTag},
	})

	Register(&ClassDef{
		Tag:            ClassVRF,
		Name:           "VRF",
		APIPath:        "ipam/vrfs",
		PrimaryKey:     "name",
		HasLastUpdated: true,
		ReadOnly:       true,
		DataModel: map[string]FieldSpec{
			"name":        {Kind: KindString, MaxLen: 100},
			"description": {Kind: KindString, MaxLen: 200},
			"tenant":      {Kind: KindReference, RefClass: ClassTenant},
			"tags":        {Kind: KindTagList, RefClass: ClassTagTag},
		},
		Dependencies: []ClassTag{ClassTenant, ClassTagTag},
	})
}
