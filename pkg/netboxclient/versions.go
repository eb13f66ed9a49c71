package netboxclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// MinSupportedAPIVersion is the lowest NetBox API version this engine
// will speak to.
const MinSupportedAPIVersion = "2.9"

// Feature names one of the behaviours gated by NetBox API version.
type Feature string

// VirtualDisk availability (3.7.0) is not listed here: it gates a whole
// entity class, not a field, and is expressed as the class's
// MinAPIVersion instead.
const (
	FeatureInterfaceSpeedDuplex   Feature = "interface_speed_duplex"    // 3.2.0
	FeatureVMSite                 Feature = "vm_site"                   // 3.3.0
	FeatureDeviceRoleRename       Feature = "device_role_rename"        // 3.6.0
	FeatureCustomFieldObjectTypes Feature = "custom_field_object_types" // 4.0.0
	FeatureVMDiskInMB             Feature = "vm_disk_in_mb"             // 4.1.0
	FeatureScopeFields            Feature = "scope_fields"              // 4.2.0
)

var featureSince = map[Feature]version{
	FeatureInterfaceSpeedDuplex:   {3, 2, 0},
	FeatureVMSite:                 {3, 3, 0},
	FeatureDeviceRoleRename:       {3, 6, 0},
	FeatureCustomFieldObjectTypes: {4, 0, 0},
	FeatureVMDiskInMB:             {4, 1, 0},
	FeatureScopeFields:            {4, 2, 0},
}

type version struct{ major, minor, patch int }

func parseVersion(s string) version {
	parts := strings.SplitN(s, ".", 3)
	v := version{}
	if len(parts) > 0 {
		v.major = strconvAtoiOrZero(parts[0])
	}
	if len(parts) > 1 {
		v.minor = strconvAtoiOrZero(parts[1])
	}
	if len(parts) > 2 {
		v.patch = strconvAtoiOrZero(parts[2])
	}
	return v
}

func (v version) less(o version) bool {
	if v.major != o.major {
		return v.major < o.major
	}
	if v.minor != o.minor {
		return v.minor < o.minor
	}
	return v.patch < o.patch
}

// FeatureGate reports whether feature is available given the API version
// discovered on the connection.
func (c *Client) FeatureGate(feature Feature) bool {
	since, known := featureSince[feature]
	if !known {
		return true
	}
	return !parseVersion(c.apiVersion).less(since)
}

// CheckMinimumVersion discovers the API version (via a harmless GET
// against the status endpoint) and returns a *FatalError if it is below
// MinSupportedAPIVersion or absent entirely.
func (c *Client) CheckMinimumVersion(ctx context.Context) error {
	_, _, err := c.do(ctx, "GET", c.url("status", url.Values{}), nil)
	if err != nil {
		return err
	}
	if c.apiVersion == "" {
		return fatalf("unable to discover NetBox API version")
	}
	if parseVersion(c.apiVersion).less(parseVersion(MinSupportedAPIVersion)) {
		return fatalf("NetBox API version %s is below the minimum supported version %s", c.apiVersion, MinSupportedAPIVersion)
	}
	return nil
}

// MinAPIVersionSatisfied reports whether the connected server's version
// satisfies def.MinAPIVersion, so the orchestrator can skip a class
// entirely rather than issue doomed requests.
func (c *Client) MinAPIVersionSatisfied(def *objects.ClassDef) bool {
	if def.MinAPIVersion == "" {
		return true
	}
	return !parseVersion(c.apiVersion).less(parseVersion(def.MinAPIVersion))
}

func (c *Client) String() string {
	return fmt.Sprintf("netboxclient(base=%s, api_version=%s)", c.cfg.BaseURL, c.apiVersion)
}
