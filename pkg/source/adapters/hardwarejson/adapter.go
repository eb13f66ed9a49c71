// Package hardwarejson implements a concrete Source Adapter that reads
// per-device hardware-inventory snapshots (the kind a Redfish collector
// leaves behind) from a directory of JSON files: each file is matched to
// an existing Device by inventory id or serial, then that device's NICs,
// MACs, and IPs are reconciled from the file's contents. The file layout
// is deliberately small: device identity plus a flat port list.
package hardwarejson

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
	"github.com/netboxlabs/netbox-sync-engine/pkg/runlog"
	"github.com/netboxlabs/netbox-sync-engine/pkg/source"
	"github.com/netboxlabs/netbox-sync-engine/pkg/sync"
)

// minLayoutVersion gates the file format: files declaring an older
// layout are skipped with a warning rather than partially applied.
const minLayoutVersion = 1

// fileLayout is the on-disk shape of one hardware-inventory snapshot.
type fileLayout struct {
	Meta struct {
		InventoryLayoutVersion int `json:"inventory_layout_version"`
		InventoryID            int `json:"inventory_id"`
	} `json:"meta"`
	System struct {
		Serial       string `json:"serial"`
		Manufacturer string `json:"manufacturer"`
		Model        string `json:"model"`
	} `json:"system"`
	NetworkPorts []struct {
		Name         string   `json:"name"`
		ID           string   `json:"id"`
		MACAddress   string   `json:"mac_address"`
		Enabled      bool     `json:"enabled"`
		MgmtOnly     bool     `json:"mgmt_only"`
		Addresses    []string `json:"addresses"`
		UntaggedVLAN *vlanRef `json:"untagged_vlan"`
		TaggedVLANs  []vlanRef `json:"tagged_vlans"`
	} `json:"network_ports"`
}

// vlanRef is how a hardware-inventory file identifies a VLAN attached to
// a port: the vid NetBox keys on, plus the name to use if it must be
// created.
type vlanRef struct {
	VID  int    `json:"vid"`
	Name string `json:"name"`
}

// Adapter reads every *.json file in Directory and reconciles it against
// a matching Device.
type Adapter struct {
	source.Base

	// Directory is the path glob()'d for *.json inventory files.
	Directory string
}

// New constructs a hardwarejson Adapter sharing the common framework
// state other adapters use.
func New(directory string, settings source.Settings, inv *inventory.Inventory, syncSet sync.Settings, errs *runlog.Collector, log logr.Logger) *Adapter {
	return &Adapter{
		Base:      source.NewBase(settings, inv, syncSet, errs, log.WithName("hardwarejson").WithValues("source", settings.Name)),
		Directory: directory,
	}
}

// Type implements source.Adapter.
func (a *Adapter) Type() string { return "hardware_json" }

// Implements implements source.Adapter.
func (a *Adapter) Implements(sourceType string) bool { return sourceType == a.Type() }

// DependentClasses implements source.Adapter.
func (a *Adapter) DependentClasses() []objects.ClassTag {
	return []objects.ClassTag{
		objects.ClassDevice, objects.ClassInterface, objects.ClassMACAddress,
		objects.ClassIPAddress, objects.ClassManufacturer, objects.ClassTagTag,
	}
}

// Init implements source.Adapter; there's no connection to open, so this
// only validates the configured directory exists.
func (a *Adapter) Init(_ context.Context) error {
	info, err := os.Stat(a.Directory)
	if err != nil {
		return fmt.Errorf("stat inventory directory %s: %w", a.Directory, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("inventory path %s is not a directory", a.Directory)
	}
	a.MarkInitOK()
	return nil
}

// Apply implements source.Adapter: one pass over every *.json file in
// Directory, matching and updating a Device per file.
func (a *Adapter) Apply(ctx context.Context) error {
	matches, err := filepath.Glob(filepath.Join(a.Directory, "*.json"))
	if err != nil {
		return fmt.Errorf("globbing %s: %w", a.Directory, err)
	}

	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := a.applyFile(path); err != nil {
			a.Errors.Warnf("hardware inventory file %s: %v", path, err)
		}
	}

	for _, entry := range a.Deferred.Drain() {
		a.Errors.Warnf("unresolved deferred IP assignment for %s: %v", entry.Interface.GetDisplayName(false), entry.Data)
	}
	return nil
}

func (a *Adapter) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading: %w", err)
	}
	var content fileLayout
	if err := json.Unmarshal(raw, &content); err != nil {
		return fmt.Errorf("parsing json: %w", err)
	}
	if content.Meta.InventoryLayoutVersion < minLayoutVersion {
		return fmt.Errorf("inventory layout version %d not supported, minimum %d required",
			content.Meta.InventoryLayoutVersion, minLayoutVersion)
	}

	device, ok := a.Inv.GetByID(objects.ClassDevice, content.Meta.InventoryID)
	if !ok {
		macs := make([]string, 0, len(content.NetworkPorts))
		var ipCandidates []string
		for _, port := range content.NetworkPorts {
			if port.MACAddress != "" {
				macs = append(macs, port.MACAddress)
			}
			ipCandidates = append(ipCandidates, port.Addresses...)
		}
		var err error
		device, ok, err = sync.FindHost(a.Inv, a.SyncSet, objects.ClassDevice,
			map[string]any{"serial": content.System.Serial}, macs, ipCandidates)
		if err != nil {
			return fmt.Errorf("resolving device identity: %w", err)
		}
	}
	if !ok {
		return fmt.Errorf("no device found by inventory id %d or serial %q", content.Meta.InventoryID, content.System.Serial)
	}

	deviceData := map[string]any{}
	if content.System.Serial != "" {
		deviceData["serial"] = content.System.Serial
	}
	if content.System.Manufacturer != "" {
		a.Inv.AddUpdateObject(objects.ClassManufacturer, map[string]any{
			"name": source.NormalizeManufacturer(content.System.Manufacturer),
		}, false, a)
	}
	device.Update(source.PatchData(device, deviceData, false), false, a, a.Inv)

	incoming := map[string]source.InterfaceSpec{}
	for _, port := range content.NetworkPorts {
		name := port.Name
		if port.ID != "" {
			name = fmt.Sprintf("%s (%s)", name, port.ID)
		}
		incoming[name] = source.InterfaceSpec{Name: name, MAC: port.MACAddress, Physical: true}
	}
	matched := source.MapObjectInterfacesToCurrentInterfaces(a.Inv, device, incoming, true)

	for _, port := range content.NetworkPorts {
		name := port.Name
		if port.ID != "" {
			name = fmt.Sprintf("%s (%s)", name, port.ID)
		}

		ifaceData := map[string]any{
			"name":        name,
			"device":      device,
			"enabled":     port.Enabled,
			"mgmt_only":   port.MgmtOnly,
			"mac_address": port.MACAddress,
			"type":        "other",
		}

		var ips []source.IPSpec
		for _, addr := range port.Addresses {
			ips = append(ips, source.IPSpec{Address: addr, Enabled: port.Enabled})
		}

		var untagged *source.VLANSpec
		if port.UntaggedVLAN != nil {
			untagged = &source.VLANSpec{VID: port.UntaggedVLAN.VID, Name: port.UntaggedVLAN.Name}
		}
		var tagged []source.VLANSpec
		for _, v := range port.TaggedVLANs {
			tagged = append(tagged, source.VLANSpec{VID: v.VID, Name: v.Name})
		}

		a.AddUpdateInterface(objects.ClassInterface, matched[name], device, ifaceData, ips, true, untagged, tagged)
	}

	return nil
}
