// Package hypervisor implements a concrete Source Adapter for a
// hypervisor fleet: clusters, hosts (as Devices), and virtual machines,
// each carrying a set of NICs/IPs. It works against a small Client
// interface rather than a concrete SDK session, so any system that can
// list clusters, hosts, and VMs plugs in by implementing three methods.
package hypervisor

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
	"github.com/netboxlabs/netbox-sync-engine/pkg/runlog"
	"github.com/netboxlabs/netbox-sync-engine/pkg/source"
	"github.com/netboxlabs/netbox-sync-engine/pkg/sync"
)

// NIC is one network adapter discovered on a Host or VirtualMachine.
type NIC struct {
	Name         string
	MAC          string
	Enabled      bool
	Addresses    []string
	Primary      bool
	UntaggedVLAN *source.VLANSpec
	TaggedVLANs  []source.VLANSpec
}

// Host is one hypervisor node, reconciled onto a Device.
type Host struct {
	Name         string
	ClusterName  string
	Manufacturer string
	Model        string
	Serial       string
	NICs         []NIC
}

// VirtualMachine is reconciled onto a VM.
type VirtualMachine struct {
	Name        string
	ClusterName string
	HostName    string
	VCPUs       int
	MemoryMB    int
	DiskGB      int
	NICs        []NIC
}

// Client is the dataflow contract a concrete hypervisor connector owes
// this adapter: list every cluster's hosts and VMs. A production
// adapter backs this with a real SDK session; tests back it with a
// fake.
type Client interface {
	Clusters(ctx context.Context) ([]string, error)
	Hosts(ctx context.Context, cluster string) ([]Host, error)
	VirtualMachines(ctx context.Context, cluster string) ([]VirtualMachine, error)
}

// Adapter reconciles one hypervisor's clusters, hosts, and VMs into the
// inventory.
type Adapter struct {
	source.Base

	Client Client
}

// New constructs a hypervisor Adapter around an already-configured
// Client.
func New(client Client, settings source.Settings, inv *inventory.Inventory, syncSet sync.Settings, errs *runlog.Collector, log logr.Logger) *Adapter {
	return &Adapter{
		Base:   source.NewBase(settings, inv, syncSet, errs, log.WithName("hypervisor").WithValues("source", settings.Name)),
		Client: client,
	}
}

// Type implements source.Adapter.
func (a *Adapter) Type() string { return "hypervisor" }

// Implements implements source.Adapter.
func (a *Adapter) Implements(sourceType string) bool { return sourceType == a.Type() }

// DependentClasses implements source.Adapter.
func (a *Adapter) DependentClasses() []objects.ClassTag {
	return []objects.ClassTag{
		objects.ClassClusterGroup, objects.ClassCluster, objects.ClassDevice, objects.ClassVM,
		objects.ClassInterface, objects.ClassVMInterface, objects.ClassMACAddress,
		objects.ClassIPAddress, objects.ClassTagTag,
	}
}

// Init implements source.Adapter.
func (a *Adapter) Init(_ context.Context) error {
	if a.Client == nil {
		return fmt.Errorf("no hypervisor client configured")
	}
	a.MarkInitOK()
	return nil
}

// clusterState is the self-contained result of crawling one cluster,
// collected concurrently and merged into the inventory serially.
type clusterState struct {
	name  string
	hosts []Host
	vms   []VirtualMachine
}

// Apply implements source.Adapter. The per-cluster host/VM listings are
// fetched concurrently (one errgroup goroutine per cluster), since those
// are pure I/O against the hypervisor; the collected results are then
// merged into the inventory serially, because identity resolution and
// primary-IP arbitration need a consistent single-writer view of it.
func (a *Adapter) Apply(ctx context.Context) error {
	clusterNames, err := a.Client.Clusters(ctx)
	if err != nil {
		return fmt.Errorf("listing clusters: %w", err)
	}

	var names []string
	for _, name := range clusterNames {
		if a.Settings.NameFiltered(name) {
			continue
		}
		names = append(names, name)
	}

	collected := make([]clusterState, len(names))
	group, gctx := errgroup.WithContext(ctx)
	for i, name := range names {
		i, name := i, name
		group.Go(func() error {
			hosts, err := a.Client.Hosts(gctx, name)
			if err != nil {
				return fmt.Errorf("listing hosts for cluster %s: %w", name, err)
			}
			vms, err := a.Client.VirtualMachines(gctx, name)
			if err != nil {
				return fmt.Errorf("listing virtual machines for cluster %s: %w", name, err)
			}
			collected[i] = clusterState{name: name, hosts: hosts, vms: vms}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}

	for _, state := range collected {
		cluster, _ := a.Inv.AddUpdateObject(objects.ClassCluster, map[string]any{"name": state.name}, false, a)
		for _, h := range state.hosts {
			a.applyHost(cluster, h)
		}
		for _, vm := range state.vms {
			a.applyVM(cluster, vm)
		}
	}

	for _, entry := range a.Deferred.Drain() {
		a.Errors.Warnf("unresolved deferred IP assignment for %s: %v", entry.Interface.GetDisplayName(false), entry.Data)
	}
	return nil
}

func (a *Adapter) applyHost(cluster *objects.Entity, h Host) {
	if a.Settings.NameFiltered(h.Name) {
		return
	}
	deviceData := map[string]any{
		"name":    h.Name,
		"cluster": cluster,
		"serial":  h.Serial,
		"status":  "active",
	}
	if h.Model != "" {
		typeData := map[string]any{"model": h.Model}
		if mfr := source.NormalizeManufacturer(h.Manufacturer); mfr != "" {
			typeData["manufacturer"] = map[string]any{"name": mfr}
		}
		deviceData["device_type"] = typeData
	} else if h.Manufacturer != "" {
		a.Inv.AddUpdateObject(objects.ClassManufacturer, map[string]any{
			"name": source.NormalizeManufacturer(h.Manufacturer),
		}, false, a)
	}

	macs, primaryIPs := nicIdentityHints(h.NICs)
	device := a.FindOrCreateHost(objects.ClassDevice, deviceData, macs, primaryIPs)

	incoming := map[string]source.InterfaceSpec{}
	for _, nic := range h.NICs {
		incoming[nic.Name] = source.InterfaceSpec{Name: nic.Name, MAC: nic.MAC, Physical: true}
	}
	matched := source.MapObjectInterfacesToCurrentInterfaces(a.Inv, device, incoming, true)

	for _, nic := range h.NICs {
		a.AddUpdateInterface(objects.ClassInterface, matched[nic.Name], device, map[string]any{
			"name":        nic.Name,
			"device":      device,
			"enabled":     nic.Enabled,
			"mac_address": nic.MAC,
			"type":        "other",
		}, nicIPs(a, nic), true, nic.UntaggedVLAN, nic.TaggedVLANs)
	}
}

func (a *Adapter) applyVM(cluster *objects.Entity, vm VirtualMachine) {
	if a.Settings.NameFiltered(vm.Name) {
		return
	}
	vmData := map[string]any{
		"name":    vm.Name,
		"cluster": cluster,
		"status":  "active",
	}
	if vm.VCPUs > 0 {
		vmData["vcpus"] = vm.VCPUs
	}
	if vm.MemoryMB > 0 {
		vmData["memory"] = vm.MemoryMB
	}
	if vm.DiskGB > 0 {
		// The model carries disk in MB (the modern API unit); the
		// orchestrator converts back to GB for servers predating that.
		vmData["disk"] = vm.DiskGB * 1000
	}
	macs, primaryIPs := nicIdentityHints(vm.NICs)
	vmEntity := a.FindOrCreateHost(objects.ClassVM, vmData, macs, primaryIPs)

	incoming := map[string]source.InterfaceSpec{}
	for _, nic := range vm.NICs {
		incoming[nic.Name] = source.InterfaceSpec{Name: nic.Name, MAC: nic.MAC, Physical: false}
	}
	matched := source.MapObjectInterfacesToCurrentInterfaces(a.Inv, vmEntity, incoming, true)

	for _, nic := range vm.NICs {
		a.AddUpdateInterface(objects.ClassVMInterface, matched[nic.Name], vmEntity, map[string]any{
			"name":        nic.Name,
			"virtual_machine": vmEntity,
			"enabled":     nic.Enabled,
			"mac_address": nic.MAC,
		}, nicIPs(a, nic), false, nic.UntaggedVLAN, nic.TaggedVLANs)
	}
}

// nicIdentityHints collects the MAC set and primary-IP candidates a set
// of NICs offers to sync.FindHost's match cascade.
func nicIdentityHints(nics []NIC) (macs []string, primaryIPs []string) {
	for _, nic := range nics {
		if nic.MAC != "" {
			macs = append(macs, nic.MAC)
		}
		if nic.Primary {
			primaryIPs = append(primaryIPs, nic.Addresses...)
		}
	}
	return macs, primaryIPs
}

func nicIPs(a *Adapter, nic NIC) []source.IPSpec {
	var out []source.IPSpec
	for _, addr := range nic.Addresses {
		out = append(out, source.IPSpec{Address: addr, Enabled: nic.Enabled, Primary: nic.Primary})
	}
	return out
}
