package sync

import (
	"strings"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

// IPArbitrationOutcome is the result of resolving a single IP candidate
// against any existing holder of the same address.
type IPArbitrationOutcome int

const (
	// ArbitrationProceed: no conflicting holder, or the conflict resolves
	// in favor of the new assignment — go ahead and attach.
	ArbitrationProceed IPArbitrationOutcome = iota
	// ArbitrationReassign: same Device/VM, different interface — move the
	// IP, don't create a duplicate.
	ArbitrationReassign
	// ArbitrationDefer: both interfaces enabled — needs a second
	// evaluation pass.
	ArbitrationDefer
	// ArbitrationSkip: ours loses outright.
	ArbitrationSkip
)

// ArbitratePrimaryIP decides what to do when newInterface wants to claim
// address, which may already be held by an existing IPAddress entity
// attached to a different interface. addressRole == "anycast"
// exempts the address from exclusivity entirely.
func ArbitratePrimaryIP(existing *objects.Entity, newInterface *objects.Entity) IPArbitrationOutcome {
	if existing == nil {
		return ArbitrationProceed
	}
	if existing.Get("role").String() == "anycast" {
		return ArbitrationProceed
	}

	existingHolder := existing.Get("assigned_object_id").Ref
	if existingHolder == nil {
		return ArbitrationProceed
	}

	existingParent := interfaceParent(existingHolder)
	newParent := interfaceParent(newInterface)
	if existingParent != nil && newParent != nil && existingParent.Handle() == newParent.Handle() &&
		existingHolder.Handle() != newInterface.Handle() {
		return ArbitrationReassign
	}

	existingEnabled := existingHolder.Get("enabled").Bool
	oursEnabled := newInterface != nil && newInterface.Get("enabled").Bool

	switch {
	case !existingEnabled && oursEnabled:
		return ArbitrationProceed
	case existingEnabled && !oursEnabled:
		return ArbitrationSkip
	case existingEnabled && oursEnabled:
		return ArbitrationDefer
	default:
		return ArbitrationSkip
	}
}

func interfaceParent(iface *objects.Entity) *objects.Entity {
	if iface == nil {
		return nil
	}
	switch iface.Class {
	case objects.ClassInterface:
		return iface.Get("device").Ref
	case objects.ClassVMInterface:
		return iface.Get("virtual_machine").Ref
	default:
		return nil
	}
}

// SetPrimaryIP applies the configured set_primary_ip policy: "always"
// steals the IP from any other holder (unsetting their primary_ip
// fields), "when-undefined" only assigns if the field is currently
// empty, "never" is a no-op.
func SetPrimaryIP(inv *inventory.Inventory, policy string, host *objects.Entity, field string, ip *objects.Entity) {
	if host == nil || ip == nil {
		return
	}
	switch policy {
	case "never":
		return
	case "when-undefined":
		if !host.Get(field).IsEmpty() {
			return
		}
	case "always":
		stealFromOtherHolders(inv, field, ip, host)
	}
	host.Update(map[string]any{field: ip}, false, host.Source, inv)
}

// ApplySoleIPv6Fallback promotes the single IPv6 address of an
// otherwise primary-IP-less Device/VM to primary_ip6. Runs once per run,
// after every source has applied, so "sole" is judged against the
// complete discovered state rather than one adapter's partial view.
func (o *Orchestrator) ApplySoleIPv6Fallback() {
	v6ByHost := map[uint64][]*objects.Entity{}
	hostByHandle := map[uint64]*objects.Entity{}
	for _, ip := range o.Inv.All(objects.ClassIPAddress) {
		if !strings.Contains(ip.Get("address").String(), ":") {
			continue
		}
		parent := interfaceParent(ip.Get("assigned_object_id").Ref)
		if parent == nil {
			continue
		}
		v6ByHost[parent.Handle()] = append(v6ByHost[parent.Handle()], ip)
		hostByHandle[parent.Handle()] = parent
	}

	for handle, ips := range v6ByHost {
		host := hostByHandle[handle]
		if host.Source == nil || len(ips) != 1 {
			continue
		}
		if !host.Get("primary_ip4").IsEmpty() || !host.Get("primary_ip6").IsEmpty() {
			continue
		}
		host.Update(map[string]any{"primary_ip6": ips[0]}, false, host.Source, o.Inv)
	}
}

func stealFromOtherHolders(inv *inventory.Inventory, field string, ip *objects.Entity, except *objects.Entity) {
	for _, class := range []objects.ClassTag{objects.ClassDevice, objects.ClassVM} {
		for _, e := range inv.All(class) {
			if e.Handle() == except.Handle() {
				continue
			}
			if held := e.Get(field).Ref; held != nil && held.Handle() == ip.Handle() {
				e.UnsetAttribute(field)
			}
		}
	}
}
