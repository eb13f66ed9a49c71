package source

import "net"

// PermittedSubnets is an include/exclude CIDR list (exclusions prefixed
// "!" in config and split apart before construction here) gating which
// discovered IPs an adapter is allowed to hand to the engine.
type PermittedSubnets struct {
	Include []*net.IPNet
	Exclude []*net.IPNet
}

// NewPermittedSubnets parses a list of CIDR strings, routing entries
// prefixed "!" into Exclude and the rest into Include.
func NewPermittedSubnets(cidrs []string) (PermittedSubnets, error) {
	var ps PermittedSubnets
	for _, raw := range cidrs {
		exclude := false
		s := raw
		if len(s) > 0 && s[0] == '!' {
			exclude = true
			s = s[1:]
		}
		_, network, err := net.ParseCIDR(s)
		if err != nil {
			return PermittedSubnets{}, err
		}
		if exclude {
			ps.Exclude = append(ps.Exclude, network)
		} else {
			ps.Include = append(ps.Include, network)
		}
	}
	return ps, nil
}

// Permitted reports whether ip may be handed to the engine: rejects
// link-local and loopback addresses outright, requires at least one
// Include match when Include is non-empty, and rejects any Exclude match.
func (ps PermittedSubnets) Permitted(ip net.IP) bool {
	if ip == nil || ip.IsLinkLocalUnicast() || ip.IsLoopback() {
		return false
	}
	for _, n := range ps.Exclude {
		if n.Contains(ip) {
			return false
		}
	}
	if len(ps.Include) == 0 {
		return true
	}
	for _, n := range ps.Include {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
