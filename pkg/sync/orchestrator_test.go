package sync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netboxlabs/netbox-sync-engine/pkg/inventory"
	"github.com/netboxlabs/netbox-sync-engine/pkg/netboxclient"
	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
	"github.com/netboxlabs/netbox-sync-engine/pkg/runlog"
)

// fakeNetBox is a minimal in-memory stand-in for the real API: it assigns
// incrementing ids to POSTs, records every method+path it receives, and
// answers PATCH/DELETE with 200/204. It exists purely to exercise the
// three-pass apply ordering end to end.
type fakeNetBox struct {
	nextID   atomic.Int64
	requests []string
}

func (f *fakeNetBox) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		w.Header().Set("API-Version", "3.7.0")
		switch r.Method {
		case http.MethodPost:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			body["id"] = float64(f.nextID.Add(1))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(body)
		case http.MethodPatch:
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(body)
		case http.MethodDelete:
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]any{"results": []any{}})
		}
	}
}

func newTestOrchestrator(t *testing.T, fake *fakeNetBox) (*Orchestrator, *inventory.Inventory) {
	t.Helper()
	srv := httptest.NewServer(fake.handler(t))
	t.Cleanup(srv.Close)

	client, err := netboxclient.New(netboxclient.Config{BaseURL: srv.URL, Token: "t"}, logr.Discard())
	require.NoError(t, err)

	inv := inventory.New(logr.Discard())
	errs := runlog.New(logr.Discard())
	o := New(inv, client, Settings{
		PrimaryTagName:        "NetBox-synced",
		PrimaryTagDescription: "Managed by the sync engine",
	}, errs, logr.Discard())
	return o, inv
}

type fakeSource struct{ name string }

func (s fakeSource) SourceName() string { return s.name }
func (s fakeSource) Enabled() bool      { return true }

// TestFreshHostPOSTsEverythingNoPatches covers the first-run case: a brand new
// Device with one Interface and no prior NetBox state must POST every
// dependency in order and end with is_new=false everywhere.
func TestFreshHostPOSTsEverythingNoPatches(t *testing.T) {
	fake := &fakeNetBox{}
	o, inv := newTestOrchestrator(t, fake)

	src := fakeSource{name: "hw-inventory"}
	inv.RegisterSource(src)

	site, _ := inv.AddUpdateObject(objects.ClassSite, map[string]any{"name": "dc1"}, false, src)
	device, _ := inv.AddUpdateObject(objects.ClassDevice, map[string]any{
		"name": "h1", "serial": "S1", "site": site,
	}, false, src)
	inv.AddUpdateObject(objects.ClassInterface, map[string]any{
		"name": "eth0", "device": device, "mac_address": "AA:BB:CC:00:00:01",
	}, false, src)
	inv.ResolveRelations()

	require.NoError(t, o.Run(t.Context()))

	assert.False(t, device.IsNew)
	assert.Greater(t, device.NBID, 0)
	for _, iface := range inv.All(objects.ClassInterface) {
		assert.False(t, iface.IsNew)
		assert.Greater(t, iface.NBID, 0)
	}

	var posts int
	for _, r := range fake.requests {
		if r[:4] == "POST" {
			posts++
		}
	}
	assert.Greater(t, posts, 0)
}

// TestRenameExistingDeviceIssuesSinglePatch covers the rename case: a device
// already known to NetBox (is_new=false, nb_id set) whose only dirty field
// is its name produces exactly one PATCH with that field.
func TestRenameExistingDeviceIssuesSinglePatch(t *testing.T) {
	fake := &fakeNetBox{}
	o, inv := newTestOrchestrator(t, fake)

	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{
		"id": float64(10), "name": "h1", "serial": "S1",
	}, true, nil)
	require.False(t, device.IsNew)
	require.Equal(t, 10, device.NBID)

	device.Update(map[string]any{"name": "h1-renamed"}, false, nil, inv)
	require.Contains(t, device.UpdatedItems, "name")

	require.NoError(t, o.Run(t.Context()))

	var patched bool
	for _, r := range fake.requests {
		if r == "PATCH /api/dcim/devices/10/" {
			patched = true
		}
	}
	assert.True(t, patched)
	for _, r := range fake.requests {
		assert.NotContains(t, r, "POST /api/dcim/devices")
	}
}

// TestIdempotentSecondRunEmitsNoUpsertPatches exercises idempotence: once an entity reflects exactly what NetBox already returned
// (is_new=false, no dirty fields), a second Run must not PATCH it again.
func TestIdempotentSecondRunEmitsNoUpsertPatches(t *testing.T) {
	fake := &fakeNetBox{}
	o, inv := newTestOrchestrator(t, fake)

	inv.AddObject(objects.ClassManufacturer, map[string]any{
		"id": float64(1), "name": "Dell", "slug": "dell",
	}, true, nil)

	require.NoError(t, o.Run(t.Context()))
	fake.requests = nil

	require.NoError(t, o.Run(t.Context()))
	for _, r := range fake.requests {
		assert.NotContains(t, r, "PATCH")
		assert.NotContains(t, r, "POST")
	}
}

// TestForwardReferenceResolvesInFinalPass covers Pass 3: a brand-new
// Device's primary_ip4 field is always deferred (deferredKeys), so it can
// only be sent once the IPAddress it points at has been POSTed and gained
// an id in Pass 2. This guards against a regression where the deferred
// bag was computed but never re-applied to UpdatedItems after Pass 2's
// read-from-netbox feedback reset it, silently dropping the reference.
func TestForwardReferenceResolvesInFinalPass(t *testing.T) {
	fake := &fakeNetBox{}
	o, inv := newTestOrchestrator(t, fake)

	src := fakeSource{name: "hw-inventory"}
	inv.RegisterSource(src)

	device, _ := inv.AddUpdateObject(objects.ClassDevice, map[string]any{
		"name": "h1", "serial": "S1",
	}, false, src)
	ip, _ := inv.AddUpdateObject(objects.ClassIPAddress, map[string]any{
		"address": "10.0.0.5/24",
	}, false, src)
	device.Update(map[string]any{"primary_ip4": ip}, false, nil, inv)
	inv.ResolveRelations()

	require.Contains(t, device.UpdatedItems, "primary_ip4")

	require.NoError(t, o.Run(t.Context()))

	assert.Greater(t, ip.NBID, 0)
	assert.Greater(t, device.NBID, 0)
	assert.Equal(t, ip, device.Get("primary_ip4").Ref)
	assert.Empty(t, device.UpdatedItems)

	var sawPrimaryIPPatch bool
	for _, r := range fake.requests {
		if r == "PATCH /api/dcim/devices/"+strconv.Itoa(device.NBID)+"/" {
			sawPrimaryIPPatch = true
		}
	}
	assert.True(t, sawPrimaryIPPatch, "expected a final-pass PATCH resolving primary_ip4, requests: %v", fake.requests)
}

// TestPruneDeletesInterfacesBeforeDevice covers the end-of-run DELETE
// sweep ordering: an orphaned Device past the grace period loses its
// Interfaces first, then itself.
func TestPruneDeletesInterfacesBeforeDevice(t *testing.T) {
	fake := &fakeNetBox{}
	o, inv := newTestOrchestrator(t, fake)
	o.Settings.EnablePrune = true
	o.Settings.PruneDelayDays = 30

	primaryTag, _ := inv.AddObject(objects.ClassTagTag, map[string]any{"id": float64(1), "name": "NetBox-synced"}, true, nil)
	inv.AddObject(objects.ClassTagTag, map[string]any{"id": float64(2), "name": "NetBox-synced: Orphaned"}, true, nil)

	device, _ := inv.AddObject(objects.ClassDevice, map[string]any{
		"id": float64(10), "name": "stale-host", "tags": []any{float64(1), float64(2)},
	}, true, nil)
	device.LastUpdated = "2020-01-01T00:00:00Z"
	inv.AddObject(objects.ClassInterface, map[string]any{
		"id": float64(20), "name": "eth0", "device": device,
	}, true, nil)
	inv.ResolveRelations()
	require.True(t, device.HasTag(primaryTag))

	require.NoError(t, o.Run(t.Context()))

	ifaceDelete, deviceDelete := -1, -1
	for i, r := range fake.requests {
		switch r {
		case "DELETE /api/dcim/interfaces/20/":
			ifaceDelete = i
		case "DELETE /api/dcim/devices/10/":
			deviceDelete = i
		}
	}
	require.GreaterOrEqual(t, ifaceDelete, 0, "interface DELETE missing, requests: %v", fake.requests)
	require.GreaterOrEqual(t, deviceDelete, 0, "device DELETE missing, requests: %v", fake.requests)
	assert.Less(t, ifaceDelete, deviceDelete, "interfaces must be deleted before their device")
}

// TestTagGCIssuesDeleteForSweptTags checks that a tag marked by TagGC
// actually produces a DELETE request, not just a flag flip.
func TestTagGCIssuesDeleteForSweptTags(t *testing.T) {
	fake := &fakeNetBox{}
	o, inv := newTestOrchestrator(t, fake)
	o.Settings.EnableTagGC = true

	inv.AddObject(objects.ClassTagTag, map[string]any{
		"id": float64(7), "name": "Source: long-gone",
		"description":  "NetBox-synced: objects synced from source long-gone",
		"tagged_items": float64(0),
	}, true, nil)

	require.NoError(t, o.Run(t.Context()))

	assert.Contains(t, fake.requests, "DELETE /api/extras/tags/7/")
}
