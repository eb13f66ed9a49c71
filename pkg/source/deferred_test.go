package source

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/netboxlabs/netbox-sync-engine/pkg/objects"
)

func TestDeferredIPQueueDrainReturnsAndEmpties(t *testing.T) {
	q := NewDeferredIPQueue()
	assert.Equal(t, 0, q.Len())

	iface := objects.NewEntity(objects.ClassInterface)
	addr := objects.NewEntity(objects.ClassIPAddress)
	q.Defer(iface, addr, map[string]any{"address": "10.0.0.1/32"})
	q.Defer(iface, addr, map[string]any{"address": "10.0.0.2/32"})
	assert.Equal(t, 2, q.Len())

	drained := q.Drain()
	assert.Len(t, drained, 2)
	assert.Same(t, iface, drained[0].Interface)
	assert.Equal(t, 0, q.Len())

	assert.Empty(t, q.Drain())
}
