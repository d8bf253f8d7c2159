package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_PruneClearsSelection(t *testing.T) {
	s := NewSnapshot()
	s.Replace(testForest())
	s.Select(KindCustomer, "c1")

	require.True(t, s.Prune(KindCustomer, "c1"))

	_, _, ok := s.Selected()
	assert.False(t, ok)
	assert.Empty(t, s.Forest()[0].Customers)
}

func TestSnapshot_PruneKeepsUnrelatedSelection(t *testing.T) {
	s := NewSnapshot()
	s.Replace(testForest())
	s.Select(KindPartner, "p1")

	require.True(t, s.Prune(KindReport, "r1"))

	kind, id, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, KindPartner, kind)
	assert.Equal(t, "p1", id)
}

// Replace must supersede whatever state the speculative prune left
// behind: after delete + refetch no node with the deleted id remains,
// regardless of the transient content.
func TestSnapshot_ReplaceSupersedesPrune(t *testing.T) {
	s := NewSnapshot()
	s.Replace(testForest())
	s.Prune(KindCustomer, "c1")

	server := Forest{{ID: "p1", Name: "Acme"}}
	s.Replace(server)

	got := s.Forest()
	require.Len(t, got, 1)
	assert.Empty(t, got[0].Customers)
	assert.False(t, containsID(got, KindCustomer, "c1"))
}

func TestSnapshot_SelectReportsReselection(t *testing.T) {
	s := NewSnapshot()
	assert.False(t, s.Select(KindPartner, "p1"))
	assert.True(t, s.Select(KindPartner, "p1"))
	assert.False(t, s.Select(KindCustomer, "c1"))
}
