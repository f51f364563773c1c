package mft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDataAttributeResident(t *testing.T) {
	var streams []*Datastream
	attr := Attribute{Type: AttributeTypeData, Resident: true, Name: "", Data: []byte{1, 2, 3, 4}}
	require.NoError(t, addDataAttribute(&streams, attr))
	require.Len(t, streams, 1)
	assert.True(t, streams[0].Resident)
	assert.Equal(t, uint64(4), streams[0].Size)
}

func TestAddDataAttributeNonResidentMultipleRuns(t *testing.T) {
	var streams []*Datastream
	attr1 := Attribute{Type: AttributeTypeData, Resident: false, StartVCN: 0, EndVCN: 9,
		ActualSize: 40960, AllocatedSize: 40960,
		DataRuns: []DataRun{{OffsetCluster: 100, LengthInClusters: 10}}}
	attr2 := Attribute{Type: AttributeTypeData, Resident: false, StartVCN: 10, EndVCN: 19,
		DataRuns: []DataRun{{OffsetCluster: 500, LengthInClusters: 10}}}

	require.NoError(t, addDataAttribute(&streams, attr1))
	require.NoError(t, addDataAttribute(&streams, attr2))
	require.Len(t, streams, 1)
	ds := streams[0]
	assert.Equal(t, uint64(40960), ds.Size)
	assert.Equal(t, uint64(20), ds.ClusterCount)
	groups := ds.RunGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, uint64(0), groups[0].StartVCN)
	assert.Equal(t, uint64(10), groups[1].StartVCN)
}

func TestAddDataAttributeNamedStreamsAreSeparate(t *testing.T) {
	var streams []*Datastream
	require.NoError(t, addDataAttribute(&streams, Attribute{Type: AttributeTypeData, Resident: true, Name: "", Data: []byte{1}}))
	require.NoError(t, addDataAttribute(&streams, Attribute{Type: AttributeTypeData, Resident: true, Name: "Zone.Identifier", Data: []byte{1, 2}}))
	require.Len(t, streams, 2)
}

func TestAddDataAttributeRejectsMixedResidency(t *testing.T) {
	var streams []*Datastream
	require.NoError(t, addDataAttribute(&streams, Attribute{Type: AttributeTypeData, Resident: true, Data: []byte{1}}))
	err := addDataAttribute(&streams, Attribute{Type: AttributeTypeData, Resident: false, DataRuns: []DataRun{{LengthInClusters: 1}}})
	require.Error(t, err)
}

func TestAddDataAttributeRejectsNonDataType(t *testing.T) {
	var streams []*Datastream
	err := addDataAttribute(&streams, Attribute{Type: AttributeTypeFileName})
	require.Error(t, err)
}

func TestMergeDatastreamCombinesRunsAcrossExtensions(t *testing.T) {
	var baseStreams, extStreams []*Datastream
	require.NoError(t, addDataAttribute(&baseStreams, Attribute{
		Type: AttributeTypeData, Resident: false, StartVCN: 0, EndVCN: 9,
		ActualSize: 40960, AllocatedSize: 40960,
		DataRuns: []DataRun{{OffsetCluster: 100, LengthInClusters: 10}},
	}))
	require.NoError(t, addDataAttribute(&extStreams, Attribute{
		Type: AttributeTypeData, Resident: false, StartVCN: 10, EndVCN: 19,
		DataRuns: []DataRun{{OffsetCluster: 500, LengthInClusters: 10}},
	}))

	base := findOrCreateStream(&baseStreams, "")
	require.NoError(t, mergeDatastream(base, extStreams[0]))

	groups := base.RunGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, uint64(0), groups[0].StartVCN)
	assert.Equal(t, uint64(10), groups[1].StartVCN)
	assert.Equal(t, uint64(20), base.ClusterCount)
}

func TestMergeDatastreamRejectsResidentBase(t *testing.T) {
	var baseStreams []*Datastream
	require.NoError(t, addDataAttribute(&baseStreams, Attribute{Type: AttributeTypeData, Resident: true, Data: []byte{1}}))
	err := mergeDatastream(baseStreams[0], &Datastream{})
	require.Error(t, err)
}

func TestFragmentsConvertsSparseRuns(t *testing.T) {
	var streams []*Datastream
	require.NoError(t, addDataAttribute(&streams, Attribute{
		Type: AttributeTypeData, Resident: false, StartVCN: 0, EndVCN: 1,
		DataRuns: []DataRun{{Sparse: true, LengthInClusters: 2}},
	}))
	frags := streams[0].Fragments(4096)
	require.Len(t, frags, 1)
	assert.Equal(t, int64(-1), frags[0].Offset)
	assert.Equal(t, int64(8192), frags[0].Length)
}
