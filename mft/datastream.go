package mft

import (
	"sort"

	"github.com/dfirtools/gomft/fragment"
)

// RunGroup is the contribution one $DATA attribute (one VCN range) makes to a Datastream's
// overall run list.
type RunGroup struct {
	StartVCN uint64
	Runs     []DataRun
}

// Datastream is the normalized form of everything that contributes to one named (or unnamed)
// $DATA stream across a base entry and all of its extensions: a single logical byte stream, ether
// held resident or described as an ordered list of data runs.
type Datastream struct {
	Name          string
	Resident      bool
	Size          uint64
	AllocatedSize uint64
	ClusterCount  uint64
	Content       []byte

	runGroups []RunGroup
	sorted    bool
}

// addDataAttribute folds a single $DATA attribute into the stream named attr.Name within
// streams, creating that stream if it doesn't exist yet. A resident attribute supplies the
// stream's Content directly; a non-resident attribute contributes one RunGroup. Mixing resident
// and non-resident $DATA attributes for the same name is rejected - legitimate NTFS entries never
// do this.
func addDataAttribute(streams *[]*Datastream, attr Attribute) error {
	if attr.Type != AttributeTypeData {
		return &DataStreamError{Msg: "cannot add a non-DATA attribute to a datastream"}
	}

	ds := findOrCreateStream(streams, attr.Name)

	if attr.Resident {
		if len(ds.runGroups) > 0 {
			return &DataStreamError{Msg: "cannot add resident $DATA to a stream that already has non-resident fragments"}
		}
		ds.Resident = true
		ds.Content = attr.Data
		ds.Size = uint64(len(attr.Data))
		ds.AllocatedSize = ds.Size
		return nil
	}

	if ds.Resident {
		return &DataStreamError{Msg: "cannot add non-resident $DATA to a resident stream"}
	}

	ds.runGroups = append(ds.runGroups, RunGroup{StartVCN: attr.StartVCN, Runs: attr.DataRuns})
	ds.sorted = false

	if attr.StartVCN == 0 {
		ds.Size = attr.ActualSize
		ds.AllocatedSize = attr.AllocatedSize
	}
	if attr.EndVCN+1 > ds.ClusterCount {
		ds.ClusterCount = attr.EndVCN + 1
	}
	return nil
}

func findOrCreateStream(streams *[]*Datastream, name string) *Datastream {
	for _, s := range *streams {
		if s.Name == name {
			return s
		}
	}
	ds := &Datastream{Name: name}
	*streams = append(*streams, ds)
	return ds
}

// mergeDatastream folds src (built from an extension entry's attributes) into base (built so far
// from the base entry and earlier extensions). Merging into a resident stream is rejected: a
// resident $DATA attribute is never split across entries.
func mergeDatastream(base *Datastream, src *Datastream) error {
	if base.Resident {
		return &DataStreamError{Msg: "cannot merge a datastream into a resident datastream"}
	}
	if src.ClusterCount > base.ClusterCount {
		base.ClusterCount = src.ClusterCount
	}
	if base.Size == 0 && src.Size != 0 {
		base.Size = src.Size
		base.AllocatedSize = src.AllocatedSize
	}
	base.runGroups = append(base.runGroups, src.runGroups...)
	base.sorted = false
	return nil
}

// RunGroups returns d's run groups sorted by ascending StartVCN (stable on ties), computed lazily
// and memoized.
func (d *Datastream) RunGroups() []RunGroup {
	if !d.sorted {
		sort.SliceStable(d.runGroups, func(i, j int) bool { return d.runGroups[i].StartVCN < d.runGroups[j].StartVCN })
		d.sorted = true
	}
	return d.runGroups
}

// Fragments flattens d's sorted run groups into absolute byte-offset fragments suitable for
// fragment.NewReader, using bytesPerCluster to translate cluster counts to byte counts. Sparse
// runs are represented with Offset -1; callers must special-case them (e.g. synthesize zero
// bytes) rather than seek to that offset.
func (d *Datastream) Fragments(bytesPerCluster int) []fragment.Fragment {
	var frags []fragment.Fragment
	for _, g := range d.RunGroups() {
		frags = append(frags, dataRunsToFragments(g.Runs, bytesPerCluster)...)
	}
	return frags
}

// dataRunsToFragments converts one run group's cluster-addressed DataRuns (absolute cluster
// offsets, cluster counts) into absolute-offset, byte-counted fragment.Fragments.
func dataRunsToFragments(runs []DataRun, bytesPerCluster int) []fragment.Fragment {
	frags := make([]fragment.Fragment, len(runs))
	for i, run := range runs {
		length := int64(run.LengthInClusters) * int64(bytesPerCluster)
		if run.Sparse {
			frags[i] = fragment.Fragment{Offset: -1, Length: length}
			continue
		}
		frags[i] = fragment.Fragment{Offset: run.OffsetCluster * int64(bytesPerCluster), Length: length}
	}
	return frags
}
