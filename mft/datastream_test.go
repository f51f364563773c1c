package mft_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/dfirtools/gomft/mft"
)

func TestDatastreamFragmentsEmpty(t *testing.T) {
	ds := &mft.Datastream{}
	assert.Empty(t, ds.Fragments(4096))
	assert.Empty(t, ds.RunGroups())
}
