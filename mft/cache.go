package mft

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCacheSize is the number of assembled LogicalEntry values kept by the LRU cache fronting
// (*MFT).Get when Config.CacheSize is left at zero.
const defaultCacheSize = 512

func newEntryCache(size int) (*lru.Cache[uint64, *LogicalEntry], error) {
	if size < 0 {
		return nil, nil
	}
	if size == 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[uint64, *LogicalEntry](size)
	if err != nil {
		return nil, fmt.Errorf("unable to create entry cache: %w", err)
	}
	return cache, nil
}
