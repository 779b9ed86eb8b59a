package providers

import "errors"

// ErrCacheMiss is returned by CacheProvider.Get for an absent key
var ErrCacheMiss = errors.New("cache miss")
