package cache

import "time"

func (s *MemoryThrottleStore) SetClock(now func() time.Time) { s.now = now }
