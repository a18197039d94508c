package cache

import "time"

func (c *Memory) SetClock(now func() time.Time) { c.now = now }
