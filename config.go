package silo

import "go.uber.org/zap"

// Config holds global configuration applied to contexts at construction
// time.
var Config config = config{
	initialComponentCapacity: 16,
	logger:                   zap.NewNop(),
}

type config struct {
	initialComponentCapacity uint32
	logger                   *zap.Logger
}

// SetLogger routes definition and setup diagnostics to l. Hot paths never
// log.
func (c *config) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	c.logger = l
}

// SetInitialComponentCapacity sets the instance capacity every component
// buffer starts with at Setup. n must be a positive power of two.
func (c *config) SetInitialComponentCapacity(n int) error {
	if n <= 0 || n&(n-1) != 0 {
		return CapacityError{Value: n}
	}
	c.initialComponentCapacity = uint32(n)
	return nil
}
