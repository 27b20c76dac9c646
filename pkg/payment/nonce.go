package payment

import (
	"math/big"
	"sync"
	"time"
)

// NonceSource hands out strictly increasing nonces derived from wall-clock
// microseconds. Two calls within the same microsecond (or a clock step
// backwards) still yield increasing values.
type NonceSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewNonceSource returns a NonceSource reading time.Now.
func NewNonceSource() *NonceSource {
	return &NonceSource{now: time.Now}
}

// Next returns the next nonce.
func (n *NonceSource) Next() *big.Int {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := time.Now
	if n.now != nil {
		now = n.now
	}
	v := now().UnixMicro()
	if v <= n.last {
		v = n.last + 1
	}
	n.last = v
	return big.NewInt(v)
}
