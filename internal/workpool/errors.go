package workpool

import "errors"

// ErrPoolClosed is returned by Submit once Close has been called.
var ErrPoolClosed = errors.New("workpool: pool is closed")
