package patterns

import "time"

// DefaultTimeout is the default timeout for gateway requests
const DefaultTimeout = 3 * time.Second
