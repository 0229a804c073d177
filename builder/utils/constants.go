package utils

// MaxBufferSize caps pooled buffers. Larger ones are dropped rather than
// returned to the pool.
const MaxBufferSize = 64 * 1024
