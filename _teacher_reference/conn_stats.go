package gortsplib

// ConnStats are connection statistics.
type ConnStats struct {
	// received bytes
	BytesReceived uint64
	// sent bytes
	BytesSent uint64
}
