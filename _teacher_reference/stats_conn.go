package gortsplib

// StatsConn are connection statistics.
type StatsConn struct {
	// received bytes
	BytesReceived uint64
	// sent bytes
	BytesSent uint64
}
