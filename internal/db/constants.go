package db

const (
	memoryDSN = ":memory:"

	// timeLayout is the storage format for timestamps, always UTC.
	timeLayout = "2006-01-02 15:04:05.000"

	// maxSamples bounds the session sample log.
	maxSamples = 2000
)
