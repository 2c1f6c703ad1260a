package api

// Cache-Control header values.
const (
	// CacheGenerated keeps a freshly generated page from being reused across reloads.
	CacheGenerated = "max-age=1"
	CacheOneDay    = "public, max-age=86400"
	CacheOneHour   = "public, max-age=3600"
)
