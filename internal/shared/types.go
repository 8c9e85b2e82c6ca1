package shared

// Output cache tags
const (
	// CacheTagMovies covers every cached movie read; evicted after any movie or rating write.
	CacheTagMovies = "movies"
)

// gin context keys set by the middleware chain
const (
	ContextKeyRequestID  = "requestID"
	ContextKeyUserID     = "userID"
	ContextKeyRoles      = "roles"
	ContextKeyAPIVersion = "apiVersion"
)
