package globals

// JwtSecret signs admin tokens; main sets it from JWT_SECRET.
var JwtSecret = []byte("change-me")

// Context keys
type ContextKey string

const (
	UsernameKey ContextKey = "username"
	RoleKey     ContextKey = "role"
)

const AdminRole = "admin"
