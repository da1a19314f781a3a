// internal/app/system/limits/limits.go
package limits

// Request body size limits for JSON endpoints.
// Bodies over the limit fail to decode and are answered with 400.
const (
	// MaxCredentialsBody covers login, forgot-password and reset-password.
	MaxCredentialsBody = 8 << 10 // 8 KB

	// MaxFormBody covers signup, hotels, reservations and feedback.
	MaxFormBody = 16 << 10 // 16 KB

	// MaxItemBody is larger because item detail carries rich text and image URLs.
	MaxItemBody = 64 << 10 // 64 KB
)
