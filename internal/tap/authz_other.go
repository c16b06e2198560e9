//go:build !darwin

package tap

// CheckAccessibility reports whether the process is authorized to observe
// system-wide keyboard input. Only darwin has an authorization prompt; on
// Linux, authorization is group membership checked by Available.
func CheckAccessibility() bool { return false }

// PromptAccessibility prompts the user for authorization where the platform
// supports it.
func PromptAccessibility() bool { return false }
