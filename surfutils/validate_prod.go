//go:build !debug_surf_utils

package surfutils

// DebugValidate will call Validate on the provided object and panics if any errors are returned. This
// method no-ops unless the debug_surf_utils build tag is present
func DebugValidate(validatable Validatable) {
}
