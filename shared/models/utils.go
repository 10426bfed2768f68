package models

// Int64Ptr returns a pointer to the given int64.
// Handy for optional ids such as Character.PoseID.
func Int64Ptr(i int64) *int64 {
	return &i
}

// StringPtr returns a pointer to the given string.
func StringPtr(s string) *string {
	return &s
}
