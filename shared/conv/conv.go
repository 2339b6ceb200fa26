package conv

func Ptr[T any](v T) *T {
	return &v
}

func FromPtr[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}

// FromPtrOr returns fallback when v is nil.
func FromPtrOr[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}

// PtrEqual reports whether both pointers are nil or point to equal values.
func PtrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
