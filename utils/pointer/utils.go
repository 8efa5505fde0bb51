package pointer

func NotNull[T any](source *T, defaultValue T) T {
	if source != nil {
		return *source
	}
	return defaultValue
}

func Create[T any](source T) *T {
	return &source
}

// Equal : 둘 다 nil 이거나, 둘 다 값이 있고 값이 같은 경우
func Equal[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
