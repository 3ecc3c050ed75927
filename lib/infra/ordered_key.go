package infra

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

type Float interface {
	~float32 | ~float64
}

// OrderedKey is the key constraint of the tree engine.
// Only the `<` operator is relied on.
// byte => ~uint8
type OrderedKey interface {
	Integer | Float | ~string
}

// KeyEqual derives the equality from two `<` comparisons.
// NaN keys are never equal to anything, including themselves.
func KeyEqual[K OrderedKey](i, j K) bool {
	return !(i < j) && !(j < i) && i == i && j == j
}
