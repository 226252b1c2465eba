package reactive

// Computed derives a read-only cell from src. The derived value is
// recomputed every time src changes; equal suppresses notifications of
// unchanged derived values and may be nil.
//
// The derived cell stays subscribed to src for the lifetime of src.
func Computed[S, T any](src Readable[S], fn func(S) T, equal func(a, b T) bool) Readable[T] {
	var opts []CellOption[T]
	if equal != nil {
		opts = append(opts, WithEqual(equal))
	}
	out := NewCell(fn(src.Get()), opts...)
	src.Subscribe(func(v S) { out.Set(fn(v)) })
	return out.ReadOnly(nil)
}
