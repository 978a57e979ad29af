package utils

// Stage runs fn against a draft copy of *target and only writes the draft back
// when fn succeeds. A failed operation leaves *target untouched.
func Stage[T any](target *T, clone func(T) T, fn func(draft *T) error) error {
	draft := clone(*target)
	if err := fn(&draft); err != nil {
		return err
	}
	*target = draft
	return nil
}
