package usecase

// SetGenerator replaces the code generator so collisions can be forced.
func (i *CodeIssuer) SetGenerator(fn func(length int) (string, error)) {
	i.generate = fn
}
