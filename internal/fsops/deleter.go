package fsops

// Deleter abstracts the single mutating filesystem call of a sweep
// Enables fakes in tests to prove which paths were targeted
type Deleter interface {
	Remove(path string) error
}
