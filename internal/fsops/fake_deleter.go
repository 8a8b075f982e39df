package fsops

// FakeDeleter implements Deleter for testing
// Records all delete calls; paths listed in Errs fail with the mapped error
type FakeDeleter struct {
	Calls []string
	Errs  map[string]error
}

func (f *FakeDeleter) Remove(path string) error {
	f.Calls = append(f.Calls, "rm:"+path)
	if err, ok := f.Errs[path]; ok {
		return err
	}
	return nil
}
