//go:build !windows

package installstore

// New returns the platform binding for the extensions directory: JSON
// preference files on linux and darwin.
func New(dir string) (Store, error) {
	return NewFileStore(dir), nil
}
