//go:build windows

package installstore

// New returns the platform binding for the extensions directory: registry
// records on windows, since Windows builds of Chromium only pick up external
// extensions advertised under HKCU.
func New(dir string) (Store, error) {
	return NewRegistryStore(dir), nil
}
