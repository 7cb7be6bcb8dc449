package mcat

// CatalogEntry is one row of the static reference catalog of maser sources.
type CatalogEntry struct {
	FullName         string
	RADigits         string
	DecDigits        string
	SystemicVelocity float64
}

// ReferenceCatalog gives access to the fixed astrometric parameters of known sources.
type ReferenceCatalog interface {
	// Lookup returns the entry for fullName, or nil if the catalog has none.
	Lookup(fullName string) (*CatalogEntry, error)

	// Entries returns every entry in file order.
	Entries() ([]*CatalogEntry, error)
}
