package mcat

// Resolver is consulted when an incoming short code matches no catalog record.
// It returns the full name of the source the files belong to. If that name is
// already in the catalog the files are attached to it; otherwise a new source
// is created from the reference catalog. An empty name skips the files.
type Resolver interface {
	ResolveUnknownSource(shortCode string) (fullName string, err error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(shortCode string) (string, error)

func (f ResolverFunc) ResolveUnknownSource(shortCode string) (string, error) {
	return f(shortCode)
}

// SkipUnknown is a Resolver that never maps unknown short codes.
var SkipUnknown Resolver = ResolverFunc(func(string) (string, error) { return "", nil })
