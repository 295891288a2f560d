package ports

//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks

// Hasher computes content digests used to skip rewriting unchanged outputs.
type Hasher interface {
	// HashBytes returns the digest of b.
	HashBytes(b []byte) uint64
	// HashFile returns the digest of the file at path.
	HashFile(path string) (uint64, error)
}
