package compress

// Compress encodes cache payloads before they leave the process. The codec
// is picked once from config, encoded payloads are not self-describing.
type Compress interface {
	Encode(data []byte) ([]byte, error)
	Decode(data []byte) ([]byte, error)
}

// FromName returns the codec registered under the given name, falling back
// to the no-op codec for unknown names.
func FromName(name string) Compress {
	switch name {
	case "gzip":
		return NewGZip()
	case "brotli":
		return NewBrotli()
	case "lz4":
		return NewLZ4()
	default:
		return NewNop()
	}
}
