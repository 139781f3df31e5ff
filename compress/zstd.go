package compress

// ZstdCodec compresses blocks as single Zstandard frames.
//
// Encoding uses level 3, the library default, which is where the ratio/speed
// trade-off sits for typical game asset payloads. Two implementations exist
// behind build tags: the pure-Go klauspost encoder (default) and a cgo
// binding kept for parity measurements.
type ZstdCodec struct{}

var _ Codec = (*ZstdCodec)(nil)
