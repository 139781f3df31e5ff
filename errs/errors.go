// Package errs defines the sentinel errors shared across the gopak packages.
//
// Errors carrying context (a path, a reason) wrap these sentinels with
// fmt.Errorf("%w: ...") so callers can match them with errors.Is.
package errs

import "errors"

var (
	// ErrBadMagic indicates the footer magic bytes did not match.
	ErrBadMagic = errors.New("bad footer magic")

	// ErrUnsupportedVersion indicates a version outside the supported range.
	ErrUnsupportedVersion = errors.New("unsupported archive version")

	// ErrUnsupportedOrEncrypted indicates that no known version produced a
	// valid parse; the archive is either newer than this library or its
	// index is encrypted with a missing or wrong key.
	ErrUnsupportedOrEncrypted = errors.New("unsupported archive or encrypted index")

	// ErrInvalidKey indicates an AES key string that is neither valid hex
	// nor valid base64, or does not decode to 32 bytes.
	ErrInvalidKey = errors.New("invalid AES key")

	// ErrEncryptionRequired indicates an encrypted archive opened without a key.
	ErrEncryptionRequired = errors.New("archive is encrypted and no key was provided")

	// ErrUnsupportedCodec indicates a compression slot whose algorithm is not
	// available in this build.
	ErrUnsupportedCodec = errors.New("unsupported compression codec")

	// ErrCompressionFailed indicates a codec failed to compress a block.
	ErrCompressionFailed = errors.New("compression failed")

	// ErrDecompressionFailed indicates a codec failed to decompress a block.
	ErrDecompressionFailed = errors.New("decompression failed")

	// ErrMissingEntry indicates a lookup for a path not present in the index.
	ErrMissingEntry = errors.New("no entry found")

	// ErrCorruptEntry indicates an entry header that failed validation.
	ErrCorruptEntry = errors.New("corrupt entry")

	// ErrTruncatedEntry indicates an entry whose decoded payload fell short
	// of its declared uncompressed size.
	ErrTruncatedEntry = errors.New("truncated entry")

	// ErrTooManyCodecs indicates more distinct codecs than the footer slot
	// table of the target version can name.
	ErrTooManyCodecs = errors.New("too many distinct compression codecs")

	// ErrIndexHashMismatch indicates the primary index bytes did not match
	// the SHA-1 recorded in the footer.
	ErrIndexHashMismatch = errors.New("index hash mismatch")

	// ErrPrefixMismatch indicates a mounted entry path outside the prefix
	// being stripped by an extractor.
	ErrPrefixMismatch = errors.New("path does not start with prefix")

	// ErrWriteOutsideOutput indicates an entry path that would escape the
	// extraction output directory.
	ErrWriteOutsideOutput = errors.New("entry path escapes output directory")

	// ErrStringTooLong indicates a serialized string length over the 16 KiB
	// wire limit.
	ErrStringTooLong = errors.New("serialized string too long")

	// ErrWriterConsumed indicates use of a writer after WriteIndex.
	ErrWriterConsumed = errors.New("writer already finalized")
)
