package pak

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gopak/gopak/crypt"
	"github.com/gopak/gopak/errs"
	"github.com/gopak/gopak/format"
	"github.com/gopak/gopak/internal/pool"
)

// Reader provides lookup and extraction over a parsed archive.
//
// A Reader holds no reference to the byte source it was parsed from; every
// read operation takes the source explicitly, so independent goroutines can
// extract concurrently as long as each passes its own handle.
type Reader struct {
	pak    *Pak
	key    *crypt.Key
	codecs codecSet
	sec    *secondaryState
}

// newReaderProbe constructs a reader by trying every known version in
// descending footer-size order, collecting the per-version failures.
func newReaderProbe(r io.ReadSeeker, key *crypt.Key, codecs codecSet) (*Reader, error) {
	var log strings.Builder
	for _, v := range format.VersionsDescending {
		p, sec, err := readPak(r, v, key)
		if err == nil {
			return &Reader{pak: p, key: key, codecs: codecs, sec: sec}, nil
		}
		fmt.Fprintf(&log, "\ntrying version %s failed: %v", v, err)
	}

	return nil, fmt.Errorf("%w:%s", errs.ErrUnsupportedOrEncrypted, log.String())
}

func newReaderVersion(r io.ReadSeeker, v format.Version, key *crypt.Key, codecs codecSet) (*Reader, error) {
	p, sec, err := readPak(r, v, key)
	if err != nil {
		return nil, err
	}

	return &Reader{pak: p, key: key, codecs: codecs, sec: sec}, nil
}

// Version returns the archive format version.
func (r *Reader) Version() format.Version {
	return r.pak.version
}

// MountPoint returns the archive's logical path prefix.
func (r *Reader) MountPoint() string {
	return r.pak.mountPoint
}

// EncryptedIndex reports whether the index region was stored encrypted.
func (r *Reader) EncryptedIndex() bool {
	return r.pak.encryptedIndex
}

// EncryptionGUID returns the footer's key GUID; all zero when absent.
func (r *Reader) EncryptionGUID() [16]byte {
	return r.pak.encryptionGUID
}

// PathHashSeed returns the seed of the path-hash index; meaningful from V10.
func (r *Reader) PathHashSeed() uint64 {
	return r.pak.index.PathHashSeed
}

// SecondaryIndexDamaged reports whether either secondary index failed its
// hash check during parsing. Damage there is tolerated; the primary index
// is authoritative.
func (r *Reader) SecondaryIndexDamaged() bool {
	return r.sec.phiDamaged || r.sec.fdiDamaged
}

// Files returns every entry path in sorted order.
func (r *Reader) Files() []string {
	return r.pak.index.paths()
}

// GetEntry returns the metadata for one path.
func (r *Reader) GetEntry(path string) (*Entry, error) {
	e, ok := r.pak.index.entries[path]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrMissingEntry, path)
	}

	return e, nil
}

// Get reads one entry fully into memory.
func (r *Reader) Get(path string, src io.ReadSeeker) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.ReadFile(path, src, &buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// ReadFile streams one entry's payload into sink, holding at most one
// compression block in memory at a time.
func (r *Reader) ReadFile(path string, src io.ReadSeeker, sink io.Writer) error {
	e, ok := r.pak.index.entries[path]
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrMissingEntry, path)
	}

	return r.extract(path, e, src, sink)
}

func (r *Reader) extract(path string, indexEntry *Entry, src io.ReadSeeker, sink io.Writer) error {
	// The data header at the entry offset is authoritative for the block
	// layout; the index forms may carry only a block count.
	if _, err := src.Seek(int64(indexEntry.Offset), io.SeekStart); err != nil {
		return err
	}
	e, err := readEntry(src, r.pak.version, locationData, indexEntry.Offset)
	if err != nil {
		return err
	}
	e.Offset = indexEntry.Offset

	if e.IsEncrypted() && r.key == nil {
		return fmt.Errorf("%w: entry %q", errs.ErrEncryptionRequired, path)
	}

	if !e.IsCompressed() {
		return r.extractStored(path, e, src, sink)
	}

	slot := *e.CompressionSlot
	algo, err := r.pak.slotCompression(slot)
	if err != nil {
		return err
	}
	codec, err := r.codecs.forCompression(algo)
	if err != nil {
		return err
	}

	var written uint64
	for i, b := range e.Blocks {
		length := int(b.End - b.Start)
		readLen := length
		if e.IsEncrypted() {
			readLen = crypt.Align16(length)
		}
		buf, release := pool.GetBlockBuffer(readLen)

		// in-memory ranges are entry-relative regardless of how the
		// version stores them on disk
		abs := e.Offset + b.Start
		if _, err := src.Seek(int64(abs), io.SeekStart); err != nil {
			release()
			return err
		}
		if _, err := io.ReadFull(src, buf); err != nil {
			release()
			return err
		}
		if e.IsEncrypted() {
			if err := r.key.Decrypt(buf); err != nil {
				release()
				return err
			}
		}
		out, err := codec.Decompress(buf[:length])
		if err != nil {
			release()
			return fmt.Errorf("%w: %q block %d: %v", errs.ErrDecompressionFailed, path, i, err)
		}
		release()
		if _, err := sink.Write(out); err != nil {
			return err
		}
		written += uint64(len(out))
	}

	if written != e.Uncompressed {
		return fmt.Errorf("%w: %q decoded %d of %d bytes", errs.ErrTruncatedEntry, path, written, e.Uncompressed)
	}

	return nil
}

func (r *Reader) extractStored(path string, e *Entry, src io.ReadSeeker, sink io.Writer) error {
	if !e.IsEncrypted() {
		if _, err := io.CopyN(sink, src, int64(e.Compressed)); err != nil {
			return fmt.Errorf("%w: %q: %v", errs.ErrTruncatedEntry, path, err)
		}

		return nil
	}

	// Stored-but-encrypted payloads decrypt in aligned windows so peak
	// memory stays bounded for large entries.
	remaining := e.Uncompressed
	for remaining > 0 {
		window := uint64(pool.BlockBufferDefaultSize)
		if remaining < window {
			window = remaining
		}
		readLen := crypt.Align16(int(window))
		buf, release := pool.GetBlockBuffer(readLen)
		if _, err := io.ReadFull(src, buf); err != nil {
			release()
			return err
		}
		if err := r.key.Decrypt(buf); err != nil {
			release()
			return err
		}
		if _, err := sink.Write(buf[:window]); err != nil {
			release()
			return err
		}
		release()
		remaining -= window
	}

	return nil
}
