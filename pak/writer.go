package pak

import (
	"io"

	"github.com/gopak/gopak/crypt"
	"github.com/gopak/gopak/errs"
	"github.com/gopak/gopak/format"
	"github.com/gopak/gopak/internal/pathutil"
)

// Writer appends entries to a sink and finalizes the archive with an index
// and footer. It is single-owner: methods must not be called concurrently.
//
// For parallel packing, obtain an EntryBuilder, build PartialEntry values on
// worker goroutines, and commit them here in the order the file should have;
// WriteEntry performs the only sink I/O.
type Writer struct {
	pak       *Pak
	w         io.WriteSeeker
	key       *crypt.Key
	allowed   []format.Compression
	codecs    codecSet
	finalized bool
}

func newWriter(w io.WriteSeeker, key *crypt.Key, v format.Version, mountPoint string, pathHashSeed uint64, allowed []format.Compression, codecs codecSet) *Writer {
	return &Writer{
		pak:     newPak(v, mountPoint, pathHashSeed),
		w:       w,
		key:     key,
		allowed: allowed,
		codecs:  codecs,
	}
}

// Version returns the version the archive is being written at.
func (w *Writer) Version() format.Version {
	return w.pak.version
}

// WriteFile builds and commits one entry synchronously. Compression is
// attempted only when allowCompress is set and the builder configured
// allowed codecs.
func (w *Writer) WriteFile(path string, allowCompress bool, data []byte) error {
	if w.finalized {
		return errs.ErrWriterConsumed
	}
	allowed := w.allowed
	if !allowCompress {
		allowed = nil
	}
	// Validates the mount-rooted form early so a bad mount point fails the
	// first write rather than the index flush.
	if _, err := pathutil.RootPath(w.pak.mountPoint, path); err != nil {
		return err
	}
	pe, err := buildPartialEntry(allowed, w.codecs, w.key, data)
	if err != nil {
		return err
	}

	return w.WriteEntry(path, pe)
}

// EntryBuilder returns a builder for constructing PartialEntry values off
// the writer goroutine. The builder is immutable and safe for concurrent
// use.
func (w *Writer) EntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		allowed:    append([]format.Compression(nil), w.allowed...),
		key:        w.key,
		codecs:     w.codecs,
		mountPoint: w.pak.mountPoint,
	}
}

// WriteEntry commits a pre-built entry at the sink's current position.
// Commit order is on-disk order.
func (w *Writer) WriteEntry(path string, pe *PartialEntry) error {
	if w.finalized {
		return errs.ErrWriterConsumed
	}
	pos, err := w.w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	entry, err := pe.buildEntry(w.pak, uint64(pos))
	if err != nil {
		return err
	}
	if err := entry.write(w.w, w.pak.version, locationData); err != nil {
		return err
	}
	if err := pe.writeData(w.w); err != nil {
		return err
	}
	w.pak.index.add(path, entry)

	return nil
}

// WriteIndex serializes the index region and footer, consuming the writer.
// It returns the underlying sink for the caller to close or reuse.
func (w *Writer) WriteIndex() (io.WriteSeeker, error) {
	if w.finalized {
		return nil, errs.ErrWriterConsumed
	}
	if err := w.pak.write(w.w, w.key); err != nil {
		return nil, err
	}
	w.finalized = true

	return w.w, nil
}

// EntryBuilder builds PartialEntry values in memory with no I/O. Values are
// cheap to share across goroutines.
type EntryBuilder struct {
	allowed    []format.Compression
	key        *crypt.Key
	codecs     codecSet
	mountPoint string
}

// BuildEntry compresses (when compress is set), hashes and encrypts data for
// a later WriteEntry commit under path.
func (b *EntryBuilder) BuildEntry(compress bool, data []byte, path string) (*PartialEntry, error) {
	if _, err := pathutil.RootPath(b.mountPoint, path); err != nil {
		return nil, err
	}
	allowed := b.allowed
	if !compress {
		allowed = nil
	}

	return buildPartialEntry(allowed, b.codecs, b.key, data)
}
