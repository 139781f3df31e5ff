// Package pak implements reading and writing of the versioned PAK archive
// container: footer probing, the legacy flat index and the modern
// path-hash/full-directory index pair, optional AES-256 index and payload
// encryption, and per-entry block compression.
package pak

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/gopak/gopak/crypt"
	"github.com/gopak/gopak/errs"
	"github.com/gopak/gopak/format"
	"github.com/gopak/gopak/internal/hash"
	"github.com/gopak/gopak/internal/pathutil"
	"github.com/gopak/gopak/internal/wire"
)

// Index is the in-memory entry table of an archive.
type Index struct {
	// PathHashSeed seeds the FNV-1a path hashes; meaningful from V10 on.
	PathHashSeed uint64

	entries map[string]*Entry
}

func newIndex() *Index {
	return &Index{entries: make(map[string]*Entry)}
}

func (idx *Index) add(path string, e *Entry) {
	idx.entries[path] = e
}

// paths returns every entry path in sorted order, the canonical iteration
// order of the index.
func (idx *Index) paths() []string {
	out := make([]string, 0, len(idx.entries))
	for p := range idx.entries {
		out = append(out, p)
	}
	sort.Strings(out)

	return out
}

// Pak is the parsed state of one archive, shared by Reader and Writer.
type Pak struct {
	version        format.Version
	mountPoint     string
	indexOffset    uint64
	index          *Index
	encryptedIndex bool
	encryptionGUID [16]byte
	compression    []format.Compression
}

func newPak(version format.Version, mountPoint string, pathHashSeed uint64) *Pak {
	p := &Pak{
		version:    version,
		mountPoint: mountPoint,
		index:      newIndex(),
	}
	p.index.PathHashSeed = pathHashSeed
	if version < format.V8A {
		// fixed slot meanings before the footer carried names
		p.compression = []format.Compression{
			format.CompressionZlib,
			format.CompressionGzip,
			format.CompressionOodle,
		}
	}

	return p
}

// resolveSlot returns the slot index for c, extending the table when the
// version's footer has room for another name.
func (p *Pak) resolveSlot(c format.Compression) (uint32, error) {
	for i, existing := range p.compression {
		if existing == c {
			return uint32(i), nil
		}
	}
	if p.version < format.V8A {
		return 0, fmt.Errorf("%w: %s has no fixed slot below V8A", errs.ErrTooManyCodecs, c)
	}
	// a reopened archive may have empty slots in the middle of its table
	for i, existing := range p.compression {
		if existing == 0 {
			p.compression[i] = c
			return uint32(i), nil
		}
	}
	if len(p.compression) >= p.version.CompressionSlotCount() {
		return 0, fmt.Errorf("%w: %s exceeds the %d-slot table of %s",
			errs.ErrTooManyCodecs, c, p.version.CompressionSlotCount(), p.version)
	}
	p.compression = append(p.compression, c)

	return uint32(len(p.compression) - 1), nil
}

// slotCompression maps an entry's slot index to its algorithm.
func (p *Pak) slotCompression(slot uint32) (format.Compression, error) {
	if int(slot) >= len(p.compression) || p.compression[slot] == 0 {
		return 0, fmt.Errorf("%w: slot %d is empty or unknown", errs.ErrUnsupportedCodec, slot)
	}

	return p.compression[slot], nil
}

// readPak parses a whole archive at an assumed version: footer, primary
// index, and (from V10 on) the secondary indices.
func readPak(r io.ReadSeeker, v format.Version, key *crypt.Key) (*Pak, *secondaryState, error) {
	fileSize, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, nil, err
	}
	if fileSize < v.FooterSize() {
		return nil, nil, fmt.Errorf("%w: file smaller than %s footer", errs.ErrBadMagic, v)
	}
	if _, err := r.Seek(fileSize-v.FooterSize(), io.SeekStart); err != nil {
		return nil, nil, err
	}
	footer, err := readFooter(r, v)
	if err != nil {
		return nil, nil, err
	}
	if footer.IndexOffset+footer.IndexSize > uint64(fileSize) {
		return nil, nil, fmt.Errorf("%w: index region [%d, %d) outside file of %d bytes",
			errs.ErrUnsupportedVersion, footer.IndexOffset, footer.IndexOffset+footer.IndexSize, fileSize)
	}

	if _, err := r.Seek(int64(footer.IndexOffset), io.SeekStart); err != nil {
		return nil, nil, err
	}
	indexBuf, err := wire.ReadBytes(r, int(footer.IndexSize))
	if err != nil {
		return nil, nil, err
	}
	if footer.EncryptedIndex {
		if key == nil {
			return nil, nil, errs.ErrEncryptionRequired
		}
		if err := key.Decrypt(indexBuf); err != nil {
			return nil, nil, err
		}
	}
	if crypt.Sha1(indexBuf) != footer.Hash {
		return nil, nil, errs.ErrIndexHashMismatch
	}

	p := &Pak{
		version:        v,
		mountPoint:     "",
		indexOffset:    footer.IndexOffset,
		index:          newIndex(),
		encryptedIndex: footer.EncryptedIndex,
		encryptionGUID: footer.EncryptionGUID,
		compression:    footer.Compression,
	}

	br := bytes.NewReader(indexBuf)
	if p.mountPoint, err = wire.ReadString(br); err != nil {
		return nil, nil, err
	}
	count, err := wire.ReadU32(br)
	if err != nil {
		return nil, nil, err
	}

	if !v.HasPathHashIndex() {
		for i := uint32(0); i < count; i++ {
			path, err := wire.ReadString(br)
			if err != nil {
				return nil, nil, err
			}
			e, err := readEntry(br, v, locationIndex, 0)
			if err != nil {
				return nil, nil, err
			}
			p.index.add(path, e)
		}

		return p, &secondaryState{}, nil
	}

	sec, err := p.readModernIndex(br, r, footer, key)
	if err != nil {
		return nil, nil, err
	}

	return p, sec, nil
}

// secondaryState records non-fatal observations about the secondary indices.
type secondaryState struct {
	phiDamaged bool
	fdiDamaged bool
}

// readModernIndex parses the V10+ index header from br (the decrypted
// primary index) and pulls the secondary index blobs from r.
func (p *Pak) readModernIndex(br *bytes.Reader, r io.ReadSeeker, footer *Footer, key *crypt.Key) (*secondaryState, error) {
	sec := &secondaryState{}

	seed, err := wire.ReadU64(br)
	if err != nil {
		return nil, err
	}
	p.index.PathHashSeed = seed

	readSecondary := func() ([]byte, bool, error) {
		has, err := wire.ReadU32(br)
		if err != nil {
			return nil, false, err
		}
		if has == 0 {
			return nil, false, nil
		}
		offset, err := wire.ReadU64(br)
		if err != nil {
			return nil, false, err
		}
		size, err := wire.ReadU64(br)
		if err != nil {
			return nil, false, err
		}
		want, err := wire.ReadBytes(br, format.HashSize)
		if err != nil {
			return nil, false, err
		}
		if _, err := r.Seek(int64(offset), io.SeekStart); err != nil {
			return nil, false, err
		}
		buf, err := wire.ReadBytes(r, int(size))
		if err != nil {
			return nil, false, err
		}
		if footer.EncryptedIndex {
			if key == nil {
				return nil, false, errs.ErrEncryptionRequired
			}
			if err := key.Decrypt(buf); err != nil {
				return nil, false, err
			}
		}
		// Secondary hash mismatches are recorded, not fatal.
		got := crypt.Sha1(buf)
		damaged := !bytes.Equal(got[:], want)

		return buf, damaged, nil
	}

	phiBuf, phiDamaged, err := readSecondary()
	if err != nil {
		return nil, err
	}
	sec.phiDamaged = phiDamaged

	fdiBuf, fdiDamaged, err := readSecondary()
	if err != nil {
		return nil, err
	}
	sec.fdiDamaged = fdiDamaged

	encodedSize, err := wire.ReadU32(br)
	if err != nil {
		return nil, err
	}
	encoded, err := wire.ReadBytes(br, int(encodedSize))
	if err != nil {
		return nil, err
	}

	trailing, err := wire.ReadU32(br)
	if err != nil {
		return nil, err
	}
	if trailing != 0 {
		return nil, fmt.Errorf("unexpected %d trailing unencoded index records", trailing)
	}

	// The full-directory index names the entries; without it the archive
	// opens but exposes no paths.
	if fdiBuf != nil {
		if err := p.parseFullDirectoryIndex(fdiBuf, encoded); err != nil {
			return nil, err
		}
	}
	_ = phiBuf // hashes are regenerated from paths when rewriting

	return sec, nil
}

func (p *Pak) parseFullDirectoryIndex(fdiBuf, encoded []byte) error {
	fdi := bytes.NewReader(fdiBuf)
	dirCount, err := wire.ReadU32(fdi)
	if err != nil {
		return err
	}
	for d := uint32(0); d < dirCount; d++ {
		dirName, err := wire.ReadString(fdi)
		if err != nil {
			return err
		}
		fileCount, err := wire.ReadU32(fdi)
		if err != nil {
			return err
		}
		for f := uint32(0); f < fileCount; f++ {
			fileName, err := wire.ReadString(fdi)
			if err != nil {
				return err
			}
			encodedOffset, err := wire.ReadU32(fdi)
			if err != nil {
				return err
			}
			if encodedOffset == invalidEncodedOffset {
				// intentionally invalidated slot
				continue
			}
			if fileName == "" {
				// ancestor directory placeholder
				continue
			}
			if int(encodedOffset) >= len(encoded) {
				return fmt.Errorf("%w: encoded offset %d outside %d-byte table",
					errs.ErrCorruptEntry, encodedOffset, len(encoded))
			}
			er := bytes.NewReader(encoded[encodedOffset:])
			e, err := readEncodedEntry(er, p.version)
			if err != nil {
				return err
			}
			path := dirName
			if len(path) > 0 && path[0] == '/' {
				path = path[1:]
			}
			p.index.add(path+fileName, e)
		}
	}

	return nil
}

// write serializes the index region and footer at the writer's current
// position, which becomes the archive's index offset.
func (p *Pak) write(w io.WriteSeeker, key *crypt.Key) error {
	pos, err := w.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	indexOffset := uint64(pos)
	p.indexOffset = indexOffset

	var indexBuf bytes.Buffer
	if err := wire.WriteString(&indexBuf, p.mountPoint); err != nil {
		return err
	}
	paths := p.index.paths()
	if err := wire.WriteU32(&indexBuf, uint32(len(paths))); err != nil {
		return err
	}

	var phiBuf, fdiBuf []byte
	if !p.version.HasPathHashIndex() {
		for _, path := range paths {
			if err := wire.WriteString(&indexBuf, path); err != nil {
				return err
			}
			if err := p.index.entries[path].write(&indexBuf, p.version, locationIndex); err != nil {
				return err
			}
		}
	} else {
		if phiBuf, fdiBuf, err = p.writeModernIndex(&indexBuf, indexOffset, paths, key); err != nil {
			return err
		}
	}

	footer := &Footer{
		Version:     p.version,
		Magic:       format.Magic,
		IndexOffset: indexOffset,
		Compression: p.compression,
	}

	primary := indexBuf.Bytes()
	if key != nil {
		primary = crypt.PadAlign16(primary)
		footer.Hash = crypt.Sha1(primary)
		if err := key.Encrypt(primary); err != nil {
			return err
		}
		footer.EncryptedIndex = true
	} else {
		footer.Hash = crypt.Sha1(primary)
	}
	footer.IndexSize = uint64(len(primary))

	if _, err := w.Write(primary); err != nil {
		return err
	}
	if phiBuf != nil {
		if _, err := w.Write(phiBuf); err != nil {
			return err
		}
	}
	if fdiBuf != nil {
		if _, err := w.Write(fdiBuf); err != nil {
			return err
		}
	}

	return footer.write(w)
}

// writeModernIndex appends the V10+ header fields and encoded entry table to
// indexBuf and returns the finished (padded, hashed, encrypted) secondary
// blobs to be written after the primary index.
func (p *Pak) writeModernIndex(indexBuf *bytes.Buffer, indexOffset uint64, paths []string, key *crypt.Key) (phiOut, fdiOut []byte, err error) {
	seed := p.index.PathHashSeed
	if err := wire.WriteU64(indexBuf, seed); err != nil {
		return nil, nil, err
	}

	// Encoded entries in path order, remembering each record's offset.
	var encoded bytes.Buffer
	offsets := make(map[string]uint32, len(paths))
	for _, path := range paths {
		offsets[path] = uint32(encoded.Len())
		if err := p.index.entries[path].writeEncoded(&encoded); err != nil {
			return nil, nil, err
		}
	}

	// Primary index size ahead of the PHI blob, with the trailing record
	// count and, when encrypting, alignment padding accounted for.
	bytesBeforePhi := uint64(wire.StringSerializedSize(p.mountPoint)) +
		4 + // record count
		8 + // path hash seed
		4 + 8 + 8 + format.HashSize + // PHI presence + location + hash
		4 + 8 + 8 + format.HashSize + // FDI presence + location + hash
		4 + uint64(encoded.Len()) + // encoded record table
		4 // trailing unencoded record count
	if key != nil {
		bytesBeforePhi = uint64(crypt.Align16(int(bytesBeforePhi)))
	}
	phiOffset := indexOffset + bytesBeforePhi

	phiBuf, err := p.generatePathHashIndex(paths, offsets, seed)
	if err != nil {
		return nil, nil, err
	}
	phiBuf, phiHash, err := sealSecondary(phiBuf, key)
	if err != nil {
		return nil, nil, err
	}

	fdiOffset := phiOffset + uint64(len(phiBuf))

	fdiBuf, err := generateFullDirectoryIndex(paths, offsets)
	if err != nil {
		return nil, nil, err
	}
	fdiBuf, fdiHash, err := sealSecondary(fdiBuf, key)
	if err != nil {
		return nil, nil, err
	}

	if err := wire.WriteU32(indexBuf, 1); err != nil {
		return nil, nil, err
	}
	if err := wire.WriteU64(indexBuf, phiOffset); err != nil {
		return nil, nil, err
	}
	if err := wire.WriteU64(indexBuf, uint64(len(phiBuf))); err != nil {
		return nil, nil, err
	}
	if _, err := indexBuf.Write(phiHash[:]); err != nil {
		return nil, nil, err
	}

	if err := wire.WriteU32(indexBuf, 1); err != nil {
		return nil, nil, err
	}
	if err := wire.WriteU64(indexBuf, fdiOffset); err != nil {
		return nil, nil, err
	}
	if err := wire.WriteU64(indexBuf, uint64(len(fdiBuf))); err != nil {
		return nil, nil, err
	}
	if _, err := indexBuf.Write(fdiHash[:]); err != nil {
		return nil, nil, err
	}

	if err := wire.WriteU32(indexBuf, uint32(encoded.Len())); err != nil {
		return nil, nil, err
	}
	if _, err := indexBuf.Write(encoded.Bytes()); err != nil {
		return nil, nil, err
	}
	if err := wire.WriteU32(indexBuf, 0); err != nil {
		return nil, nil, err
	}

	return phiBuf, fdiBuf, nil
}

// generatePathHashIndex serializes the path-hash records. Hashes cover the
// mount-rooted form of each path.
func (p *Pak) generatePathHashIndex(paths []string, offsets map[string]uint32, seed uint64) ([]byte, error) {
	var buf bytes.Buffer
	if err := wire.WriteU32(&buf, uint32(len(paths))); err != nil {
		return nil, err
	}
	for _, path := range paths {
		rooted, err := pathutil.RootPath(p.mountPoint, path)
		if err != nil {
			return nil, err
		}
		if err := wire.WriteU64(&buf, hash.Fnv64Path(rooted, seed)); err != nil {
			return nil, err
		}
		if err := wire.WriteU32(&buf, offsets[path]); err != nil {
			return nil, err
		}
	}
	if err := wire.WriteU32(&buf, 0); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// generateFullDirectoryIndex serializes the nested directory map, inserting
// an empty record for every ancestor directory.
func generateFullDirectoryIndex(paths []string, offsets map[string]uint32) ([]byte, error) {
	dirs := make(map[string]map[string]uint32)
	for _, path := range paths {
		for _, ancestor := range pathutil.Ancestors(path) {
			if dirs[ancestor] == nil {
				dirs[ancestor] = make(map[string]uint32)
			}
		}
		dir, file, ok := pathutil.SplitChild(path)
		if !ok {
			continue
		}
		dirs[dir][file] = offsets[path]
	}

	dirNames := make([]string, 0, len(dirs))
	for d := range dirs {
		dirNames = append(dirNames, d)
	}
	sort.Strings(dirNames)

	var buf bytes.Buffer
	if err := wire.WriteU32(&buf, uint32(len(dirNames))); err != nil {
		return nil, err
	}
	for _, d := range dirNames {
		if err := wire.WriteString(&buf, d); err != nil {
			return nil, err
		}
		files := dirs[d]
		fileNames := make([]string, 0, len(files))
		for f := range files {
			fileNames = append(fileNames, f)
		}
		sort.Strings(fileNames)
		if err := wire.WriteU32(&buf, uint32(len(fileNames))); err != nil {
			return nil, err
		}
		for _, f := range fileNames {
			if err := wire.WriteString(&buf, f); err != nil {
				return nil, err
			}
			if err := wire.WriteU32(&buf, files[f]); err != nil {
				return nil, err
			}
		}
	}

	return buf.Bytes(), nil
}

// sealSecondary pads, hashes and encrypts one secondary index blob. The hash
// covers the padded plaintext.
func sealSecondary(buf []byte, key *crypt.Key) ([]byte, [format.HashSize]byte, error) {
	if key != nil {
		buf = crypt.PadAlign16(buf)
	}
	digest := crypt.Sha1(buf)
	if key != nil {
		if err := key.Encrypt(buf); err != nil {
			return nil, digest, err
		}
	}

	return buf, digest, nil
}
