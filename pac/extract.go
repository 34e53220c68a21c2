package pac

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"log"
	"os"
)

// Payload bytes are copied through a buffer of this size
const ChunkSize = 256

// What happened to a single partition during extraction
type ExtractedPartition struct {
	Name          string
	FileName      string
	Path          string
	Size          uint32
	PayloadOffset uint32
	Skipped       bool
	MD5           string
}

// Copies partition payloads out of a container. One Extractor is used for a
// whole run; its chunk buffer is shared by every partition it extracts, so
// it is not safe for concurrent use.
type Extractor struct {
	// Opens (create/truncate) an output file. Defaults to os.Create
	Create func(path string) (io.WriteCloser, error)
	buffer [ChunkSize]byte
}

func NewExtractor() *Extractor {
	return &Extractor{Create: createFile}
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

// Stream the payload of the given partition into outdir. Placeholder entries
// (size 0) are skipped without touching the filesystem. The payload has to lie
// entirely inside the container or nothing is written at all. A short read
// halfway through leaves the truncated output file behind.
func (ex *Extractor) ExtractPartition(stream ByteStream, d *PartitionDescriptor, outdir string) (result *ExtractedPartition, err error) {
	result = &ExtractedPartition{
		Name:          d.Name,
		FileName:      d.FileName,
		Size:          d.PartitionSize,
		PayloadOffset: d.PayloadOffset,
	}
	if d.IsPlaceholder() {
		result.Skipped = true
		return result, nil
	}
	if end := d.PayloadEnd(); end > stream.Size() {
		return nil, formatErrorf(StageExtract, "partition %s payload [%d, %d) runs past the end of the file (%d bytes)",
			d.Name, d.PayloadOffset, end, stream.Size())
	}
	outpath, err := OutputPath(outdir, d.FileName)
	if err != nil {
		return nil, err
	}
	if err := stream.Seek(int64(d.PayloadOffset)); err != nil {
		return nil, withStage(StageExtract, err)
	}

	create := ex.Create
	if create == nil {
		create = createFile
	}
	out, err := create(outpath)
	if err != nil {
		return nil, &IoError{Stage: StageExtract, Path: outpath, Err: err}
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			result = nil
			err = &IoError{Stage: StageExtract, Path: outpath, Err: cerr}
		}
	}()

	hash := md5.New()
	sp := NewStreamPass(stream, io.MultiWriter(out, hash))
	remaining := d.PartitionSize
	for remaining > 0 && sp.IsPass() == nil {
		chunk := uint32(ChunkSize)
		if remaining < chunk {
			chunk = remaining
		}
		n := sp.ReadPass(ex.buffer[:chunk])
		sp.WritePass(ex.buffer[:n])
		remaining -= chunk
	}
	if perr := sp.IsPass(); perr != nil {
		if _, ok := perr.(*IoError); ok {
			return nil, withStage(StageExtract, perr)
		}
		return nil, &IoError{Stage: StageExtract, Path: outpath, Err: perr}
	}

	result.Path = outpath
	result.MD5 = hex.EncodeToString(hash.Sum(nil))
	log.Printf("Extracted %s to %s (%d bytes)\n", d.Name, outpath, d.PartitionSize)
	return result, nil
}
