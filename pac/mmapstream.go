package pac

import (
	"fmt"
	"io"

	"golang.org/x/exp/mmap"
)

// A ByteStream over a read-only memory map of the container. Big firmware
// files don't need to go through the page cache twice this way.
type MappedStream struct {
	path   string
	reader *mmap.ReaderAt
	pos    int64
}

func OpenMappedStream(path string) (*MappedStream, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, &IoError{Stage: StageOpen, Path: path, Err: fmt.Errorf("mmap: %w", err)}
	}
	return &MappedStream{path: path, reader: r}, nil
}

func (ms *MappedStream) Size() int64 {
	return int64(ms.reader.Len())
}

func (ms *MappedStream) Seek(offset int64) error {
	if offset < 0 {
		return &IoError{Stage: StageOpen, Path: ms.path, Err: fmt.Errorf("negative seek offset %d", offset)}
	}
	ms.pos = offset
	return nil
}

func (ms *MappedStream) ReadExact(buf []byte) error {
	n, err := ms.reader.ReadAt(buf, ms.pos)
	ms.pos += int64(n)
	if n < len(buf) {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return &IoError{
			Stage: StageOpen,
			Path:  ms.path,
			Err:   fmt.Errorf("short read (%d of %d bytes): %w", n, len(buf), err),
		}
	}
	return nil
}

func (ms *MappedStream) Close() error {
	return ms.reader.Close()
}

// Open the container either as a plain file or as a memory map
func OpenStream(path string, mapped bool) (ByteStream, error) {
	if mapped {
		ms, err := OpenMappedStream(path)
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	fs, err := OpenFileStream(path)
	if err != nil {
		return nil, err
	}
	return fs, nil
}
