package pac

import (
	"fmt"
	"io"
	"os"
)

// Sequential random-access view of a container. Everything the core reads
// goes through this, so it doesn't care whether the bytes come from a plain
// file handle or a memory map.
type ByteStream interface {
	// Total length of the stream in bytes
	Size() int64
	// Move to an absolute offset. Clears any end-of-file condition
	Seek(offset int64) error
	// Fill buf completely or fail with *IoError
	ReadExact(buf []byte) error
	Close() error
}

// A ByteStream backed by an open file
type FileStream struct {
	File *os.File
	size int64
}

// Open the given path for reading as a FileStream
func OpenFileStream(path string) (*FileStream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IoError{Stage: StageOpen, Path: path, Err: err}
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &IoError{Stage: StageOpen, Path: path, Err: err}
	}
	return &FileStream{File: f, size: fi.Size()}, nil
}

func (fs *FileStream) Size() int64 {
	return fs.size
}

func (fs *FileStream) Seek(offset int64) error {
	if offset < 0 {
		return &IoError{Stage: StageOpen, Path: fs.File.Name(), Err: fmt.Errorf("negative seek offset %d", offset)}
	}
	_, err := fs.File.Seek(offset, io.SeekStart)
	if err != nil {
		return &IoError{Stage: StageOpen, Path: fs.File.Name(), Err: err}
	}
	return nil
}

func (fs *FileStream) ReadExact(buf []byte) error {
	n, err := io.ReadFull(fs.File, buf)
	if err != nil {
		return &IoError{
			Stage: StageOpen,
			Path:  fs.File.Name(),
			Err:   fmt.Errorf("short read (%d of %d bytes): %w", n, len(buf), err),
		}
	}
	return nil
}

func (fs *FileStream) Close() error {
	return fs.File.Close()
}
