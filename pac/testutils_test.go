package pac

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"
)

const (
	testFirmwareName = "TESTFW_V1"
	testProductName  = "TESTPROD"
)

// A partition to put into a generated container. Payload offsets are filled
// in by buildContainer
type testPartition struct {
	name     string
	fileName string
	payload  []byte
	extra    []byte
}

// Store name as 16 bit units with junk in the high byte, like real containers
func encodeName(dst []byte, name string) {
	for i := 0; i < len(name); i++ {
		binary.LittleEndian.PutUint16(dst[i*2:], uint16(0x5A00|uint16(name[i])))
	}
}

func putU32(data []byte, offset int, value uint32) {
	binary.LittleEndian.PutUint32(data[offset:], value)
}

// Byte offset of descriptor i, assuming none of the earlier ones carry extra data
func descriptorOffset(i int) int {
	return ContainerHeaderSize + i*DescriptorFixedSize
}

// Build a whole container: header, then the table, then every payload in order
func buildContainer(parts []testPartition) []byte {
	tableSize := 0
	for _, p := range parts {
		tableSize += DescriptorFixedSize + len(p.extra)
	}
	payloadSize := 0
	for _, p := range parts {
		payloadSize += len(p.payload)
	}
	data := make([]byte, ContainerHeaderSize+tableSize+payloadSize)

	binary.LittleEndian.PutUint16(data[HeaderBoardInfoIndex:], 0x0001)
	putU32(data, HeaderBoardVersionIndex, 3)
	encodeName(data[HeaderProductNameIndex:], testProductName)
	encodeName(data[HeaderFirmwareNameIndex:], testFirmwareName)
	putU32(data, HeaderPartitionCountIndex, uint32(len(parts)))
	putU32(data, HeaderPartitionTableIndex, ContainerHeaderSize)

	descriptor := ContainerHeaderSize
	payload := ContainerHeaderSize + tableSize
	for _, p := range parts {
		entrySize := DescriptorFixedSize + len(p.extra)
		putU32(data, descriptor+DescriptorEntrySizeIndex, uint32(entrySize))
		encodeName(data[descriptor+DescriptorPartitionNameIndex:], p.name)
		encodeName(data[descriptor+DescriptorFileNameIndex:], p.fileName)
		putU32(data, descriptor+DescriptorPartitionSizeIndex, uint32(len(p.payload)))
		if len(p.payload) > 0 {
			putU32(data, descriptor+DescriptorPayloadOffsetIndex, uint32(payload))
		}
		copy(data[descriptor+DescriptorFixedSize:], p.extra)
		copy(data[payload:], p.payload)
		descriptor += entrySize
		payload += len(p.payload)
	}
	return data
}

func randomBytes(t *testing.T, length int) []byte {
	raw := make([]byte, length)
	_, err := rand.Read(raw)
	if err != nil {
		t.Fatalf("Error generating random bytes! %s", err)
	}
	return raw
}

// Write the container somewhere temporary and give back the path
func writeContainer(t *testing.T, data []byte) string {
	path := filepath.Join(t.TempDir(), "test.pac")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Couldn't write test container: %s", err)
	}
	return path
}

// In-memory ByteStream, so parsing can be tested without touching disk
type memStream struct {
	data []byte
	pos  int64
}

func newMemStream(data []byte) *memStream {
	return &memStream{data: data}
}

func (ms *memStream) Size() int64 {
	return int64(len(ms.data))
}

func (ms *memStream) Seek(offset int64) error {
	ms.pos = offset
	return nil
}

func (ms *memStream) ReadExact(buf []byte) error {
	if ms.pos < 0 || ms.pos+int64(len(buf)) > int64(len(ms.data)) {
		return &IoError{Stage: StageOpen, Err: io.ErrUnexpectedEOF}
	}
	copy(buf, ms.data[ms.pos:])
	ms.pos += int64(len(buf))
	return nil
}

func (ms *memStream) Close() error {
	return nil
}

func expectFormatError(t *testing.T, err error, stage string) {
	t.Helper()
	switch v := err.(type) {
	case *FormatError:
		if v.Stage != stage {
			t.Fatalf("Expected format error in stage %s, got stage %s (%s)", stage, v.Stage, v)
		}
	case nil:
		t.Fatalf("Expected format error in stage %s, got no error", stage)
	default:
		t.Fatalf("Expected format error in stage %s, got %T: %s", stage, err, err)
	}
}

// A memStream that claims to be bigger than it is, like a file that got
// truncated after it was measured
type shortStream struct {
	*memStream
	size int64
}

func (ss *shortStream) Size() int64 {
	return ss.size
}
