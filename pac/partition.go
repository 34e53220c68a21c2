package pac

import (
	"encoding/binary"
)

const (
	DescriptorFixedSize = 1568 // Smallest legal descriptor: every fixed field, no trailing data

	PartitionNameUnits = 256
	FileNameUnits      = 512

	DescriptorEntrySizeIndex     = 0    // Index into descriptor for the entry size (4 bytes)
	DescriptorPartitionNameIndex = 4    // "" partition name (256 units)
	DescriptorFileNameIndex      = 516  // "" file name (512 units)
	DescriptorPartitionSizeIndex = 1540 // "" payload size (4 bytes)
	DescriptorRevisionIndex      = 1544 // "" revision code (2x4 bytes)
	DescriptorPayloadOffsetIndex = 1552 // "" payload offset in container (4 bytes)
	DescriptorChecksumIndex      = 1556 // "" checksum (3x4 bytes, never verified)
)

// One entry from the partition table
type PartitionDescriptor struct {
	Offset        int64  // Where in the container this record starts
	EntrySize     uint32 // Encoded length of the whole record
	Name          string // Logical partition name (boot, system...)
	FileName      string // Name the payload is extracted under
	PartitionSize uint32 // Payload length. 0 means placeholder entry
	RevisionCode  [2]int32
	PayloadOffset uint32
	Checksum      [3]int32
	Extra         []byte // Anything past the fixed fields, up to EntrySize
}

// Placeholder entries carry no payload and are skipped during extraction
func (d *PartitionDescriptor) IsPlaceholder() bool {
	return d.PartitionSize == 0
}

// Exclusive end of the payload within the container
func (d *PartitionDescriptor) PayloadEnd() int64 {
	return int64(d.PayloadOffset) + int64(d.PartitionSize)
}

// Decode a full descriptor record (including the leading size field). Fields
// are pulled by explicit offset; the record must hold at least the fixed part.
func ParsePartitionDescriptor(record []byte) (PartitionDescriptor, error) {
	var d PartitionDescriptor
	if len(record) < DescriptorFixedSize {
		return d, formatErrorf(StageTable, "descriptor record is %d bytes, need at least %d", len(record), DescriptorFixedSize)
	}
	le := binary.LittleEndian
	d.EntrySize = le.Uint32(record[DescriptorEntrySizeIndex:])
	d.Name = DecodeFieldAt(record, DescriptorPartitionNameIndex, PartitionNameUnits)
	d.FileName = DecodeFieldAt(record, DescriptorFileNameIndex, FileNameUnits)
	d.PartitionSize = le.Uint32(record[DescriptorPartitionSizeIndex:])
	for i := range d.RevisionCode {
		d.RevisionCode[i] = int32(le.Uint32(record[DescriptorRevisionIndex+i*4:]))
	}
	d.PayloadOffset = le.Uint32(record[DescriptorPayloadOffsetIndex:])
	for i := range d.Checksum {
		d.Checksum[i] = int32(le.Uint32(record[DescriptorChecksumIndex+i*4:]))
	}
	if len(record) > DescriptorFixedSize {
		d.Extra = append([]byte(nil), record[DescriptorFixedSize:]...)
	}
	return d, nil
}

// Read one raw descriptor record at the given offset. The size field has to be
// read first to know how much to read, then the whole record (size field
// included) is read again in one go.
func ReadDescriptorRecord(stream ByteStream, offset int64) ([]byte, error) {
	size := stream.Size()
	if offset < 0 || offset+4 > size {
		return nil, formatErrorf(StageTable, "descriptor at %d is past the end of the file (%d bytes)", offset, size)
	}
	if err := stream.Seek(offset); err != nil {
		return nil, withStage(StageTable, err)
	}
	var sizeField [4]byte
	if err := stream.ReadExact(sizeField[:]); err != nil {
		return nil, withStage(StageTable, err)
	}
	entrySize := int64(binary.LittleEndian.Uint32(sizeField[:]))
	if entrySize < DescriptorFixedSize {
		return nil, formatErrorf(StageTable, "descriptor at %d declares size %d, need at least %d", offset, entrySize, DescriptorFixedSize)
	}
	if offset+entrySize > size {
		return nil, formatErrorf(StageTable, "descriptor at %d with size %d runs past the end of the file (%d bytes)", offset, entrySize, size)
	}
	record := make([]byte, entrySize)
	if err := stream.Seek(offset); err != nil {
		return nil, withStage(StageTable, err)
	}
	if err := stream.ReadExact(record); err != nil {
		return nil, withStage(StageTable, err)
	}
	return record, nil
}

// Walk the partition table: count descriptors starting at startOffset, each
// one immediately after the last (by its own declared size). The count is
// checked against what could possibly fit in the file before anything is
// allocated. Any bad entry fails the whole table.
func ReadPartitionTable(stream ByteStream, startOffset int64, count int32) ([]PartitionDescriptor, error) {
	if count < 0 {
		return nil, formatErrorf(StageTable, "negative partition count %d", count)
	}
	if count == 0 {
		return []PartitionDescriptor{}, nil
	}
	size := stream.Size()
	if startOffset < 0 || startOffset > size {
		return nil, formatErrorf(StageTable, "table offset %d outside of file (%d bytes)", startOffset, size)
	}
	if int64(count)*DescriptorFixedSize > size-startOffset {
		return nil, formatErrorf(StageTable, "%d partitions can't fit in the %d bytes after the table offset", count, size-startOffset)
	}

	result := make([]PartitionDescriptor, 0, count)
	offset := startOffset
	for i := 0; i < int(count); i++ {
		record, err := ReadDescriptorRecord(stream, offset)
		if err != nil {
			return nil, err
		}
		d, err := ParsePartitionDescriptor(record)
		if err != nil {
			return nil, err
		}
		d.Offset = offset
		result = append(result, d)
		offset += int64(d.EntrySize)
	}
	return result, nil
}
