package pac

import (
	"bytes"
	"testing"
)

func TestReadPartitionTable(t *testing.T) {
	extra := []byte("some trailing vendor data")
	data := buildContainer([]testPartition{
		{name: "FDL", fileName: "fdl1.bin", payload: []byte("fdl payload"), extra: extra},
		{name: "NV", fileName: "nv.bin"},
		{name: "boot", fileName: "boot.img", payload: []byte("boot payload")},
	})
	stream := newMemStream(data)
	table, err := ReadPartitionTable(stream, ContainerHeaderSize, 3)
	if err != nil {
		t.Fatalf("Error reading partition table: %s", err)
	}
	if len(table) != 3 {
		t.Fatalf("Expected 3 partitions, got %d", len(table))
	}

	first := table[0]
	if first.Name != "FDL" || first.FileName != "fdl1.bin" {
		t.Fatalf("Bad names in first partition: %s, %s", first.Name, first.FileName)
	}
	if first.EntrySize != uint32(DescriptorFixedSize+len(extra)) {
		t.Fatalf("Expected entry size %d, got %d", DescriptorFixedSize+len(extra), first.EntrySize)
	}
	if !bytes.Equal(first.Extra, extra) {
		t.Fatalf("Expected extra data to be kept, got %q", first.Extra)
	}
	if first.Offset != ContainerHeaderSize {
		t.Fatalf("Expected first descriptor at %d, got %d", ContainerHeaderSize, first.Offset)
	}

	// Next descriptor starts right after the declared size of the last one
	if table[1].Offset != first.Offset+int64(first.EntrySize) {
		t.Fatalf("Expected second descriptor at %d, got %d", first.Offset+int64(first.EntrySize), table[1].Offset)
	}
	if !table[1].IsPlaceholder() {
		t.Fatalf("Expected second partition to be a placeholder")
	}
	if table[1].Extra != nil {
		t.Fatalf("Expected no extra data in second partition")
	}

	boot := table[2]
	if boot.Name != "boot" || boot.PartitionSize != 12 {
		t.Fatalf("Bad boot partition: %s, %d", boot.Name, boot.PartitionSize)
	}
	payload := data[boot.PayloadOffset:boot.PayloadEnd()]
	if string(payload) != "boot payload" {
		t.Fatalf("Payload offset points at the wrong data: %q", payload)
	}
}

func TestReadPartitionTable_Empty(t *testing.T) {
	table, err := ReadPartitionTable(newMemStream(buildContainer(nil)), 999999, 0)
	if err != nil {
		t.Fatalf("No partitions should never fail, got %s", err)
	}
	if len(table) != 0 {
		t.Fatalf("Expected no partitions, got %d", len(table))
	}
}

func TestReadPartitionTable_BadCounts(t *testing.T) {
	data := buildContainer([]testPartition{
		{name: "boot", fileName: "boot.img", payload: []byte("x")},
	})
	_, err := ReadPartitionTable(newMemStream(data), ContainerHeaderSize, -1)
	expectFormatError(t, err, StageTable)
	// A count that could never fit in the file fails up front
	_, err = ReadPartitionTable(newMemStream(data), ContainerHeaderSize, 0x7FFFFFFF)
	expectFormatError(t, err, StageTable)
	_, err = ReadPartitionTable(newMemStream(data), ContainerHeaderSize, 2)
	expectFormatError(t, err, StageTable)
	_, err = ReadPartitionTable(newMemStream(data), int64(len(data))+1, 1)
	expectFormatError(t, err, StageTable)
}

func TestReadPartitionTable_BadEntrySize(t *testing.T) {
	data := buildContainer([]testPartition{
		{name: "boot", fileName: "boot.img", payload: randomBytes(t, 2000)},
	})
	putU32(data, descriptorOffset(0)+DescriptorEntrySizeIndex, DescriptorFixedSize-1)
	_, err := ReadPartitionTable(newMemStream(data), ContainerHeaderSize, 1)
	expectFormatError(t, err, StageTable)

	putU32(data, descriptorOffset(0)+DescriptorEntrySizeIndex, uint32(len(data)))
	_, err = ReadPartitionTable(newMemStream(data), ContainerHeaderSize, 1)
	expectFormatError(t, err, StageTable)
}

func TestParsePartitionDescriptor_Short(t *testing.T) {
	_, err := ParsePartitionDescriptor(make([]byte, DescriptorFixedSize-1))
	expectFormatError(t, err, StageTable)
}
