package pac

import (
	"log"
)

// Default folder (relative to the working directory) partitions are unpacked to
const DefaultOutputDir = "pac_unpacked"

type UnpackOptions struct {
	OutputDir string // Where to put extracted files (DefaultOutputDir if empty)
	Mapped    bool   // Read the container through a memory map instead of a file handle
}

// Header plus the full partition table, without any payloads
type ContainerInfo struct {
	Size       int64
	Header     *ContainerHeader
	Partitions []PartitionDescriptor
}

// Summary of a successful unpack run
type UnpackResult struct {
	Container      string
	OutputDir      string
	FirmwareName   string
	ProductName    string
	Partitions     []*ExtractedPartition
	ExtractedCount int
	SkippedCount   int
	ExtractedBytes int64
}

// Read header and partition table from an already open stream
func InspectStream(stream ByteStream) (*ContainerInfo, error) {
	header, err := ReadContainerHeader(stream)
	if err != nil {
		return nil, err
	}
	log.Printf("Firmware name: %s\n", header.FirmwareName)
	partitions, err := ReadPartitionTable(stream, int64(header.PartitionTableOffset), header.PartitionCount)
	if err != nil {
		return nil, err
	}
	return &ContainerInfo{
		Size:       stream.Size(),
		Header:     header,
		Partitions: partitions,
	}, nil
}

// Open the container and read header + table, nothing else
func Inspect(containerPath string, mapped bool) (*ContainerInfo, error) {
	stream, err := OpenStream(containerPath, mapped)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	return InspectStream(stream)
}

// Extract every non-empty partition from an already open stream into outdir,
// in table order. Stops at the first failure; anything fully written before
// that stays on disk.
func UnpackStream(stream ByteStream, outdir string) (*UnpackResult, error) {
	info, err := InspectStream(stream)
	if err != nil {
		return nil, err
	}
	if err := PrepareOutputDirectory(outdir); err != nil {
		return nil, err
	}
	result := UnpackResult{
		OutputDir:    outdir,
		FirmwareName: info.Header.FirmwareName,
		ProductName:  info.Header.ProductName,
		Partitions:   make([]*ExtractedPartition, 0, len(info.Partitions)),
	}
	extractor := NewExtractor()
	for i := range info.Partitions {
		d := &info.Partitions[i]
		log.Printf("Partition name: %s, file name: %s, size %d\n", d.Name, d.FileName, d.PartitionSize)
		extracted, err := extractor.ExtractPartition(stream, d, outdir)
		if err != nil {
			return nil, err
		}
		if extracted.Skipped {
			result.SkippedCount++
		} else {
			result.ExtractedCount++
			result.ExtractedBytes += int64(extracted.Size)
		}
		result.Partitions = append(result.Partitions, extracted)
	}
	return &result, nil
}

// Unpack the whole container at containerPath
func Unpack(containerPath string, options UnpackOptions) (*UnpackResult, error) {
	outdir := options.OutputDir
	if outdir == "" {
		outdir = DefaultOutputDir
	}
	stream, err := OpenStream(containerPath, options.Mapped)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	result, err := UnpackStream(stream, outdir)
	if err != nil {
		return nil, err
	}
	result.Container = containerPath
	log.Printf("Unpacked %d partitions (%d placeholders skipped) from %s\n",
		result.ExtractedCount, result.SkippedCount, containerPath)
	return result, nil
}
