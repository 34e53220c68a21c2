package pac

import (
	"encoding/binary"
)

const (
	ContainerHeaderSize = 1220 // Full size of the fixed header at offset 0

	BoardInfoUnits        = 24
	ProductNameUnits      = 256
	FirmwareNameUnits     = 256
	InternalRevisionCount = 5
	ProductVerifyUnits    = 50
	QualityNumberUnits    = 6
	PacVersionUnits       = 2

	HeaderBoardInfoIndex        = 0    // Index into container header for board info (24 units)
	HeaderBoardVersionIndex     = 48   // "" board version (4 bytes)
	HeaderProductNameIndex      = 52   // "" product name (256 units)
	HeaderFirmwareNameIndex     = 564  // "" firmware name (256 units)
	HeaderPartitionCountIndex   = 1076 // "" partition count (4 bytes)
	HeaderPartitionTableIndex   = 1080 // "" partition table offset (4 bytes)
	HeaderInternalRevisionIndex = 1084 // "" internal revision numbers (5x4 bytes)
	HeaderProductVerifyIndex    = 1104 // "" product name verification (50 units)
	HeaderQualityNumberIndex    = 1204 // "" quality numbers (6 units)
	HeaderPacVersionIndex       = 1216 // "" pac format version (2 units)
)

// Everything in the container header. Only BoardInfo, PartitionCount and
// PartitionTableOffset matter for extraction; the rest is carried along
// for display.
type ContainerHeader struct {
	BoardInfo            [BoardInfoUnits]uint16
	BoardVersion         int32
	ProductName          string
	FirmwareName         string
	PartitionCount       int32
	PartitionTableOffset int32
	InternalRevision     [InternalRevisionCount]int32
	ProductNameVerify    string
	QualityNumbers       [QualityNumberUnits]uint16
	PacVersion           [PacVersionUnits]uint16
}

// Whether any of the board info units are set. An all-zero board info block
// means this isn't a container we recognize.
func (h *ContainerHeader) HasBoardInfo() bool {
	for _, u := range h.BoardInfo {
		if u != 0 {
			return true
		}
	}
	return false
}

// Decode a header from exactly one header's worth of raw data. Does no
// validation beyond the length.
func ParseContainerHeader(data []byte) (*ContainerHeader, error) {
	if len(data) < ContainerHeaderSize {
		return nil, formatErrorf(StageHeader, "header needs %d bytes, got %d", ContainerHeaderSize, len(data))
	}
	le := binary.LittleEndian
	var h ContainerHeader
	copy(h.BoardInfo[:], UnitsAt(data, HeaderBoardInfoIndex, BoardInfoUnits))
	h.BoardVersion = int32(le.Uint32(data[HeaderBoardVersionIndex:]))
	h.ProductName = DecodeFieldAt(data, HeaderProductNameIndex, ProductNameUnits)
	h.FirmwareName = DecodeFieldAt(data, HeaderFirmwareNameIndex, FirmwareNameUnits)
	h.PartitionCount = int32(le.Uint32(data[HeaderPartitionCountIndex:]))
	h.PartitionTableOffset = int32(le.Uint32(data[HeaderPartitionTableIndex:]))
	for i := range h.InternalRevision {
		h.InternalRevision[i] = int32(le.Uint32(data[HeaderInternalRevisionIndex+i*4:]))
	}
	h.ProductNameVerify = DecodeFieldAt(data, HeaderProductVerifyIndex, ProductVerifyUnits)
	copy(h.QualityNumbers[:], UnitsAt(data, HeaderQualityNumberIndex, QualityNumberUnits))
	copy(h.PacVersion[:], UnitsAt(data, HeaderPacVersionIndex, PacVersionUnits))
	return &h, nil
}

// Read and validate the container header from the start of the stream. Fails
// with *FormatError if the stream is too short to hold a header or the board
// info is missing, and with *IoError if reading fails.
func ReadContainerHeader(stream ByteStream) (*ContainerHeader, error) {
	size := stream.Size()
	if size < ContainerHeaderSize {
		return nil, formatErrorf(StageHeader, "file is %d bytes, smaller than the %d byte header", size, ContainerHeaderSize)
	}
	if err := stream.Seek(0); err != nil {
		return nil, withStage(StageHeader, err)
	}
	raw := make([]byte, ContainerHeaderSize)
	if err := stream.ReadExact(raw); err != nil {
		return nil, withStage(StageHeader, err)
	}
	header, err := ParseContainerHeader(raw)
	if err != nil {
		return nil, err
	}
	if !header.HasBoardInfo() {
		return nil, formatErrorf(StageHeader, "no board info, not a recognized firmware container")
	}
	return header, nil
}
