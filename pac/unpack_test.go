package pac

import (
	"bytes"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestUnpack(t *testing.T) {
	fdl := randomBytes(t, 513)
	boot := randomBytes(t, 4096)
	path := writeContainer(t, buildContainer([]testPartition{
		{name: "FDL", fileName: "fdl1.bin", payload: fdl},
		{name: "NV", fileName: "nv.bin"},
		{name: "boot", fileName: "boot.img", payload: boot},
	}))
	outdir := filepath.Join(t.TempDir(), "nested", "out")

	check := func(result *UnpackResult) {
		if result.ExtractedCount != 2 || result.SkippedCount != 1 {
			t.Fatalf("Expected 2 extracted and 1 skipped, got %d and %d", result.ExtractedCount, result.SkippedCount)
		}
		if result.ExtractedBytes != int64(len(fdl)+len(boot)) {
			t.Fatalf("Expected %d bytes extracted, got %d", len(fdl)+len(boot), result.ExtractedBytes)
		}
		if result.FirmwareName != testFirmwareName {
			t.Fatalf("Expected firmware %s, got %s", testFirmwareName, result.FirmwareName)
		}
		for name, expected := range map[string][]byte{"fdl1.bin": fdl, "boot.img": boot} {
			written, err := os.ReadFile(filepath.Join(outdir, name))
			if err != nil {
				t.Fatalf("Couldn't read %s: %s", name, err)
			}
			if !bytes.Equal(written, expected) {
				t.Fatalf("Contents of %s are wrong", name)
			}
		}
		if _, err := os.Stat(filepath.Join(outdir, "nv.bin")); !os.IsNotExist(err) {
			t.Fatalf("Placeholder partition should have no file")
		}
	}

	result, err := Unpack(path, UnpackOptions{OutputDir: outdir})
	if err != nil {
		t.Fatalf("Error unpacking: %s", err)
	}
	check(result)

	// Running again over the same folder gives the same files
	result, err = Unpack(path, UnpackOptions{OutputDir: outdir, Mapped: true})
	if err != nil {
		t.Fatalf("Error unpacking the second time: %s", err)
	}
	check(result)
	entries, err := os.ReadDir(outdir)
	if err != nil {
		t.Fatalf("Couldn't list output: %s", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected exactly 2 files in output, got %d", len(entries))
	}
}

func TestUnpack_NoPartitions(t *testing.T) {
	path := writeContainer(t, buildContainer(nil))
	outdir := filepath.Join(t.TempDir(), "out")
	result, err := Unpack(path, UnpackOptions{OutputDir: outdir})
	if err != nil {
		t.Fatalf("Error unpacking empty container: %s", err)
	}
	if result.ExtractedCount != 0 || len(result.Partitions) != 0 {
		t.Fatalf("Expected nothing extracted, got %d", result.ExtractedCount)
	}
	if stat, err := os.Stat(outdir); err != nil || !stat.IsDir() {
		t.Fatalf("Output directory should still be created")
	}
}

// The first bad partition ends the run; earlier files stay, later ones never happen
func TestUnpack_StopsAtFirstError(t *testing.T) {
	data := buildContainer([]testPartition{
		{name: "first", fileName: "first.bin", payload: randomBytes(t, 100)},
		{name: "second", fileName: "second.bin", payload: randomBytes(t, 100)},
		{name: "third", fileName: "third.bin", payload: randomBytes(t, 100)},
	})
	putU32(data, descriptorOffset(1)+DescriptorPayloadOffsetIndex, uint32(len(data)))
	path := writeContainer(t, data)
	outdir := t.TempDir()
	_, err := Unpack(path, UnpackOptions{OutputDir: outdir})
	expectFormatError(t, err, StageExtract)

	if _, err := os.Stat(filepath.Join(outdir, "first.bin")); err != nil {
		t.Fatalf("First partition should have been extracted: %s", err)
	}
	for _, name := range []string{"second.bin", "third.bin"} {
		if _, err := os.Stat(filepath.Join(outdir, name)); !os.IsNotExist(err) {
			t.Fatalf("%s should not exist", name)
		}
	}
}

func TestUnpack_Missing(t *testing.T) {
	_, err := Unpack(filepath.Join(t.TempDir(), "nope.pac"), UnpackOptions{OutputDir: t.TempDir()})
	ioerr, ok := err.(*IoError)
	if !ok {
		t.Fatalf("Expected io error, got %v", err)
	}
	if ioerr.Stage != StageOpen {
		t.Fatalf("Expected open stage, got %s", ioerr.Stage)
	}
}

// Bad headers and tables fail before anything is created
func TestUnpack_BadContainer(t *testing.T) {
	outdir := filepath.Join(t.TempDir(), "out")
	path := writeContainer(t, make([]byte, 100))
	_, err := Unpack(path, UnpackOptions{OutputDir: outdir})
	expectFormatError(t, err, StageHeader)

	data := buildContainer(nil)
	putU32(data, HeaderPartitionCountIndex, 5)
	path = writeContainer(t, data)
	_, err = Unpack(path, UnpackOptions{OutputDir: outdir})
	expectFormatError(t, err, StageTable)

	if _, err := os.Stat(outdir); !os.IsNotExist(err) {
		t.Fatalf("Output directory made for a broken container")
	}
}

func TestInspect(t *testing.T) {
	path := writeContainer(t, buildContainer([]testPartition{
		{name: "boot", fileName: "boot.img", payload: []byte("abc")},
	}))
	info, err := Inspect(path, true)
	if err != nil {
		t.Fatalf("Error inspecting: %s", err)
	}
	if len(info.Partitions) != 1 || info.Partitions[0].FileName != "boot.img" {
		t.Fatalf("Bad partition table: %v", info.Partitions)
	}
	if info.Header.ProductName != testProductName {
		t.Fatalf("Expected product %s, got %s", testProductName, info.Header.ProductName)
	}
}

// Partition lines only show up when something is actually being unpacked
func TestUnpack_PartitionLogging(t *testing.T) {
	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	path := writeContainer(t, buildContainer([]testPartition{
		{name: "boot", fileName: "boot.img", payload: []byte("abc")},
	}))
	if _, err := Inspect(path, false); err != nil {
		t.Fatalf("Error inspecting: %s", err)
	}
	if strings.Contains(logs.String(), "Partition name:") {
		t.Fatalf("Inspect should not log partitions, got: %s", logs.String())
	}
	if _, err := Unpack(path, UnpackOptions{OutputDir: t.TempDir()}); err != nil {
		t.Fatalf("Error unpacking: %s", err)
	}
	expected := "Partition name: boot, file name: boot.img, size 3"
	if !strings.Contains(logs.String(), expected) {
		t.Fatalf("Expected '%s' in logs, got: %s", expected, logs.String())
	}
}
