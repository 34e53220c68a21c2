package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/randomouscrap98/pacgotools/pac"
)

// Dumps every raw partition descriptor record of a container into its own
// file, so odd containers can be picked apart in a hex editor.
func main() {
	// Check if a filename is provided as a command-line argument
	if len(os.Args) != 2 {
		fmt.Println("Usage: go run main.go <filename>")
		return
	}

	filename := os.Args[1]
	stream, err := pac.OpenFileStream(filename)
	if err != nil {
		fmt.Println("Error opening file:", err)
		return
	}
	defer stream.Close()

	header, err := pac.ReadContainerHeader(stream)
	if err != nil {
		fmt.Println("Error reading header:", err)
		return
	}

	// Create a new directory to store the found descriptors
	outputDir := "found_descriptors"
	err = os.Mkdir(outputDir, 0755)
	if err != nil && !os.IsExist(err) {
		fmt.Println("Error creating output directory:", err)
		return
	}

	// Same walk as the table reader, except records are kept raw and a bad
	// one just ends the dump instead of throwing the rest away
	offset := int64(header.PartitionTableOffset)
	dumped := 0
	for i := 0; i < int(header.PartitionCount); i++ {
		record, err := pac.ReadDescriptorRecord(stream, offset)
		if err != nil {
			fmt.Printf("Stopping at descriptor %d: %s\n", i, err)
			break
		}
		recordFilename := filepath.Join(outputDir, fmt.Sprintf("descriptor_%d.bin", i))
		err = os.WriteFile(recordFilename, record, 0644)
		if err != nil {
			fmt.Println("Error writing descriptor to file:", err)
			return
		}
		offset += int64(len(record))
		dumped++
	}

	fmt.Printf("Found and saved %d descriptors to directory '%s'\n", dumped, outputDir)
}
