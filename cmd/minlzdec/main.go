// Command minlzdec decompresses a single-stream, single-block, LZMA2-only
// XZ file.
package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/ionescu007/minlzma"
)

const banner = "minlzdec -- github.com/ionescu007/minlzma"

func main() {
	fmt.Println(banner)

	if len(os.Args) != 3 {
		fmt.Println("Usage: minlzdec [INPUT FILE] [OUTPUT FILE]")
		fmt.Println("Decompress INPUT FILE in the .xz format into OUTPUT FILE.")
		os.Exit(int(syscall.EINVAL))
	}

	os.Exit(run(os.Args[1], os.Args[2]))
}

func run(inputPath, outputPath string) int {
	input, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Printf("Failed to open input file: %s\n", inputPath)
		return int(syscall.ENOENT)
	}
	fmt.Printf("Input file size: %d\n", len(input))

	outputSize, err := minlzma.Size(input)
	if err != nil {
		fmt.Printf("Decoding failed: %v\n", err)
		return int(syscall.ENOTSUP)
	}
	if outputSize > 0 {
		fmt.Printf("Decompressed file will be %d bytes (%.2f%% ratio)\n",
			outputSize, 100*float64(len(input))/float64(outputSize))
	} else {
		fmt.Println("Decompressed file will be 0 bytes")
	}

	output := make([]byte, outputSize)
	n, err := minlzma.Decode(input, output)
	if err != nil {
		fmt.Printf("Decoding failed: %v\n", err)
		return int(syscall.ENOTSUP)
	}
	fmt.Printf("Decompressed %d bytes\n", n)

	if err := os.WriteFile(outputPath, output[:n], 0o644); err != nil {
		fmt.Printf("Failed to write output file: %s\n", outputPath)
		return int(syscall.EIO)
	}
	return 0
}
