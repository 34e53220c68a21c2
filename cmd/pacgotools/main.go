package main

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/randomouscrap98/pacgotools/pac"
)

const (
	AppVersion = "0.1.0"
)

// **********************************
// *       CONTAINER COMMANDS       *
// **********************************

// Unpack command
type UnpackCmd struct {
	Firmware string `arg:"" type:"existingfile" help:"The firmware container (.pac) to unpack"`
	Outdir   string `type:"path" short:"o" help:"Folder to extract into (default: pac_unpacked, or output_dir from config)"`
	Mmap     bool   `help:"Read the container through a memory map"`
}

func (c *UnpackCmd) Run(config *Config) error {
	outdir := c.Outdir
	if outdir == "" {
		outdir = config.OutputDir
	}
	result, err := pac.Unpack(c.Firmware, pac.UnpackOptions{
		OutputDir: outdir,
		Mapped:    c.Mmap || config.Mmap,
	})
	fatalIfErr(c.Firmware, "unpack firmware", err)
	log.Printf("Wrote %d bytes to %s\n", result.ExtractedBytes, result.OutputDir)
	PrintJson(result)
	return nil
}

// Info command
type InfoCmd struct {
	Firmware string `arg:"" type:"existingfile" help:"The firmware container (.pac) to read"`
	Mmap     bool   `help:"Read the container through a memory map"`
}

func (c *InfoCmd) Run(config *Config) error {
	info, err := pac.Inspect(c.Firmware, c.Mmap || config.Mmap)
	fatalIfErr(c.Firmware, "read firmware header", err)
	log.Printf("Firmware %s has %d partitions\n", info.Header.FirmwareName, len(info.Partitions))
	PrintJson(info)
	return nil
}

// **********************************
// *        SCRIPT COMMANDS         *
// **********************************

type ScriptCmd struct {
	Infile    string   `arg:"" type:"existingfile" help:"The lua script to run"`
	Arguments []string `arg:"" optional:"" help:"Arguments passed to the script (see arguments())"`
	Dir       string   `type:"path" short:"d" help:"Folder relative paths in the script are resolved against (default: script folder)"`
}

func (c *ScriptCmd) Run() error {
	script, err := os.ReadFile(c.Infile)
	fatalIfErr(c.Infile, "read script", err)
	if c.Dir == "" {
		c.Dir = filepath.Dir(c.Infile)
	}
	logs, err := pac.RunLuaPacScript(string(script), c.Arguments, c.Dir)
	fatalIfErr(c.Infile, "run script", err)
	result := make(map[string]interface{})
	result["Script"] = c.Infile
	result["Logs"] = logs
	PrintJson(result)
	return nil
}

// **********************************
// *       CONVERT COMMANDS         *
// **********************************

type Bin2HexCmd struct {
	Infile  string `type:"existingfile" short:"i" required:"" help:"Extracted image to convert"`
	Outfile string `type:"path" short:"o"`
	Address uint32 `help:"Load address of the image"`
}

func (c *Bin2HexCmd) Run() error {
	if c.Outfile == "" {
		c.Outfile = fmt.Sprintf("bin2hex_%s.hex", FileSafeDateTime())
	}
	bin, err := os.ReadFile(c.Infile)
	fatalIfErr("bin2hex", "read bin file", err)
	var hex bytes.Buffer
	err = pac.BinToHex(bin, c.Address, &hex)
	fatalIfErr("bin2hex", "convert bin", err)
	err = os.WriteFile(c.Outfile, hex.Bytes(), 0644)
	fatalIfErr("bin2hex", "write hex file", err)
	result := make(map[string]interface{})
	result["Infile"] = c.Infile
	result["Outfile"] = c.Outfile
	result["Length"] = len(bin)
	result["MD5"] = pac.Md5String(bin)
	PrintJson(result)
	return nil
}

type Hex2BinCmd struct {
	Infile  string `type:"existingfile" short:"i" required:"" help:"Intel hex file to convert"`
	Outfile string `type:"path" short:"o"`
}

func (c *Hex2BinCmd) Run() error {
	if c.Outfile == "" {
		c.Outfile = fmt.Sprintf("hex2bin_%s.bin", FileSafeDateTime())
	}
	hex, err := os.Open(c.Infile)
	fatalIfErr("hex2bin", "open hex file", err)
	defer hex.Close()
	bin, address, err := pac.HexToBin(hex)
	fatalIfErr("hex2bin", "convert hex", err)
	err = os.WriteFile(c.Outfile, bin, 0644)
	fatalIfErr("hex2bin", "write bin file", err)
	result := make(map[string]interface{})
	result["Infile"] = c.Infile
	result["Outfile"] = c.Outfile
	result["Address"] = address
	result["Length"] = len(bin)
	result["MD5"] = pac.Md5String(bin)
	PrintJson(result)
	return nil
}

// Boot logo preview command
type PreviewCmd struct {
	Infile     string `type:"existingfile" short:"i" required:"" help:"Extracted logo partition (bmp/png/gif/jpg)"`
	Outfile    string `type:"path" short:"o"`
	Width      int    `help:"Preview width (default from config, else 240)"`
	Height     int    `help:"Preview height (default from config, else 320)"`
	Background string `help:"Background color, any css color (default from config, else black)"`
}

func (c *PreviewCmd) Run(config *Config) error {
	if c.Outfile == "" {
		c.Outfile = fmt.Sprintf("preview_%s.png", FileSafeDateTime())
	}
	pconfig := config.Preview
	if c.Width > 0 {
		pconfig.Width = c.Width
	}
	if c.Height > 0 {
		pconfig.Height = c.Height
	}
	if c.Background != "" {
		pconfig.Background = c.Background
	}
	logo, err := os.Open(c.Infile)
	fatalIfErr("preview", "open logo", err)
	defer logo.Close()
	out, err := os.Create(c.Outfile)
	fatalIfErr("preview", "create preview file", err)
	defer out.Close()
	rendered, err := pac.RenderPreview(logo, &pconfig, out)
	fatalIfErr("preview", "render logo", err)
	log.Printf("Rendered %s logo %dx%d into %s\n", rendered.Format,
		rendered.OriginalWidth, rendered.OriginalHeight, c.Outfile)
	result := make(map[string]interface{})
	result["Infile"] = c.Infile
	result["Outfile"] = c.Outfile
	result["Preview"] = rendered
	PrintJson(result)
	return nil
}

// **********************************
// *       DEVICES COMMANDS         *
// **********************************

type DeviceScanCmd struct {
}

func (c *DeviceScanCmd) Run() error {
	devices, err := pac.GetDownloadDevices()
	fatalIfErr("scan", "pull devices", err)
	log.Printf("Scan found %d devices in download mode\n", len(devices))
	PrintJson(devices)
	return nil
}

// **********************************
// *    ALL TOGETHER COMMANDS       *
// **********************************

var cli struct {
	Unpack  UnpackCmd `cmd:"" help:"Extract every partition of a firmware container into a folder"`
	Info    InfoCmd   `cmd:"" help:"Show the header and partition table of a firmware container"`
	Script  ScriptCmd `cmd:"" help:"Run a lua script which can parse and unpack containers"`
	Convert struct {
		Bin2Hex Bin2HexCmd `cmd:"" help:"Convert an extracted image to intel hex" name:"bin2hex"`
		Hex2Bin Hex2BinCmd `cmd:"" help:"Convert intel hex back to a raw image" name:"hex2bin"`
	} `cmd:"" help:"Commands which convert extracted images"`
	Preview PreviewCmd `cmd:"" help:"Render an extracted boot logo as a png thumbnail"`
	Device  struct {
		Scan DeviceScanCmd `cmd:"" help:"Search for phones in download mode"`
	} `cmd:"" help:"Commands which retrieve information about devices"`
	Config  string           `type:"path" default:"pacgotools.toml" help:"Config file (toml, optional)"`
	Version kong.VersionFlag `help:"Show version information"`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("pacgotools"),
		kong.ShortUsageOnError(),
		kong.Description("A set of tools for working with UNISOC/Spreadtrum PAC firmware containers"),
		kong.Vars{
			"version": AppVersion,
		},
	)
	config, err := LoadConfig(cli.Config)
	fatalIfErr(cli.Config, "load config", err)
	err = ctx.Run(config)
	ctx.FatalIfErrorf(err)
}
