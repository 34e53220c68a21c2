package pac

import (
	"log"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// General tracking for an entire lua script run
type PacScriptState struct {
	FileDirectory string
	Arguments     []string
	Logs          strings.Builder
}

// Get full path to given file requested by user. The system has a way to set
// the "working directory" for the whole script, that's all
func (state *PacScriptState) FilePath(path string) string {
	if state.FileDirectory == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(state.FileDirectory, path)
}

// Add a function to the given lua state that actually tracks with our own state.
// Usually lua functions don't accept extra go parameters
func (state *PacScriptState) AddFunction(name string, f func(*lua.LState, *PacScriptState) int, L *lua.LState) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int { return f(L, state) }))
}

// Give back all the script arguments as multiple return values
func luaArguments(L *lua.LState, state *PacScriptState) int {
	for _, a := range state.Arguments {
		L.Push(lua.LString(a))
	}
	return len(state.Arguments)
}

// Like print, but collected so the caller gets everything the script logged
func luaLog(L *lua.LState, state *PacScriptState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	line := strings.Join(parts, "\t")
	log.Printf("[script] %s\n", line)
	state.Logs.WriteString(line)
	state.Logs.WriteString("\n")
	return 0
}

func descriptorToTable(L *lua.LState, d *PartitionDescriptor) *lua.LTable {
	t := L.CreateTable(0, 8)
	t.RawSetString("name", lua.LString(d.Name))
	t.RawSetString("file_name", lua.LString(d.FileName))
	t.RawSetString("size", lua.LNumber(d.PartitionSize))
	t.RawSetString("payload_offset", lua.LNumber(d.PayloadOffset))
	t.RawSetString("entry_size", lua.LNumber(d.EntrySize))
	t.RawSetString("offset", lua.LNumber(d.Offset))
	t.RawSetString("is_placeholder", lua.LBool(d.IsPlaceholder()))
	return t
}

// Read header and partition table of a container into a table
func luaParsePac(L *lua.LState, state *PacScriptState) int {
	path := state.FilePath(L.ToString(1))
	info, err := Inspect(path, false)
	if err != nil {
		L.RaiseError("Couldn't parse container %s: %s", path, err)
		return 0
	}
	result := L.CreateTable(0, 6)
	result.RawSetString("size", lua.LNumber(info.Size))
	result.RawSetString("firmware", lua.LString(info.Header.FirmwareName))
	result.RawSetString("product", lua.LString(info.Header.ProductName))
	result.RawSetString("board_version", lua.LNumber(info.Header.BoardVersion))
	partitions := L.CreateTable(len(info.Partitions), 0)
	for i := range info.Partitions {
		partitions.Append(descriptorToTable(L, &info.Partitions[i]))
	}
	result.RawSetString("partitions", partitions)
	L.Push(result)
	return 1
}

// Fully unpack a container into a folder, returning a summary table
func luaUnpack(L *lua.LState, state *PacScriptState) int {
	path := state.FilePath(L.ToString(1))
	outdir := state.FilePath(L.OptString(2, DefaultOutputDir))
	result, err := Unpack(path, UnpackOptions{OutputDir: outdir})
	if err != nil {
		L.RaiseError("Couldn't unpack container %s: %s", path, err)
		return 0
	}
	t := L.CreateTable(0, 4)
	t.RawSetString("extracted", lua.LNumber(result.ExtractedCount))
	t.RawSetString("skipped", lua.LNumber(result.SkippedCount))
	t.RawSetString("bytes", lua.LNumber(result.ExtractedBytes))
	files := L.CreateTable(result.ExtractedCount, 0)
	for _, p := range result.Partitions {
		if !p.Skipped {
			files.Append(lua.LString(p.Path))
		}
	}
	t.RawSetString("files", files)
	L.Push(t)
	return 1
}

// Read the payload of a single named partition into a string. The whole
// payload ends up in memory, so this is meant for small things like FDLs.
func luaReadPartition(L *lua.LState, state *PacScriptState) int {
	path := state.FilePath(L.ToString(1))
	name := L.ToString(2)
	data, err := ReadPartitionPayload(path, name)
	if err != nil {
		L.RaiseError("Couldn't read partition %s from %s: %s", name, path, err)
		return 0
	}
	L.Push(lua.LString(string(data)))
	return 1
}

// Find the named partition and read its whole payload
func ReadPartitionPayload(containerPath string, name string) ([]byte, error) {
	stream, err := OpenFileStream(containerPath)
	if err != nil {
		return nil, err
	}
	defer stream.Close()
	info, err := InspectStream(stream)
	if err != nil {
		return nil, err
	}
	for i := range info.Partitions {
		d := &info.Partitions[i]
		if d.Name != name {
			continue
		}
		if d.PayloadEnd() > stream.Size() {
			return nil, formatErrorf(StageExtract, "partition %s payload runs past the end of the file", name)
		}
		data := make([]byte, d.PartitionSize)
		if err := stream.Seek(int64(d.PayloadOffset)); err != nil {
			return nil, withStage(StageExtract, err)
		}
		if err := stream.ReadExact(data); err != nil {
			return nil, withStage(StageExtract, err)
		}
		return data, nil
	}
	return nil, formatErrorf(StageExtract, "no partition named %s", name)
}

// Run an entire lua script which can look into and unpack containers. Returns
// everything the script passed to log().
func RunLuaPacScript(script string, arguments []string, dir string) (string, error) {
	state := PacScriptState{
		Arguments:     arguments,
		FileDirectory: dir,
	}

	L := lua.NewState()
	defer L.Close()

	setBasicLuaFunctions(L)
	state.AddFunction("arguments", luaArguments, L)
	state.AddFunction("log", luaLog, L)
	state.AddFunction("file", luaFile, L)
	state.AddFunction("listdir", luaListDir, L)
	state.AddFunction("parse_pac", luaParsePac, L)
	state.AddFunction("unpack_pac", luaUnpack, L)
	state.AddFunction("read_partition", luaReadPartition, L)

	err := L.DoString(script)
	return state.Logs.String(), err
}
