package pac

// General lua scripting helpers, nothing container specific in here.

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	lua "github.com/yuin/gopher-lua"
)

// Function for lua scripts that lets you parse hex
func luaHex(L *lua.LState) int {
	hexstring := L.ToString(1)
	raw, err := hex.DecodeString(hexstring)
	if err != nil {
		L.RaiseError("Error decoding hex in lua script: %s", err)
		return 0
	}
	L.Push(lua.LString(string(raw)))
	return 1
}

// Function for lua scripts that lets you parse base64
func luaBase64(L *lua.LState) int {
	b64string := L.ToString(1)
	raw, err := base64.StdEncoding.DecodeString(b64string)
	if err != nil {
		L.RaiseError("Error decoding base64 in lua script: %s", err)
		return 0
	}
	L.Push(lua.LString(string(raw)))
	return 1
}

// Md5 of the given string, as hex
func luaMd5(L *lua.LState) int {
	L.Push(lua.LString(Md5String([]byte(L.ToString(1)))))
	return 1
}

// Takes an array of numbers and packs it little endian as the given type
func luaBytes(L *lua.LState) int {
	table := L.ToTable(1)
	typ := L.ToString(2)
	if table == nil {
		L.RaiseError("Error: must pass a table!")
		return 0
	}
	var buf bytes.Buffer
	for i := 1; i <= table.Len(); i++ {
		num, ok := table.RawGetInt(i).(lua.LNumber)
		if !ok {
			L.RaiseError("Error: index %d must be a number!", i)
			return 0
		}
		raw := float64(num)
		var value any
		switch typ {
		case "uint32":
			value = uint32(raw)
		case "int32":
			value = int32(raw)
		case "uint16":
			value = uint16(raw)
		case "int16":
			value = int16(raw)
		case "int8":
			value = int8(raw)
		case "uint8", "byte", "":
			value = uint8(raw)
		default:
			L.RaiseError("Unknown type: %s", typ)
			return 0
		}
		if err := binary.Write(&buf, binary.LittleEndian, value); err != nil {
			L.RaiseError("Error converting array to bytes: %s", err)
			return 0
		}
	}
	L.Push(lua.LString(buf.String()))
	return 1
}

// Decode a 16 bit obfuscated name (as raw bytes) the same way the container
// reader does
func luaDecodeName(L *lua.LState) int {
	raw := []byte(L.ToString(1))
	L.Push(lua.LString(DecodeFieldAt(raw, 0, len(raw)/2)))
	return 1
}

// Simple function to decode a json string into a lua table
func luaJson(L *lua.LState) int {
	var value interface{}
	if err := json.Unmarshal([]byte(L.ToString(1)), &value); err != nil {
		L.RaiseError("Couldn't parse json: %s", err)
		return 0
	}
	L.Push(luaDecodeValue(L, value))
	return 1
}

// Simple function to decode a toml string into a lua table
func luaToml(L *lua.LState) int {
	tree, err := toml.Load(L.ToString(1))
	if err != nil {
		L.RaiseError("Couldn't parse toml: %s", err)
		return 0
	}
	L.Push(luaDecodeValue(L, tree.ToMap()))
	return 1
}

// Converts decoded json/toml values into lua values. Anything unknown
// becomes nil. Originally from https://github.com/layeh/gopher-json
func luaDecodeValue(L *lua.LState, value interface{}) lua.LValue {
	switch converted := value.(type) {
	case bool:
		return lua.LBool(converted)
	case float64:
		return lua.LNumber(converted)
	case int64: // toml only
		return lua.LNumber(converted)
	case string:
		return lua.LString(converted)
	case json.Number:
		return lua.LString(converted)
	case []interface{}:
		arr := L.CreateTable(len(converted), 0)
		for _, item := range converted {
			arr.Append(luaDecodeValue(L, item))
		}
		return arr
	case []map[string]interface{}: // toml arrays of tables
		arr := L.CreateTable(len(converted), 0)
		for _, item := range converted {
			arr.Append(luaDecodeValue(L, item))
		}
		return arr
	case map[string]interface{}:
		tbl := L.CreateTable(0, len(converted))
		for key, item := range converted {
			tbl.RawSetH(lua.LString(key), luaDecodeValue(L, item))
		}
		return tbl
	}
	return lua.LNil
}

// Convert intel hex text into the raw binary. Also returns the start address
func luaHex2Bin(L *lua.LState) int {
	bin, address, err := HexToBin(strings.NewReader(L.ToString(1)))
	if err != nil {
		L.RaiseError("Couldn't convert hex to bin: %s", err)
		return 0
	}
	L.Push(lua.LString(string(bin)))
	L.Push(lua.LNumber(address))
	return 2
}

// Convert raw binary into intel hex text, at the optional load address
func luaBin2Hex(L *lua.LState) int {
	var buf bytes.Buffer
	if err := BinToHex([]byte(L.ToString(1)), uint32(L.OptInt64(2, 0)), &buf); err != nil {
		L.RaiseError("Couldn't convert bin to hex: %s", err)
		return 0
	}
	L.Push(lua.LString(buf.String()))
	return 1
}

// Read a whole file (relative to the script directory)
func luaFile(L *lua.LState, state *PacScriptState) int {
	filename := state.FilePath(L.ToString(1))
	raw, err := os.ReadFile(filename)
	if err != nil {
		L.RaiseError("Error reading file %s in lua script: %s", filename, err)
		return 0
	}
	log.Printf("Read %d bytes from file %s in lua script", len(raw), filename)
	L.Push(lua.LString(string(raw)))
	return 1
}

// Get basic info about the entries in a directory, in "filesystem" order
func luaListDir(L *lua.LState, state *PacScriptState) int {
	path := state.FilePath(L.ToString(1))
	entries, err := os.ReadDir(path)
	if err != nil {
		L.RaiseError("Couldn't read directory: %s", err)
		return 0
	}
	result := L.CreateTable(len(entries), 0)
	for _, entry := range entries {
		thispath := filepath.Join(path, entry.Name())
		fullpath, err := filepath.Abs(thispath)
		if err != nil {
			L.RaiseError("Couldn't get abs path of %s: %s", thispath, err)
			return 0
		}
		entrytable := L.CreateTable(0, 3)
		entrytable.RawSetString("name", lua.LString(entry.Name()))
		entrytable.RawSetString("path", lua.LString(fullpath))
		entrytable.RawSetString("is_directory", lua.LBool(entry.IsDir()))
		result.Append(entrytable)
	}
	L.Push(result)
	return 1
}

func setBasicLuaFunctions(L *lua.LState) {
	L.SetGlobal("hex", L.NewFunction(luaHex))
	L.SetGlobal("hex2bin", L.NewFunction(luaHex2Bin))
	L.SetGlobal("bin2hex", L.NewFunction(luaBin2Hex))
	L.SetGlobal("base64", L.NewFunction(luaBase64))
	L.SetGlobal("md5", L.NewFunction(luaMd5))
	L.SetGlobal("json", L.NewFunction(luaJson))
	L.SetGlobal("toml", L.NewFunction(luaToml))
	L.SetGlobal("bytes", L.NewFunction(luaBytes))
	L.SetGlobal("decode_name", L.NewFunction(luaDecodeName))
}
