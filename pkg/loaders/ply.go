package loaders

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/df07/go-interactive-raytracer/pkg/core"
)

// PLYProperty represents a property definition in the PLY header
type PLYProperty struct {
	Name     string
	Type     string
	IsList   bool
	ListType string // For list properties, the type of the count
}

// PLYElement is one element block (vertex, face, or anything else)
type PLYElement struct {
	Name       string
	Count      int
	Properties []PLYProperty
}

// PLYHeader represents the parsed header information from a PLY file
type PLYHeader struct {
	Format   string // "binary_little_endian", "binary_big_endian", or "ascii"
	Elements []PLYElement
}

// LoadPLY loads vertex positions and faces from a PLY file
func LoadPLY(filename string) (*MeshData, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open PLY file: %w", err)
	}
	defer file.Close()

	mesh, err := ParsePLY(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return mesh, nil
}

// ParsePLY reads a PLY stream in any of the three standard encodings.
// Only vertex x/y/z and face vertex_indices are kept; polygons are
// fan-triangulated.
func ParsePLY(r io.Reader) (*MeshData, error) {
	reader := bufio.NewReader(r)

	header, err := parsePLYHeader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PLY header: %w", err)
	}

	var values plyValueReader
	switch header.Format {
	case "ascii":
		values = &asciiValues{scanner: newWordScanner(reader)}
	case "binary_little_endian":
		values = &binaryValues{reader: reader, order: binary.LittleEndian}
	case "binary_big_endian":
		values = &binaryValues{reader: reader, order: binary.BigEndian}
	default:
		return nil, fmt.Errorf("unsupported PLY format: %s", header.Format)
	}

	mesh := &MeshData{}
	for _, element := range header.Elements {
		for i := 0; i < element.Count; i++ {
			if err := readPLYElement(values, element, mesh); err != nil {
				return nil, fmt.Errorf("failed to read %s %d: %w", element.Name, i, err)
			}
		}
	}

	for _, idx := range mesh.Faces {
		if idx < 0 || idx >= len(mesh.Vertices) {
			return nil, fmt.Errorf("face index %d out of range (%d vertices)", idx, len(mesh.Vertices))
		}
	}
	return mesh, nil
}

func parsePLYHeader(reader *bufio.Reader) (*PLYHeader, error) {
	header := &PLYHeader{}
	first := true

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("unexpected end of header: %w", err)
		}
		parts := strings.Fields(line)
		if first {
			if len(parts) == 0 || parts[0] != "ply" {
				return nil, fmt.Errorf("missing ply magic")
			}
			first = false
			continue
		}
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "end_header":
			return header, nil
		case "format":
			if len(parts) < 2 {
				return nil, fmt.Errorf("invalid format line")
			}
			header.Format = parts[1]
		case "element":
			if len(parts) < 3 {
				return nil, fmt.Errorf("invalid element line")
			}
			count, err := strconv.Atoi(parts[2])
			if err != nil || count < 0 {
				return nil, fmt.Errorf("invalid element count: %s", parts[2])
			}
			header.Elements = append(header.Elements, PLYElement{Name: parts[1], Count: count})
		case "property":
			if len(header.Elements) == 0 {
				return nil, fmt.Errorf("property before element")
			}
			prop, err := parsePLYProperty(parts[1:])
			if err != nil {
				return nil, err
			}
			current := &header.Elements[len(header.Elements)-1]
			current.Properties = append(current.Properties, prop)
		}
	}
}

func parsePLYProperty(parts []string) (PLYProperty, error) {
	if len(parts) >= 4 && parts[0] == "list" {
		return PLYProperty{Name: parts[3], Type: parts[2], IsList: true, ListType: parts[1]}, nil
	}
	if len(parts) >= 2 {
		return PLYProperty{Name: parts[1], Type: parts[0]}, nil
	}
	return PLYProperty{}, fmt.Errorf("invalid property definition: %v", parts)
}

func readPLYElement(values plyValueReader, element PLYElement, mesh *MeshData) error {
	var position [3]float64
	for _, prop := range element.Properties {
		if prop.IsList {
			count, err := values.next(prop.ListType)
			if err != nil {
				return err
			}
			indices := make([]int, int(count))
			for i := range indices {
				v, err := values.next(prop.Type)
				if err != nil {
					return err
				}
				indices[i] = int(v)
			}
			if element.Name == "face" && (prop.Name == "vertex_indices" || prop.Name == "vertex_index") {
				for i := 1; i+1 < len(indices); i++ {
					mesh.Faces = append(mesh.Faces, indices[0], indices[i], indices[i+1])
				}
			}
			continue
		}

		v, err := values.next(prop.Type)
		if err != nil {
			return err
		}
		if element.Name == "vertex" {
			switch prop.Name {
			case "x":
				position[0] = v
			case "y":
				position[1] = v
			case "z":
				position[2] = v
			}
		}
	}

	if element.Name == "vertex" {
		mesh.Vertices = append(mesh.Vertices, core.NewVec3(position[0], position[1], position[2]))
	}
	return nil
}

// plyValueReader yields successive scalar values regardless of encoding
type plyValueReader interface {
	next(dataType string) (float64, error)
}

type binaryValues struct {
	reader io.Reader
	order  binary.ByteOrder
	buf    [8]byte
}

func (b *binaryValues) next(dataType string) (float64, error) {
	size := typeSize(dataType)
	if size == 0 {
		return 0, fmt.Errorf("unknown PLY type %q", dataType)
	}
	data := b.buf[:size]
	if _, err := io.ReadFull(b.reader, data); err != nil {
		return 0, err
	}

	switch dataType {
	case "char", "int8":
		return float64(int8(data[0])), nil
	case "uchar", "uint8":
		return float64(data[0]), nil
	case "short", "int16":
		return float64(int16(b.order.Uint16(data))), nil
	case "ushort", "uint16":
		return float64(b.order.Uint16(data)), nil
	case "int", "int32":
		return float64(int32(b.order.Uint32(data))), nil
	case "uint", "uint32":
		return float64(b.order.Uint32(data)), nil
	case "float", "float32":
		return float64(math.Float32frombits(b.order.Uint32(data))), nil
	default: // double, float64
		return math.Float64frombits(b.order.Uint64(data)), nil
	}
}

type asciiValues struct {
	scanner *bufio.Scanner
}

func newWordScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	return scanner
}

func (a *asciiValues) next(dataType string) (float64, error) {
	if !a.scanner.Scan() {
		if err := a.scanner.Err(); err != nil {
			return 0, err
		}
		return 0, io.ErrUnexpectedEOF
	}
	return strconv.ParseFloat(a.scanner.Text(), 64)
}

func typeSize(dataType string) int {
	switch dataType {
	case "char", "uchar", "int8", "uint8":
		return 1
	case "short", "ushort", "int16", "uint16":
		return 2
	case "int", "uint", "int32", "uint32", "float", "float32":
		return 4
	case "double", "float64":
		return 8
	default:
		return 0
	}
}
