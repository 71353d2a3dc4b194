// ply.go parses PLY meshes in ascii and binary_little_endian form. The
// header is parsed generically (per-element property lists with types) so
// vertex records may carry extra properties such as normals or colours;
// only x, y, z and the face vertex index list are kept.

package mesh

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/maharshi-gor/tractome/internal/mat"
)

type plyFormat int

const (
	plyAscii plyFormat = iota
	plyBinaryLE
)

type plyProperty struct {
	name      string
	typ       string // scalar type, or element type for lists
	list      bool
	countType string
}

type plyElement struct {
	name       string
	count      int
	properties []plyProperty
}

// maxPLYListLen bounds list counts read from binary element data. A face
// list longer than this is corruption, not geometry.
const maxPLYListLen = 1 << 20

var plyTypeSizes = map[string]int{
	"char": 1, "int8": 1, "uchar": 1, "uint8": 1,
	"short": 2, "int16": 2, "ushort": 2, "uint16": 2,
	"int": 4, "int32": 4, "uint": 4, "uint32": 4,
	"float": 4, "float32": 4,
	"double": 8, "float64": 8,
}

func loadPLY(r io.Reader) (*Mesh, error) {
	br := bufio.NewReader(r)

	format, elements, err := readPLYHeader(br)
	if err != nil {
		return nil, err
	}

	vertices := mat.NewDense(0, 0, nil)
	var faces [][3]int
	for _, elem := range elements {
		switch elem.name {
		case "vertex":
			vertices, err = readPLYVertices(br, format, elem)
		case "face":
			faces, err = readPLYFaces(br, format, elem)
		default:
			err = skipPLYElement(br, format, elem)
		}
		if err != nil {
			return nil, err
		}
	}

	for _, face := range faces {
		if err := checkFace(face, vertices.Rows()); err != nil {
			return nil, err
		}
	}
	if vertices.Rows() == 0 {
		return nil, fmt.Errorf("%w: no vertices", ErrInvalidFormat)
	}
	return &Mesh{Vertices: vertices, Faces: faces}, nil
}

func readPLYHeader(br *bufio.Reader) (plyFormat, []plyElement, error) {
	line, err := br.ReadString('\n')
	if err != nil || strings.TrimSpace(line) != "ply" {
		return 0, nil, fmt.Errorf("%w: missing ply signature", ErrInvalidFormat)
	}

	format := plyAscii
	sawFormat := false
	var elements []plyElement
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return 0, nil, fmt.Errorf("%w: header not terminated", ErrInvalidFormat)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "comment":
			continue
		case "format":
			if len(fields) < 2 {
				return 0, nil, fmt.Errorf("%w: malformed format line", ErrInvalidFormat)
			}
			switch fields[1] {
			case "ascii":
				format = plyAscii
			case "binary_little_endian":
				format = plyBinaryLE
			default:
				return 0, nil, fmt.Errorf("%w: unsupported format %q", ErrInvalidFormat, fields[1])
			}
			sawFormat = true
		case "element":
			if len(fields) != 3 {
				return 0, nil, fmt.Errorf("%w: malformed element line", ErrInvalidFormat)
			}
			count, err := strconv.Atoi(fields[2])
			if err != nil || count < 0 {
				return 0, nil, fmt.Errorf("%w: bad element count %q", ErrInvalidFormat, fields[2])
			}
			elements = append(elements, plyElement{name: fields[1], count: count})
		case "property":
			if len(elements) == 0 {
				return 0, nil, fmt.Errorf("%w: property before element", ErrInvalidFormat)
			}
			elem := &elements[len(elements)-1]
			switch {
			case len(fields) == 5 && fields[1] == "list":
				elem.properties = append(elem.properties, plyProperty{
					name: fields[4], typ: fields[3], list: true, countType: fields[2],
				})
			case len(fields) == 3:
				elem.properties = append(elem.properties, plyProperty{name: fields[2], typ: fields[1]})
			default:
				return 0, nil, fmt.Errorf("%w: malformed property line", ErrInvalidFormat)
			}
		case "end_header":
			if !sawFormat {
				return 0, nil, fmt.Errorf("%w: header has no format line", ErrInvalidFormat)
			}
			return format, elements, nil
		}
	}
}

func readPLYVertices(br *bufio.Reader, format plyFormat, elem plyElement) (*mat.Dense, error) {
	xi, yi, zi := -1, -1, -1
	for i, p := range elem.properties {
		if p.list {
			// Coordinates must be scalars; a list-typed x/y/z is malformed.
			continue
		}
		switch p.name {
		case "x":
			xi = i
		case "y":
			yi = i
		case "z":
			zi = i
		}
	}
	if xi < 0 || yi < 0 || zi < 0 {
		return nil, fmt.Errorf("%w: vertex element lacks x/y/z properties", ErrInvalidFormat)
	}

	vertices := mat.NewDense(0, 0, nil)
	for n := 0; n < elem.count; n++ {
		values, err := readPLYRecord(br, format, elem.properties)
		if err != nil {
			return nil, err
		}
		vertices.AppendRow([]float64{values[xi][0], values[yi][0], values[zi][0]})
	}
	return vertices, nil
}

func readPLYFaces(br *bufio.Reader, format plyFormat, elem plyElement) ([][3]int, error) {
	li := -1
	for i, p := range elem.properties {
		if p.list && (p.name == "vertex_indices" || p.name == "vertex_index") {
			li = i
		}
	}
	if li < 0 {
		return nil, fmt.Errorf("%w: face element lacks a vertex index list", ErrInvalidFormat)
	}

	var faces [][3]int
	for n := 0; n < elem.count; n++ {
		values, err := readPLYRecord(br, format, elem.properties)
		if err != nil {
			return nil, err
		}
		polygon := make([]int, len(values[li]))
		for i, v := range values[li] {
			polygon[i] = int(v)
		}
		if len(polygon) < 3 {
			return nil, fmt.Errorf("%w: face with %d vertices", ErrInvalidFormat, len(polygon))
		}
		faces = triangulate(faces, polygon)
	}
	return faces, nil
}

func skipPLYElement(br *bufio.Reader, format plyFormat, elem plyElement) error {
	for n := 0; n < elem.count; n++ {
		if _, err := readPLYRecord(br, format, elem.properties); err != nil {
			return err
		}
	}
	return nil
}

// readPLYRecord reads one element record, returning a value slice per
// property (scalars become one-element slices).
func readPLYRecord(br *bufio.Reader, format plyFormat, props []plyProperty) ([][]float64, error) {
	if format == plyAscii {
		return readPLYRecordAscii(br, props)
	}
	return readPLYRecordBinary(br, props)
}

func readPLYRecordAscii(br *bufio.Reader, props []plyProperty) ([][]float64, error) {
	line, err := br.ReadString('\n')
	if err != nil && (err != io.EOF || strings.TrimSpace(line) == "") {
		return nil, fmt.Errorf("%w: truncated element data", ErrInvalidFormat)
	}
	fields := strings.Fields(line)

	out := make([][]float64, len(props))
	pos := 0
	next := func() (float64, error) {
		if pos >= len(fields) {
			return 0, fmt.Errorf("%w: short element record", ErrInvalidFormat)
		}
		v, err := strconv.ParseFloat(fields[pos], 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
		}
		pos++
		return v, nil
	}

	for i, p := range props {
		if p.list {
			count, err := next()
			if err != nil {
				return nil, err
			}
			n, err := plyListLen(count, len(fields)-pos)
			if err != nil {
				return nil, err
			}
			values := make([]float64, n)
			for j := range values {
				if values[j], err = next(); err != nil {
					return nil, err
				}
			}
			out[i] = values
			continue
		}
		v, err := next()
		if err != nil {
			return nil, err
		}
		out[i] = []float64{v}
	}
	return out, nil
}

func readPLYRecordBinary(br *bufio.Reader, props []plyProperty) ([][]float64, error) {
	out := make([][]float64, len(props))
	for i, p := range props {
		if p.list {
			count, err := readPLYScalar(br, p.countType)
			if err != nil {
				return nil, err
			}
			n, err := plyListLen(count, maxPLYListLen)
			if err != nil {
				return nil, err
			}
			values := make([]float64, n)
			for j := range values {
				if values[j], err = readPLYScalar(br, p.typ); err != nil {
					return nil, err
				}
			}
			out[i] = values
			continue
		}
		v, err := readPLYScalar(br, p.typ)
		if err != nil {
			return nil, err
		}
		out[i] = []float64{v}
	}
	return out, nil
}

// plyListLen validates a list count read from element data before it is
// used as an allocation length.
func plyListLen(count float64, bound int) (int, error) {
	n := int(count)
	if float64(n) != count || n < 0 || n > bound {
		return 0, fmt.Errorf("%w: bad list count %g", ErrInvalidFormat, count)
	}
	return n, nil
}

func readPLYScalar(br *bufio.Reader, typ string) (float64, error) {
	size, ok := plyTypeSizes[typ]
	if !ok {
		return 0, fmt.Errorf("%w: unknown property type %q", ErrInvalidFormat, typ)
	}
	var buf [8]byte
	if _, err := io.ReadFull(br, buf[:size]); err != nil {
		return 0, fmt.Errorf("%w: truncated element data", ErrInvalidFormat)
	}

	le := binary.LittleEndian
	switch typ {
	case "char", "int8":
		return float64(int8(buf[0])), nil
	case "uchar", "uint8":
		return float64(buf[0]), nil
	case "short", "int16":
		return float64(int16(le.Uint16(buf[:]))), nil
	case "ushort", "uint16":
		return float64(le.Uint16(buf[:])), nil
	case "int", "int32":
		return float64(int32(le.Uint32(buf[:]))), nil
	case "uint", "uint32":
		return float64(le.Uint32(buf[:])), nil
	case "float", "float32":
		return float64(math.Float32frombits(le.Uint32(buf[:]))), nil
	case "double", "float64":
		return math.Float64frombits(le.Uint64(buf[:])), nil
	}
	return 0, fmt.Errorf("%w: unknown property type %q", ErrInvalidFormat, typ)
}
