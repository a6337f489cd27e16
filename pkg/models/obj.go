package models

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/taigrr/lumen/internal/logger"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/texture"
)

// ErrNoFaces is returned when a model file contains no triangles.
var ErrNoFaces = errors.New("model has no faces")

// LoadOBJ loads a Wavefront OBJ file and its MTL libraries. Texture paths
// are resolved relative to the OBJ file and registered in store.
func LoadOBJ(path string, store *texture.Store) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj: %w", err)
	}
	defer f.Close()

	obj, err := ParseOBJ(f, filepath.Dir(path), store)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return obj, nil
}

// objParser accumulates OBJ state. Mesh 0 collects faces without a
// material; mesh i+1 collects faces of the i-th declared material.
type objParser struct {
	dir   string
	store *texture.Store

	positions []math3d.Vec3
	normals   []math3d.Vec3
	uvs       []math3d.Vec2

	meshes     []*Mesh
	byMaterial map[string]int
	current    int
	group      string
}

// ParseOBJ parses OBJ data. dir is used to resolve mtllib and texture
// paths.
func ParseOBJ(r io.Reader, dir string, store *texture.Store) (*Object, error) {
	p := &objParser{
		dir:        dir,
		store:      store,
		meshes:     []*Mesh{{Material: DefaultMaterial()}},
		byMaterial: make(map[string]int),
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if err := p.parseLine(sc.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	return p.build()
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	case "v":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return fmt.Errorf("vertex: %w", err)
		}
		p.positions = append(p.positions, v)
	case "vn":
		v, err := parseVec3(fields[1:])
		if err != nil {
			return fmt.Errorf("normal: %w", err)
		}
		p.normals = append(p.normals, v)
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return fmt.Errorf("texcoord: %w", err)
		}
		p.uvs = append(p.uvs, math3d.V2(v[0], v[1]))
	case "f":
		return p.parseFace(fields[1:])
	case "o", "g":
		if len(fields) > 1 {
			p.group = strings.Join(fields[1:], " ")
		}
	case "usemtl":
		name := strings.Join(fields[1:], " ")
		idx, ok := p.byMaterial[name]
		if !ok {
			logger.Warn("unknown material, using default", zap.String("material", name))
			idx = 0
		}
		p.current = idx
	case "mtllib":
		for _, lib := range fields[1:] {
			p.loadMaterialLib(lib)
		}
	}
	return nil
}

func (p *objParser) parseFace(refs []string) error {
	if len(refs) < 3 {
		return fmt.Errorf("face with %d vertices", len(refs))
	}

	type corner struct {
		pos    math3d.Vec3
		normal math3d.Vec3
		uv     math3d.Vec2
	}
	corners := make([]corner, len(refs))
	for i, ref := range refs {
		parts := strings.Split(ref, "/")

		pi, err := resolveIndex(parts[0], len(p.positions))
		if err != nil {
			return fmt.Errorf("position index: %w", err)
		}
		corners[i].pos = p.positions[pi]

		if len(parts) > 1 && parts[1] != "" {
			ti, err := resolveIndex(parts[1], len(p.uvs))
			if err != nil {
				return fmt.Errorf("texcoord index: %w", err)
			}
			corners[i].uv = p.uvs[ti]
		}
		if len(parts) > 2 && parts[2] != "" {
			ni, err := resolveIndex(parts[2], len(p.normals))
			if err != nil {
				return fmt.Errorf("normal index: %w", err)
			}
			corners[i].normal = p.normals[ni]
		}
	}

	mesh := p.meshes[p.current]
	if mesh.Name == "" {
		mesh.Name = p.group
	}
	// Fan triangulation keeps the polygon's winding.
	for i := 1; i+1 < len(corners); i++ {
		a, b, c := corners[0], corners[i], corners[i+1]
		mesh.Faces = append(mesh.Faces, Face{
			Positions: [3]math3d.Vec3{a.pos, b.pos, c.pos},
			Normals:   [3]math3d.Vec3{a.normal, b.normal, c.normal},
			UVs:       [3]math3d.Vec2{a.uv, b.uv, c.uv},
		})
	}
	return nil
}

func (p *objParser) loadMaterialLib(name string) {
	path := filepath.Join(p.dir, filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("material library not found", zap.String("path", path), zap.Error(err))
		return
	}
	defer f.Close()

	materials, err := ParseMTL(f, p.dir, p.store)
	if err != nil {
		logger.Warn("material library unreadable", zap.String("path", path), zap.Error(err))
	}
	for _, m := range materials {
		if _, ok := p.byMaterial[m.Name]; ok {
			continue
		}
		p.byMaterial[m.Name] = len(p.meshes)
		p.meshes = append(p.meshes, &Mesh{Material: m})
	}
}

func (p *objParser) build() (*Object, error) {
	var children []*Object
	for _, m := range p.meshes {
		if len(m.Faces) == 0 {
			continue
		}
		m.FillMissingNormals()
		m.CalculateBounds()
		logger.Debug("mesh loaded",
			zap.String("mesh", m.Name),
			zap.String("material", m.Material.Name),
			zap.Int("faces", len(m.Faces)))
		children = append(children, NewLeaf(m))
	}

	switch len(children) {
	case 0:
		return nil, ErrNoFaces
	case 1:
		return children[0], nil
	default:
		return NewGroup(children...), nil
	}
}

// ParseMTL parses a material library. Materials parsed before an error are
// returned alongside it.
func ParseMTL(r io.Reader, dir string, store *texture.Store) ([]*Material, error) {
	var (
		materials []*Material
		cur       *Material
	)

	texturePath := func(args []string) string {
		// Options such as "-bm 0.5" precede the file name.
		name := strings.ReplaceAll(args[len(args)-1], "\\", "/")
		return filepath.Join(dir, filepath.FromSlash(name))
	}

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if fields[0] == "newmtl" {
			cur = DefaultMaterial()
			cur.Name = strings.Join(fields[1:], " ")
			materials = append(materials, cur)
			continue
		}
		if cur == nil || len(fields) < 2 {
			continue
		}

		var err error
		args := fields[1:]
		switch strings.ToLower(fields[0]) {
		case "ka":
			cur.Ambient, err = parseVec3(args)
		case "kd":
			cur.Diffuse, err = parseVec3(args)
		case "ks":
			cur.Specular, err = parseVec3(args)
		case "ns":
			var ns float64
			ns, err = strconv.ParseFloat(args[0], 64)
			cur.Shininess = int(ns)
		case "map_ka":
			cur.AmbientMap = store.LoadOrGet(texturePath(args), texture.ModeColor).ID()
		case "map_kd":
			cur.DiffuseMap = store.LoadOrGet(texturePath(args), texture.ModeColor).ID()
		case "map_ks":
			cur.SpecularMap = store.LoadOrGet(texturePath(args), texture.ModeLinear).ID()
		case "map_bump", "bump", "norm", "map_kn":
			cur.NormalMap = store.LoadOrGet(texturePath(args), texture.ModeNormal).ID()
		}
		if err != nil {
			return materials, fmt.Errorf("line %d: %s: %w", line, fields[0], err)
		}
	}
	if err := sc.Err(); err != nil {
		return materials, fmt.Errorf("read mtl: %w", err)
	}
	return materials, nil
}

// resolveIndex converts a 1-based (or negative, relative) OBJ index.
func resolveIndex(s string, n int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if i < 0 {
		i = n + i
	} else {
		i--
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("index %s out of range (have %d)", s, n)
	}
	return i, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("want %d values, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func parseVec3(fields []string) (math3d.Vec3, error) {
	v, err := parseFloats(fields, 3)
	if err != nil {
		return math3d.Vec3{}, err
	}
	return math3d.V3(v[0], v[1], v[2]), nil
}
