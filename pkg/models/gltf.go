package models

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/taigrr/lumen/internal/logger"
	"github.com/taigrr/lumen/pkg/math3d"
	"github.com/taigrr/lumen/pkg/texture"
)

// gltfLoader converts a glTF document into an object tree. Meshes and
// materials are converted once and shared between nodes that reference
// them.
type gltfLoader struct {
	doc   *gltf.Document
	path  string
	store *texture.Store

	meshes    map[int][]*Mesh
	materials map[int]*Material
	images    map[imageKey]texture.ID
}

type imageKey struct {
	index int
	mode  texture.Mode
}

// LoadGLTF loads a glTF (.gltf) or binary glTF (.glb) file. Images are
// registered in store; nodes become objects with their TRS transforms.
func LoadGLTF(path string, store *texture.Store) (*Object, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}

	l := &gltfLoader{
		doc:       doc,
		path:      path,
		store:     store,
		meshes:    make(map[int][]*Mesh),
		materials: make(map[int]*Material),
		images:    make(map[imageKey]texture.ID),
	}
	return l.load()
}

func (l *gltfLoader) load() (*Object, error) {
	var roots []int
	switch {
	case l.doc.Scene != nil && *l.doc.Scene < len(l.doc.Scenes):
		roots = l.doc.Scenes[*l.doc.Scene].Nodes
	case len(l.doc.Scenes) > 0:
		roots = l.doc.Scenes[0].Nodes
	}

	var children []*Object
	if len(roots) == 0 {
		// No scene graph: place every mesh at the origin.
		for i := range l.doc.Meshes {
			objs, err := l.meshObjects(i)
			if err != nil {
				return nil, err
			}
			children = append(children, objs...)
		}
	} else {
		visiting := make(map[int]bool)
		for _, n := range roots {
			obj, err := l.node(n, visiting)
			if err != nil {
				return nil, err
			}
			children = append(children, obj)
		}
	}

	root := NewGroup(children...)
	if root.TriangleCount() == 0 {
		return nil, ErrNoFaces
	}
	return root, nil
}

func (l *gltfLoader) node(idx int, visiting map[int]bool) (*Object, error) {
	if idx < 0 || idx >= len(l.doc.Nodes) {
		return nil, fmt.Errorf("node %d out of range", idx)
	}
	if visiting[idx] {
		return nil, fmt.Errorf("node %d: cycle in node hierarchy", idx)
	}
	visiting[idx] = true
	defer delete(visiting, idx)

	n := l.doc.Nodes[idx]

	var children []*Object
	if n.Mesh != nil {
		objs, err := l.meshObjects(*n.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Name, err)
		}
		children = append(children, objs...)
	}
	for _, c := range n.Children {
		child, err := l.node(c, visiting)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}

	var obj *Object
	if len(children) == 1 && len(n.Children) == 0 {
		obj = children[0]
	} else {
		obj = NewGroup(children...)
	}
	obj.Position, obj.Rotation, obj.Scale = nodeTransform(n)
	return obj, nil
}

// nodeTransform returns the node's local translation, Euler rotation and
// scale. Zero values are treated as the glTF defaults.
func nodeTransform(n *gltf.Node) (pos, rot, scale math3d.Vec3) {
	var zero [16]float64
	m := n.Matrix
	if m != zero && m != [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1} {
		mat := math3d.Mat4(m)
		pos = mat.Translation()
		basis := mat.Mat3()
		sx := math3d.V3(basis[0], basis[1], basis[2]).Len()
		sy := math3d.V3(basis[3], basis[4], basis[5]).Len()
		sz := math3d.V3(basis[6], basis[7], basis[8]).Len()
		scale = math3d.V3(sx, sy, sz)
		if sx == 0 || sy == 0 || sz == 0 {
			return pos, rot, scale
		}
		r := math3d.Mat3FromColumns(
			math3d.V3(basis[0], basis[1], basis[2]).Div(sx),
			math3d.V3(basis[3], basis[4], basis[5]).Div(sy),
			math3d.V3(basis[6], basis[7], basis[8]).Div(sz),
		)
		return pos, r.Euler(), scale
	}

	pos = math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2])
	scale = math3d.V3(n.Scale[0], n.Scale[1], n.Scale[2])
	if scale.IsZero() {
		scale = math3d.Splat3(1)
	}
	q := n.Rotation
	if q != [4]float64{} {
		rot = math3d.QuatToMat3(q[0], q[1], q[2], q[3]).Euler()
	}
	return pos, rot, scale
}

// meshObjects returns one leaf per triangle primitive of mesh idx.
func (l *gltfLoader) meshObjects(idx int) ([]*Object, error) {
	meshes, err := l.mesh(idx)
	if err != nil {
		return nil, err
	}
	objs := make([]*Object, 0, len(meshes))
	for _, m := range meshes {
		objs = append(objs, NewLeaf(m))
	}
	return objs, nil
}

func (l *gltfLoader) mesh(idx int) ([]*Mesh, error) {
	if meshes, ok := l.meshes[idx]; ok {
		return meshes, nil
	}
	if idx < 0 || idx >= len(l.doc.Meshes) {
		return nil, fmt.Errorf("mesh %d out of range", idx)
	}

	m := l.doc.Meshes[idx]
	var meshes []*Mesh
	for pi, prim := range m.Primitives {
		if prim.Mode != gltf.PrimitiveTriangles {
			// Skip non-triangle primitives (lines, points, etc)
			continue
		}
		faces, err := l.primitiveFaces(prim)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, pi, err)
		}
		if len(faces) == 0 {
			continue
		}

		mat := DefaultMaterial()
		if prim.Material != nil {
			mat = l.material(*prim.Material)
		}
		mesh := NewMesh(fmt.Sprintf("%s/%d", m.Name, pi), faces, mat)
		mesh.FillMissingNormals()
		logger.Debug("mesh loaded",
			zap.String("mesh", mesh.Name),
			zap.String("material", mat.Name),
			zap.Int("faces", len(faces)))
		meshes = append(meshes, mesh)
	}

	l.meshes[idx] = meshes
	return meshes, nil
}

// primitiveFaces builds faces from a triangle primitive. glTF front faces
// are counter-clockwise, which is also the rasterizer's convention.
func (l *gltfLoader) primitiveFaces(prim *gltf.Primitive) ([]Face, error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	positions, err := readVec3Accessor(l.doc, posIdx)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var normals []math3d.Vec3
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = readVec3Accessor(l.doc, normIdx)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
	}

	var uvs []math3d.Vec2
	if uvIdx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err = readVec2Accessor(l.doc, uvIdx)
		if err != nil {
			return nil, fmt.Errorf("read uvs: %w", err)
		}
	}

	var indices []int
	if prim.Indices != nil {
		indices, err = readIndices(l.doc, *prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
	} else {
		indices = make([]int, len(positions))
		for i := range indices {
			indices[i] = i
		}
	}

	faces := make([]Face, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		var f Face
		for k := range 3 {
			vi := indices[i+k]
			if vi < 0 || vi >= len(positions) {
				return nil, fmt.Errorf("index %d out of range (have %d vertices)", vi, len(positions))
			}
			f.Positions[k] = positions[vi]
			if vi < len(normals) {
				f.Normals[k] = normals[vi]
			}
			if vi < len(uvs) {
				f.UVs[k] = bottomUpUV(uvs[vi])
			}
		}
		faces = append(faces, f)
	}
	return faces, nil
}

// bottomUpUV converts a glTF texture coordinate, whose v runs down from
// the top of the image, to the sampler's bottom-up convention.
func bottomUpUV(uv math3d.Vec2) math3d.Vec2 {
	return math3d.V2(uv.X, 1-uv.Y)
}

// material converts a PBR material. The metallic-roughness image becomes
// the packed specular map: its G and B channels hold roughness and
// metalness, and R is read as ambient occlusion.
func (l *gltfLoader) material(idx int) *Material {
	if m, ok := l.materials[idx]; ok {
		return m
	}
	mat := DefaultMaterial()
	l.materials[idx] = mat
	if idx < 0 || idx >= len(l.doc.Materials) {
		return mat
	}

	src := l.doc.Materials[idx]
	mat.Name = src.Name

	if pbr := src.PBRMetallicRoughness; pbr != nil {
		if f := pbr.BaseColorFactor; f != nil {
			mat.Diffuse = math3d.V3(f[0], f[1], f[2])
		}
		rough := 1.0
		if pbr.RoughnessFactor != nil {
			rough = *pbr.RoughnessFactor
		}
		rough = rough * rough
		mat.Shininess = int(math.Min(1024, 1/(1e-6+rough*rough)))
		if pbr.BaseColorTexture != nil {
			mat.DiffuseMap = l.textureID(pbr.BaseColorTexture.Index, texture.ModeColor)
		}
		if pbr.MetallicRoughnessTexture != nil {
			mat.SpecularMap = l.textureID(pbr.MetallicRoughnessTexture.Index, texture.ModeLinear)
		}
	}
	if nt := src.NormalTexture; nt != nil && nt.Index != nil {
		mat.NormalMap = l.textureID(*nt.Index, texture.ModeNormal)
	}
	return mat
}

// textureID resolves a glTF texture index to a store handle.
func (l *gltfLoader) textureID(texIdx int, mode texture.Mode) texture.ID {
	if texIdx < 0 || texIdx >= len(l.doc.Textures) || l.doc.Textures[texIdx].Source == nil {
		return 0
	}
	imgIdx := *l.doc.Textures[texIdx].Source
	key := imageKey{imgIdx, mode}
	if id, ok := l.images[key]; ok {
		return id
	}

	id := l.image(imgIdx, mode)
	l.images[key] = id
	return id
}

func (l *gltfLoader) image(idx int, mode texture.Mode) texture.ID {
	name := fmt.Sprintf("%s#image%d/%s", l.path, idx, mode)
	if idx < 0 || idx >= len(l.doc.Images) {
		return l.store.LoadOrGet(name, mode).ID()
	}

	img := l.doc.Images[idx]
	if img.BufferView == nil {
		if img.URI == "" || img.IsEmbeddedResource() {
			// Data URIs are not decoded; LoadOrGet substitutes a placeholder.
			return l.store.LoadOrGet(name, mode).ID()
		}
		return l.store.LoadOrGet(filepath.Join(filepath.Dir(l.path), filepath.FromSlash(img.URI)), mode).ID()
	}

	data, err := bufferViewData(l.doc, *img.BufferView)
	if err == nil {
		var decoded image.Image
		decoded, _, err = image.Decode(bytes.NewReader(data))
		if err == nil {
			return l.store.Add(name, decoded, mode).ID()
		}
	}
	logger.Warn("embedded image unreadable", zap.String("image", name), zap.Error(err))
	return l.store.LoadOrGet(name, mode).ID()
}

// readVec3Accessor reads Vec3 data from a GLTF accessor.
func readVec3Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec3, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec3, 3)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec3, len(floats)/3)
	for i := range result {
		result[i] = math3d.V3(floats[i*3], floats[i*3+1], floats[i*3+2])
	}
	return result, nil
}

// readVec2Accessor reads Vec2 data from a GLTF accessor.
func readVec2Accessor(doc *gltf.Document, accessorIdx int) ([]math3d.Vec2, error) {
	floats, err := readFloatAccessor(doc, accessorIdx, gltf.AccessorVec2, 2)
	if err != nil {
		return nil, err
	}
	result := make([]math3d.Vec2, len(floats)/2)
	for i := range result {
		result[i] = math3d.V2(floats[i*2], floats[i*2+1])
	}
	return result, nil
}

func readFloatAccessor(doc *gltf.Document, accessorIdx int, typ gltf.AccessorType, n int) ([]float64, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]
	if accessor.Type != typ {
		return nil, fmt.Errorf("expected %v, got %v", typ, accessor.Type)
	}
	if accessor.ComponentType != gltf.ComponentFloat {
		return nil, fmt.Errorf("unsupported component type %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, n*4)
	if err != nil {
		return nil, err
	}

	out := make([]float64, accessor.Count*n)
	for i := range accessor.Count {
		offset := i * stride
		if offset+n*4 > len(data) {
			return nil, fmt.Errorf("accessor %d overruns its buffer", accessorIdx)
		}
		for j := range n {
			bits := binary.LittleEndian.Uint32(data[offset+j*4:])
			out[i*n+j] = float64(math.Float32frombits(bits))
		}
	}
	return out, nil
}

// readIndices reads index data from a GLTF accessor.
func readIndices(doc *gltf.Document, accessorIdx int) ([]int, error) {
	if accessorIdx < 0 || accessorIdx >= len(doc.Accessors) {
		return nil, fmt.Errorf("accessor %d out of range", accessorIdx)
	}
	accessor := doc.Accessors[accessorIdx]

	var size int
	switch accessor.ComponentType {
	case gltf.ComponentUbyte:
		size = 1
	case gltf.ComponentUshort:
		size = 2
	case gltf.ComponentUint:
		size = 4
	default:
		return nil, fmt.Errorf("unexpected index type: %v", accessor.ComponentType)
	}

	data, stride, err := accessorBytes(doc, accessor, size)
	if err != nil {
		return nil, err
	}

	result := make([]int, accessor.Count)
	for i := range accessor.Count {
		offset := i * stride
		if offset+size > len(data) {
			return nil, fmt.Errorf("accessor %d overruns its buffer", accessorIdx)
		}
		switch size {
		case 1:
			result[i] = int(data[offset])
		case 2:
			result[i] = int(binary.LittleEndian.Uint16(data[offset:]))
		default:
			result[i] = int(binary.LittleEndian.Uint32(data[offset:]))
		}
	}
	return result, nil
}

// accessorBytes returns the accessor's bytes starting at its first element
// and the stride between elements.
func accessorBytes(doc *gltf.Document, accessor *gltf.Accessor, elemSize int) ([]byte, int, error) {
	if accessor.BufferView == nil {
		return nil, 0, fmt.Errorf("accessor has no buffer view")
	}
	data, err := bufferViewData(doc, *accessor.BufferView)
	if err != nil {
		return nil, 0, err
	}
	if accessor.ByteOffset > len(data) {
		return nil, 0, fmt.Errorf("accessor offset %d beyond buffer view", accessor.ByteOffset)
	}

	stride := doc.BufferViews[*accessor.BufferView].ByteStride
	if stride == 0 {
		stride = elemSize
	}
	return data[accessor.ByteOffset:], stride, nil
}

// bufferViewData returns the bytes covered by a buffer view. gltf.Open
// loads external and embedded buffers alike into Buffer.Data.
func bufferViewData(doc *gltf.Document, viewIdx int) ([]byte, error) {
	if viewIdx < 0 || viewIdx >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", viewIdx)
	}
	bv := doc.BufferViews[viewIdx]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer].Data
	if buf == nil {
		return nil, fmt.Errorf("buffer has no data")
	}

	end := bv.ByteOffset + bv.ByteLength
	if end > len(buf) {
		return nil, fmt.Errorf("buffer view %d overruns buffer", viewIdx)
	}
	return buf[bv.ByteOffset:end], nil
}
