package glgfx

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
)

const vertexStride = int32(unsafe.Sizeof(gfx.Vertex{}))

// mesh is a VAO with its vertex and optional index buffer.
type mesh struct {
	vao, vbo, ebo uint32
	vertexCount   int32
	indexCount    int32
}

// UploadMesh creates GPU buffers for the vertices and indices.
// Attribute locations: 0 position, 1 normal, 2 texcoord, 3 colour.
func (c *Context) UploadMesh(vertices []gfx.Vertex, indices []uint32) (gfx.Mesh, error) {
	if len(vertices) == 0 {
		return 0, fmt.Errorf("mesh has no vertices")
	}

	m := &mesh{vertexCount: int32(len(vertices)), indexCount: int32(len(indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(vertexStride), unsafe.Pointer(&vertices[0]), gl.DYNAMIC_DRAW)

	if len(indices) > 0 {
		gl.GenBuffers(1, &m.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, unsafe.Pointer(&indices[0]), gl.STATIC_DRAW)
	}

	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, vertexStride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, vertexStride, 12)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, vertexStride, 24)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(3, 4, gl.FLOAT, false, vertexStride, 32)
	gl.EnableVertexAttribArray(3)

	gl.BindVertexArray(0)

	id := gfx.Mesh(m.vao)
	c.meshes[id] = m
	return id, nil
}

// UpdateMesh rewrites the vertex buffer. The vertex count may shrink but not
// grow past the uploaded size.
func (c *Context) UpdateMesh(id gfx.Mesh, vertices []gfx.Vertex) {
	m, ok := c.meshes[id]
	if !ok || len(vertices) == 0 {
		return
	}
	n := int32(len(vertices))
	if n > m.vertexCount {
		n = m.vertexCount
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, int(n*vertexStride), unsafe.Pointer(&vertices[0]))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// DrawMesh implements gfx.Context.
func (c *Context) DrawMesh(id gfx.Mesh, prim gfx.Primitive) {
	m, ok := c.meshes[id]
	if !ok {
		return
	}
	if m.indexCount > 0 {
		c.draw(m, prim, int(m.indexCount))
		return
	}
	c.draw(m, prim, int(m.vertexCount))
}

// DrawMeshRange draws the first count vertices (or indices).
func (c *Context) DrawMeshRange(id gfx.Mesh, prim gfx.Primitive, count int) {
	m, ok := c.meshes[id]
	if !ok || count <= 0 {
		return
	}
	c.draw(m, prim, count)
}

func (c *Context) draw(m *mesh, prim gfx.Primitive, count int) {
	mode := primitiveMode(prim)
	gl.BindVertexArray(m.vao)
	if m.indexCount > 0 {
		gl.DrawElements(mode, int32(count), gl.UNSIGNED_INT, nil)
	} else {
		gl.DrawArrays(mode, 0, int32(count))
	}
	gl.BindVertexArray(0)
}

func primitiveMode(p gfx.Primitive) uint32 {
	switch p {
	case gfx.Lines:
		return gl.LINES
	case gfx.Points:
		return gl.POINTS
	case gfx.TriangleStrip:
		return gl.TRIANGLE_STRIP
	}
	return gl.TRIANGLES
}

// DeleteMesh implements gfx.Context.
func (c *Context) DeleteMesh(id gfx.Mesh) {
	m, ok := c.meshes[id]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
	}
	delete(c.meshes, id)
}
