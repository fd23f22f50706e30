// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// GPU is the main interface to an underlying driver
// implementation.
// It is used to create other types and to execute commands.
// A GPU is obtained from a call to Driver.Open.
type GPU interface {
	// Driver returns the Driver that owns the GPU.
	Driver() Driver

	// Submit submits a batch of command buffers to the
	// given queue for execution.
	// Submissions are executed in order. Each one may
	// wait on a number of semaphores before its command
	// buffers begin execution, and may signal a number
	// of semaphores when they complete.
	// The method does not block. If fence is not nil,
	// it is signaled when all submissions complete.
	// Calling Submit with no submissions and a non-nil
	// fence signals the fence as soon as all work that
	// was previously submitted to q completes.
	// Command buffers in sub cannot be used for
	// recording until then.
	Submit(q Queue, sub []Submission, fence Fence) error

	// WaitIdle blocks until all work submitted to the
	// GPU completes execution.
	WaitIdle() error

	// NewCmdBuffer creates a new command buffer.
	// The command buffer can only be submitted to
	// queue q.
	NewCmdBuffer(q Queue) (CmdBuffer, error)

	// NewFence creates a new fence.
	NewFence(signaled bool) (Fence, error)

	// NewSemaphore creates a new semaphore.
	NewSemaphore() (Semaphore, error)

	// NewShaderCode creates a new shader code.
	NewShaderCode(data []byte) (ShaderCode, error)

	// NewDescHeap creates a new descriptor heap.
	NewDescHeap(ds []Descriptor) (DescHeap, error)

	// NewDescTable creates a new descriptor table.
	NewDescTable(dh []DescHeap) (DescTable, error)

	// NewPipeline creates a new pipeline.
	// The state parameter must be a pointer to a GraphState
	// or a pointer to a RayState. Pipelines created from a
	// RayState implement the RayPipeline interface.
	NewPipeline(state any) (Pipeline, error)

	// NewBuffer creates a new buffer.
	NewBuffer(size int64, visible bool, usg Usage) (Buffer, error)

	// NewImage creates a new image.
	NewImage(pf PixelFmt, size Dim3D, layers, levels, samples int, usg Usage) (Image, error)

	// NewSampler creates a new Sampler.
	NewSampler(spln *Sampling) (Sampler, error)

	// NewQueryPool creates a new query pool containing
	// count queries of the given type.
	NewQueryPool(typ QueryType, count int) (QueryPool, error)

	// AccelSizes computes the memory requirements of an
	// acceleration structure build.
	// Only the Level, Flags and Geometry fields of b are
	// considered.
	AccelSizes(b *AccelBuild) (AccelSizes, error)

	// NewAccelStruct creates a new acceleration structure
	// backed by size bytes of buf starting at off.
	// buf must have been created with UAccelStorage
	// and must outlive the acceleration structure.
	// off must be aligned to 256 bytes.
	NewAccelStruct(lvl AccelLevel, buf Buffer, off, size int64) (AccelStruct, error)

	// Limits returns the implementation limits.
	// They are immutable for the lifetime of the GPU.
	Limits() Limits
}

// Destroyer is the interface that wraps the Destroy method.
// Types that implement this interface may allocate external
// memory that is not managed by GC, so Destroy must be
// called explicitly to ensure such memory is deallocated.
type Destroyer interface {
	Destroy()
}

// Queue identifies a device queue.
type Queue int

// Queues.
const (
	// Queue supporting graphics, compute and copy
	// commands, in addition to ray tracing and
	// acceleration structure builds.
	QGraphics Queue = iota
	// Queue supporting compute and copy commands.
	// It may refer to the same device queue as
	// QGraphics.
	QCompute
)

// Submission describes a unit of work given to GPU.Submit.
// WaitAt[i] is the synchronization scope in which Wait[i]
// is waited on.
type Submission struct {
	Cmd    []CmdBuffer
	Wait   []Semaphore
	WaitAt []Sync
	Signal []Semaphore
}

// Fence is the interface that defines a GPU-to-CPU
// synchronization primitive.
type Fence interface {
	Destroyer

	// Wait blocks until the fence is signaled.
	Wait() error

	// Reset sets the fence to the unsignaled state.
	Reset() error
}

// Semaphore is the interface that defines a GPU-to-GPU
// synchronization primitive.
type Semaphore interface {
	Destroyer
}

// CmdBuffer is the interface that defines a command buffer.
// Commands are recorded into command buffers and later
// submitted to the GPU for execution. The usage is as
// follows:
//
//  1. call Begin to prepare the command buffer for
//     recording
//  2. record copy, acceleration structure, ray tracing
//     and synchronization commands as needed
//  3. to draw, call BeginPass, call Set* methods to
//     configure rendering state, call Draw* commands
//     and then call EndPass
//  4. call End and, if it succeeds, GPU.Submit
//
// Render passes must not be nested. Only draw and Set*
// commands can be recorded during a render pass.
type CmdBuffer interface {
	Destroyer

	// Begin prepares the command buffer for recording.
	// This method must be called before any command
	// is recorded in the command buffer. It needs to
	// be called again if the command buffer is
	// executed or reset.
	Begin() error

	// BeginPass begins a render pass.
	// The render area is given by width and height.
	// ds is optional.
	BeginPass(width, height int, color []ColorTarget, ds *DSTarget)

	// EndPass ends the current render pass.
	EndPass()

	// SetPipeline sets the pipeline.
	// There is a separate binding point for each
	// type of pipeline.
	SetPipeline(pl Pipeline)

	// SetViewport sets the bounds of one or more
	// viewports.
	SetViewport(vp []Viewport)

	// SetScissor sets the rectangles of one or more
	// viewport scissors.
	SetScissor(sciss []Scissor)

	// SetVertexBuf sets one or more vertex buffers.
	// off must be aligned to the size of the data
	// format as specified in the vertex input of
	// the bound graphics pipeline.
	SetVertexBuf(start int, buf []Buffer, off []int64)

	// SetIndexBuf sets the index buffer.
	// off must be aligned to 4 bytes.
	SetIndexBuf(format IndexFmt, buf Buffer, off int64)

	// SetDescTableGraph sets a descriptor table
	// range for graphics pipelines.
	SetDescTableGraph(table DescTable, start int, heapCopy []int)

	// SetDescTableRay sets a descriptor table
	// range for ray tracing pipelines.
	SetDescTableRay(table DescTable, start int, heapCopy []int)

	// Draw draws primitives.
	// It must only be called during a render pass.
	Draw(vertCount, instCount, baseVert, baseInst int)

	// DrawIndexed draws indexed primitives.
	// It must only be called during a render pass.
	DrawIndexed(idxCount, instCount, baseIdx, vertOff, baseInst int)

	// TraceRays dispatches width*height*depth rays using
	// the shader groups of the given table.
	// It must not be called during a render pass.
	TraceRays(st *ShaderTable, width, height, depth int)

	// CopyBuffer copies data between buffers.
	CopyBuffer(param *BufferCopy)

	// CopyBufToImg copies data from a buffer to
	// an image.
	CopyBufToImg(param *BufImgCopy)

	// Fill fills a buffer range with copies of
	// a byte value.
	// off and size must be aligned to 4 bytes.
	Fill(buf Buffer, off int64, value byte, size int64)

	// BuildAccel builds an acceleration structure.
	// b.Dst and b.Scratch must be valid, and the
	// memory they refer to must be at least as
	// large as the sizes returned by GPU.AccelSizes.
	BuildAccel(b *AccelBuild)

	// CopyAccel copies an acceleration structure.
	// If compact is set, to must be large enough to
	// hold the compacted size of from, which must
	// have been built with AAllowCompaction.
	CopyAccel(from, to AccelStruct, compact bool)

	// WriteCompactedSize writes the compacted size of
	// each acceleration structure in as to the query
	// pool, starting at query first.
	// The query pool must be of type QCompactedSize and
	// the queries must have been reset.
	WriteCompactedSize(as []AccelStruct, qp QueryPool, first int)

	// ResetQueries resets count queries of qp starting
	// at query first.
	ResetQueries(qp QueryPool, first, count int)

	// Barrier inserts a number of global barriers
	// in the command buffer.
	Barrier(b []Barrier)

	// Transition inserts a number of image layout
	// transitions in the command buffer.
	Transition(t []Transition)

	// End ends command recording and prepares the
	// command buffer for execution.
	// New recordings are not allowed until the
	// command buffer is executed or reset.
	// Upon failure, the command buffer is reset.
	End() error

	// Reset discards all recorded commands from the
	// command buffer.
	Reset() error
}

// BufferCopy describes the parameters of a copy command
// that copies data from one buffer to another.
type BufferCopy struct {
	From    Buffer
	FromOff int64
	To      Buffer
	ToOff   int64
	Size    int64
}

// BufImgCopy describes the parameters of a copy command
// that copies data between a buffer and an image.
// BufOff must be aligned to 512 bytes.
// Stride[0] must be aligned to 256 bytes.
type BufImgCopy struct {
	Buf    Buffer
	BufOff int64
	// Stride specifies the addressing of image data
	// in the buffer. It is given in pixels.
	// Stride[0] refers to the row length and Stride[1]
	// refers to the image height.
	Stride [2]int64
	Img    Image
	ImgOff Off3D
	Layer  int
	Level  int
	Size   Dim3D
}

// Sync is the type of a synchronization scope.
type Sync int

// Synchronization scopes.
const (
	SVertexInput Sync = 1 << iota
	SVertexShading
	SFragmentShading
	SComputeShading
	SColorOutput
	SDSOutput
	SDraw
	SCopy
	SAccelBuild
	SRayTracing
	SAll
	SNone Sync = 0
)

// Access is the type of a memory access scope.
type Access int

// Memory access scopes.
const (
	AVertexBufRead Access = 1 << iota
	AIndexBufRead
	AColorRead
	AColorWrite
	ADSRead
	ADSWrite
	ACopyRead
	ACopyWrite
	AShaderRead
	AShaderWrite
	AAccelRead
	AAccelWrite
	AAnyRead
	AAnyWrite
	ANone Access = 0
)

// Layout is the type of an image layout.
type Layout int

// Image layouts.
const (
	LUndefined Layout = iota
	LCommon
	LColorTarget
	LDSTarget
	LDSRead
	LCopySrc
	LCopyDst
	LShaderRead
	LShaderStore
	LPresent
)

// Barrier represents a synchronization barrier.
type Barrier struct {
	SyncBefore   Sync
	SyncAfter    Sync
	AccessBefore Access
	AccessAfter  Access
}

// Transition represents a layout transition on a
// specific image subresource.
type Transition struct {
	Barrier

	LayoutBefore Layout
	LayoutAfter  Layout
	IView        ImageView
}

// LoadOp is the type of a render target's load operation.
type LoadOp int

// Load operations.
const (
	LDontCare LoadOp = iota
	LClear
	LLoad
)

// StoreOp is the type of a render target's store operation.
type StoreOp int

// Store operations.
const (
	SDontCare StoreOp = iota
	SStore
)

// ColorTarget describes a color render target of a
// render pass.
type ColorTarget struct {
	Color ImageView
	Load  LoadOp
	Store StoreOp
	Clear [4]float32
}

// DSTarget describes the depth render target of a
// render pass.
type DSTarget struct {
	DS    ImageView
	Load  LoadOp
	Store StoreOp
	Clear float32
}

// ShaderCode is the interface that defines a shader binary
// for execution in a programmable pipeline stage.
type ShaderCode interface {
	Destroyer
}

// ShaderFunc specifies a function within a shader binary.
type ShaderFunc struct {
	Code ShaderCode
	Name string
}

// Stage is a mask of programmable stages.
type Stage int

// Stages.
const (
	SVertex Stage = 1 << iota
	SFragment
	SCompute
	SRayGen
	SMiss
	SClosestHit
	SAnyHit
)

// DescType is the type of a descriptor.
type DescType int

// Descriptor types.
const (
	// Read/write buffer.
	DBuffer DescType = iota
	// Read/write image.
	DImage
	// Constant buffer.
	DConstant
	// Sampled texture.
	DTexture
	// Texture sampler.
	DSampler
	// Top-level acceleration structure.
	DAccel
)

// Descriptor describes data for use in shaders.
type Descriptor struct {
	Type   DescType
	Stages Stage
	Nr     int
	Len    int
}

// DescHeap is the interface that defines a set of descriptors
// for use in programmable pipeline stages.
type DescHeap interface {
	Destroyer

	// New creates enough storage for n copies of each
	// descriptor.
	// All copies from a previous call to New are invalidated,
	// unless n is the same as the current Count value, in
	// which case it is a no-op.
	// Calling New(0) frees all storage.
	New(n int) error

	// SetBuffer updates the buffer ranges referred by the
	// given descriptor of the given heap copy.
	// The descriptor must be of type DBuffer or DConstant.
	// Buffer ranges must be aligned to 256 bytes.
	SetBuffer(cpy, nr, start int, buf []Buffer, off, size []int64)

	// SetImage updates the image views referred by the
	// given descriptor of the given heap copy.
	// The descriptor must be of type DImage or DTexture.
	SetImage(cpy, nr, start int, iv []ImageView)

	// SetSampler updates the samplers referred by the
	// given descriptor of the given heap copy.
	// The descriptor must be of type DSampler.
	SetSampler(cpy, nr, start int, splr []Sampler)

	// SetAccel updates the acceleration structures referred
	// by the given descriptor of the given heap copy.
	// The descriptor must be of type DAccel.
	SetAccel(cpy, nr, start int, as []AccelStruct)

	// Count returns the number of heap copies created
	// by New.
	Count() int
}

// DescTable is the interface that defines the bindings
// between a number of descriptor heaps and the shaders
// in a pipeline.
type DescTable interface {
	Destroyer
}

// VertexFmt describes the format of a vertex input.
type VertexFmt int

// Vertex formats.
const (
	// Signed 32-bit integer, 1-4 components.
	Int32 VertexFmt = iota
	Int32x2
	Int32x3
	Int32x4
	// Unsigned 32-bit integer, 1-4 components.
	UInt32
	UInt32x2
	UInt32x3
	UInt32x4
	// Single precision floating-point, 1-4 components.
	Float32
	Float32x2
	Float32x3
	Float32x4
)

// VertexIn describes a vertex input.
// Consecutive vertices are fetched Stride bytes apart.
// Each vertex input represents a separate buffer binding.
// Interleaved data is consumed by binding the same buffer
// to several inputs at different offsets.
// The meaning of the Nr and Name fields is shader-specific.
type VertexIn struct {
	Format VertexFmt
	Stride int
	Nr     int
	Name   string
}

// Topology is the type of primitive topologies,
// which determines how vertex data is assembled.
type Topology int

// Primitive topologies.
const (
	TPoint Topology = iota
	TLine
	TLnStrip
	TTriangle
	TTriStrip
)

// IndexFmt describes the format of index buffer data.
type IndexFmt int

// Index formats.
const (
	Index16 IndexFmt = 2
	Index32 IndexFmt = 4
)

// Viewport defines the bounds of a viewport.
type Viewport struct {
	X, Y, Width, Height, Znear, Zfar float32
}

// Scissor defines a scissor rectangle.
type Scissor struct {
	X, Y, Width, Height int
}

// Cullmode is the type of cull modes, which
// determines primitive culling based on triangle
// facing direction.
type CullMode int

// Cull modes.
const (
	CNone CullMode = iota
	CFront
	CBack
)

// FillMode is the type of triangle fill modes, which
// determines the final rasterization of triangles.
type FillMode int

// Triangle fill modes.
const (
	FFill FillMode = iota
	FLines
)

// RasterState defines the rasterization state of a
// graphics pipeline.
type RasterState struct {
	// Winding order is either clockwise or counter-clockwise.
	Clockwise bool
	Cull      CullMode
	Fill      FillMode
}

// CmpFunc is the type of comparison functions.
type CmpFunc int

// Comparison functions.
const (
	CNever CmpFunc = iota
	CLess
	CEqual
	CLessEqual
	CGreater
	CNotEqual
	CGreaterEqual
	CAlways
)

// DSState defines the depth state of a graphics pipeline.
type DSState struct {
	// DepthTest enables the depth test.
	DepthTest bool
	// DepthWrite enables depth writes.
	DepthWrite bool
	DepthCmp   CmpFunc
}

// ColorMask is the type of a color write mask.
type ColorMask int

// Color write masks.
const (
	CRed ColorMask = 1 << iota
	CGreen
	CBlue
	CAlpha
	// Write to all channels.
	CAll ColorMask = 1<<iota - 1
)

// GraphState defines the combination of programmable and
// fixed stages of a graphics pipeline.
// Graphics pipelines are created from graphics states.
// ColorFmt and DSFmt define the render targets that the
// pipeline can be used with. A zero DSFmt means that no
// depth target is used.
type GraphState struct {
	VertFunc  ShaderFunc
	FragFunc  ShaderFunc
	Desc      DescTable
	Input     []VertexIn
	Topology  Topology
	Raster    RasterState
	Samples   int
	DS        DSState
	WriteMask ColorMask
	ColorFmt  []PixelFmt
	DSFmt     PixelFmt
}

// RayState defines the state of a ray tracing pipeline.
// Shader groups are laid out in the order RayGen, Miss
// and ClosestHit. Each ClosestHit function forms its own
// triangle hit group.
type RayState struct {
	RayGen       ShaderFunc
	Miss         []ShaderFunc
	ClosestHit   []ShaderFunc
	Desc         DescTable
	MaxRecursion int
}

// Pipeline is the interface that defines a GPU pipeline.
type Pipeline interface {
	Destroyer
}

// RayPipeline is the interface that defines a ray
// tracing pipeline.
type RayPipeline interface {
	Pipeline

	// GroupHandles returns the opaque shader group
	// handles of the pipeline, in group order.
	// Each handle is Limits.ShaderGroupHandleSize
	// bytes long.
	GroupHandles() ([]byte, error)
}

// ShaderRegion is a strided region of a shader binding
// table, given as a device address range.
type ShaderRegion struct {
	Addr   uint64
	Stride int64
	Size   int64
}

// ShaderTable locates the shader binding table regions
// used by TraceRays.
type ShaderTable struct {
	RayGen   ShaderRegion
	Miss     ShaderRegion
	Hit      ShaderRegion
	Callable ShaderRegion
}

// Usage is a mask indicating valid uses for a resource.
type Usage int

// Usage flags for Buffer and Image.
const (
	// The resource can be read in shaders.
	UShaderRead Usage = 1 << iota
	// The resource can be written in shaders.
	UShaderWrite
	// The resource can provide constant data for shaders.
	// Valid only for Buffer.
	UShaderConst
	// The resource can be sampled in shaders.
	// Valid only for Image.
	UShaderSample
	// The resource can provide vertex data for draw calls.
	// Valid only for Buffer.
	UVertexData
	// The resource can provide index data for draw calls.
	// Valid only for Buffer.
	UIndexData
	// The resource can be used as render target.
	// Valid only for Image.
	URenderTarget
	// The resource can be the source of a copy command.
	UCopySrc
	// The resource can be the destination of a copy command.
	UCopyDst
	// The buffer has a device address.
	// Valid only for Buffer.
	UDeviceAddr
	// The buffer can provide read-only input to
	// acceleration structure builds.
	// Valid only for Buffer.
	UAccelInput
	// The buffer can store acceleration structures.
	// Valid only for Buffer.
	UAccelStorage
	// The buffer can hold a shader binding table.
	// Valid only for Buffer.
	UShaderTable
	// The resource can be used for any purpose.
	UGeneric Usage = 1<<iota - 1
)

// Buffer is the interface that defines a GPU buffer.
// The size of the buffer is fixed. When a larger buffer
// is necessary, a new one must be created and the data
// must be copied explicitly.
type Buffer interface {
	Destroyer

	// Visible returns whether the buffer is host visible.
	// Non-visible memory cannot be accessed by the CPU.
	Visible() bool

	// Bytes returns a slice of length Cap referring to the
	// underlying data. If the buffer is not host visible,
	// it returns nil instead.
	// The slice is valid for the lifetime of the buffer.
	Bytes() []byte

	// Cap returns the capacity of the buffer in bytes,
	// which may be greater than the size requested during
	// buffer creation.
	// This value is immutable.
	Cap() int64

	// Addr returns the device address of the buffer.
	// It returns 0 if the buffer was not created with
	// UDeviceAddr.
	Addr() uint64
}

// PixelFmt describes the format of a pixel.
// The zero value is not a valid format.
type PixelFmt int

// Internal format bit.
// All internal formats have this bit set. Client code
// must not create images using internal formats.
const FInternal PixelFmt = 1 << 30

// IsInternal returns whether f is an internal format.
func (f PixelFmt) IsInternal() bool { return f&FInternal == FInternal }

// Pixel formats.
const (
	// Color, 8-bit channels.
	RGBA8un PixelFmt = iota + 1
	RGBA8sRGB
	BGRA8un
	BGRA8sRGB
	// Color, 16-bit channels.
	RGBA16f
	// Color, 32-bit channels.
	RGBA32f
	// Depth.
	D16un
	D32f
)

// IsDepth returns whether f is a depth format.
func (f PixelFmt) IsDepth() bool { return f == D16un || f == D32f }

// Dim3D is a three-dimensional size.
type Dim3D struct {
	Width, Height, Depth int
}

// Off3D is a three-dimensional offset.
type Off3D struct {
	X, Y, Z int
}

// Image is the interface that defines a GPU image.
// Direct access to image memory is not provided, so copying
// data from the CPU to an image resource requires the use
// of a staging buffer.
type Image interface {
	Destroyer

	// NewView creates a new image view.
	// Image views represent a typed view of image storage.
	// All views created from a given image must be
	// detroyed before the image itself is destroyed.
	NewView(typ ViewType, layer, layers, level, levels int) (ImageView, error)
}

// ViewType is the type of a resource view.
type ViewType int

// View types.
const (
	IView2D ViewType = iota
	IView2DArray
	IViewCube
)

// ImageView is the interface that defines a typed view of
// an Image resource.
type ImageView interface {
	Destroyer
}

// Filter is the type of sampler filters.
type Filter int

// Filters.
const (
	FNearest Filter = iota
	FLinear
	// FNoMipmap forces mip level 0 to be used.
	// It is only valid as the mip filter of a sampler.
	FNoMipmap
)

// AddrMode is the type of sampler address modes.
type AddrMode int

// Address modes.
const (
	AWrap AddrMode = iota
	AMirror
	AClamp
)

// Sampler is the interface that defines an image sampler.
type Sampler interface {
	Destroyer
}

// Sampling describes image sampler state.
type Sampling struct {
	Min      Filter
	Mag      Filter
	Mipmap   Filter
	AddrU    AddrMode
	AddrV    AddrMode
	AddrW    AddrMode
	MaxAniso int
	MinLOD   float32
	MaxLOD   float32
}

// QueryType is the type of queries in a query pool.
type QueryType int

// Query types.
const (
	// Compacted size of an acceleration structure,
	// in bytes.
	QCompactedSize QueryType = iota
)

// QueryPool is the interface that defines a set of
// queries whose results are written by the GPU.
type QueryPool interface {
	Destroyer

	// Count returns the number of queries in the pool.
	Count() int

	// Results copies the results of count queries,
	// starting at query first, to dst.
	// It blocks until every result is available.
	Results(first, count int, dst []uint64) error
}

// Limits describes implementation limits.
// These may vary across drivers and devices.
type Limits struct {
	// Maximum width and height of 2D images.
	MaxImage2D int
	// Maximum number of layers in an image.
	MaxLayers int

	// Maximum number of descriptor heaps in a
	// descriptor table.
	MaxDescHeaps int
	// Maximum number of buffer descriptors in a
	// descriptor table.
	MaxDBuffer int
	// Maximum number of image descriptors in a
	// descriptor table.
	MaxDImage int
	// Maximum number of constant descriptors in a
	// descriptor table.
	MaxDConstant int
	// Maximum number of texture descriptors in a
	// descriptor table.
	MaxDTexture int
	// Maximum number of acceleration structure
	// descriptors in a descriptor table.
	MaxDAccel int
	// Maximum range of buffer descriptors.
	MaxDBufferRange int64
	// Maximum range of constant descriptors.
	MaxDConstantRange int64

	// Maximum number of color render targets in a
	// render pass.
	MaxColorTargets int
	// Maximum width/height of a render pass.
	MaxRenderSize [2]int
	// Maximum number of viewports.
	MaxViewports int
	// Maximum number of vertex inputs in a
	// vertex shader.
	MaxVertexIn int

	// Required alignment of the scratch memory given
	// to acceleration structure builds.
	MinScratchAlign int64
	// Maximum number of primitives in a bottom-level
	// acceleration structure.
	MaxPrimitives int64
	// Maximum number of instances in a top-level
	// acceleration structure.
	MaxInstances int64

	// Size of a shader group handle, in bytes.
	ShaderGroupHandleSize int
	// Required alignment of shader binding table
	// record strides.
	ShaderGroupHandleAlign int
	// Required alignment of shader binding table
	// region addresses.
	ShaderGroupBaseAlign int
	// Maximum ray recursion depth.
	MaxRayRecursion int
}
