// Package render describes render objects independently of any GPU
// backend.
//
// A [RenderObject] bundles the buffers, attribute arrays, scalar uniforms
// and pipeline state a renderer needs to draw one visual. Every piece of
// data lives in a versioned [Cell]: a renderer uploads a buffer only when
// its version changed since the last frame, and the visual engine bumps a
// version only when the value really changed.
//
// Shader code, GPU memory allocation and the upload path are left to the
// backend. The package only describes what to upload through
// [RenderObject.BufferDescriptors], [RenderObject.PrimitiveState] and
// [RenderObject.BlendState], using the WebGPU types of gputypes.
package render
