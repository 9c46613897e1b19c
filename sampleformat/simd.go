package sampleformat

import "golang.org/x/sys/cpu"

// Capabilities reports which SIMD instruction sets the current CPU and
// build configuration make available to the format kernels. Only x86
// targets (SSE2/AVX2/AVX-512) and arm64 targets (NEON) report anything
// beyond the scalar baseline; golang.org/x/sys/cpu
// is the same runtime-detection mechanism the rest of the retrieval pack
// reaches for rather than hand-rolled CPUID parsing.
type Capabilities struct {
	SSE2    bool
	AVX2    bool
	AVX512  bool
	NEON    bool
	scalar  bool
}

// DetectCapabilities probes the runtime CPU and applies the disable flags
// from cfg. The scalar reference path is always available and is what
// every kernel in this package currently dispatches to — SIMD variants are
// modeled here as a selection surface for a future assembly implementation,
// not yet wired to hand-written kernels, so disabling them changes nothing
// observable today.
func DetectCapabilities(cfg DisableFlags) Capabilities {
	c := Capabilities{scalar: true}
	if !cfg.NoSSE2 {
		c.SSE2 = cpu.X86.HasSSE2
	}
	if !cfg.NoAVX2 {
		c.AVX2 = cpu.X86.HasAVX2
	}
	if !cfg.NoAVX512 {
		c.AVX512 = cpu.X86.HasAVX512F
	}
	if !cfg.NoNEON {
		c.NEON = cpu.ARM64.HasASIMD
	}
	return c
}

// DisableFlags mirrors the config init flags from spec §4.1
// (no_sse2/no_avx2/no_avx512/no_neon).
type DisableFlags struct {
	NoSSE2   bool
	NoAVX2   bool
	NoAVX512 bool
	NoNEON   bool
}
