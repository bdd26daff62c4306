// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package device

import (
	"os"
	"strings"
	"unsafe"

	"github.com/cpmech/gosl/chk"
	"github.com/jgillich/go-opencl/cl"
)

// devicePreferenceEnv is the environment variable used to select a
// platform/device; unset means "first available".
const devicePreferenceEnv = "CARDIOTISSUE_DEVICE"

// OpenCLBackend is the production device context plus the diffusion,
// derivative and step kernels, built on the same binding the go-opencl/cl
// example in the reference pack demonstrates (context, command queue,
// program, kernel, unsafe.Pointer-backed buffer transfers).
type OpenCLBackend struct {
	cfg Config

	platform *cl.Platform
	dev      *cl.Device
	ctx      *cl.Context
	queue    *cl.CommandQueue
	program  *cl.Program

	kDiffusion *cl.Kernel
	kStep      *cl.Kernel
	kSlow      *cl.Kernel
	kFast      *cl.Kernel

	bufState *cl.MemObject
	bufIdiff *cl.MemObject
	bufDeriv *cl.MemObject
	bufCache *cl.MemObject

	nx, ny, s, k int
	localX, localY int
	globalX, globalY int

	initialized bool
}

var _ Backend = (*OpenCLBackend)(nil)

// NewOpenCLBackend returns an uninitialized OpenCL-backed device context.
func NewOpenCLBackend() *OpenCLBackend { return &OpenCLBackend{} }

func (o *OpenCLBackend) Init(cfg Config) (err error) {
	if o.initialized {
		return chk.Err("OpenCLBackend.Init: already initialized")
	}
	if err = validateConfig(cfg); err != nil {
		return err
	}

	// on any failure past this point, release whatever was allocated so far
	defer func() {
		if err != nil {
			o.Clean()
		}
	}()

	o.cfg = cfg
	o.nx, o.ny = cfg.Nx, cfg.Ny
	o.s, o.k = cfg.Model.S, cfg.Model.K

	o.dev, o.platform, err = selectDevice(preferenceFromEnv(cfg.DevicePreference))
	if err != nil {
		return err
	}

	o.ctx, err = cl.CreateContext([]*cl.Device{o.dev})
	if err != nil {
		return chk.Err("cannot create OpenCL context: %v", err)
	}

	o.queue, err = o.ctx.CreateCommandQueue(o.dev, 0)
	if err != nil {
		return chk.Err("cannot create OpenCL command queue: %v", err)
	}

	o.program, err = o.ctx.CreateProgramWithSource([]string{cfg.Model.KernelSource})
	if err != nil {
		return chk.Err("cannot create OpenCL program: %v", err)
	}
	if err = o.program.BuildProgram([]*cl.Device{o.dev}, clName()); err != nil {
		log := o.program.GetBuildLog(o.dev)
		return chk.Err("kernel build failed for model %q:\n%s\n%v", cfg.Model.Name, log, err)
	}

	if o.kDiffusion, err = o.program.CreateKernel("diffusion_kernel"); err != nil {
		return chk.Err("cannot create diffusion_kernel: %v", err)
	}
	if o.kStep, err = o.program.CreateKernel("step_kernel"); err != nil {
		return chk.Err("cannot create step_kernel: %v", err)
	}
	if o.kSlow, err = o.program.CreateKernel("slow_kernel"); err != nil {
		return chk.Err("cannot create slow_kernel: %v", err)
	}
	if o.kFast, err = o.program.CreateKernel("fast_kernel"); err != nil {
		return chk.Err("cannot create fast_kernel: %v", err)
	}

	n := o.nx * o.ny
	sizeofReal := int(unsafe.Sizeof(Real(0)))
	if o.bufState, err = o.ctx.CreateEmptyBuffer(cl.MemReadWrite, n*o.s*sizeofReal); err != nil {
		return chk.Err("cannot allocate state buffer: %v", err)
	}
	if o.bufIdiff, err = o.ctx.CreateEmptyBuffer(cl.MemReadWrite, n*sizeofReal); err != nil {
		return chk.Err("cannot allocate idiff buffer: %v", err)
	}
	if o.bufDeriv, err = o.ctx.CreateEmptyBuffer(cl.MemReadWrite, n*o.s*sizeofReal); err != nil {
		return chk.Err("cannot allocate deriv buffer: %v", err)
	}
	cacheLen := n * o.k
	if cacheLen == 0 {
		cacheLen = 1 // a zero-length buffer is rejected by some OpenCL implementations
	}
	if o.bufCache, err = o.ctx.CreateEmptyBuffer(cl.MemReadWrite, cacheLen*sizeofReal); err != nil {
		return chk.Err("cannot allocate cache buffer: %v", err)
	}

	// work-group sizing: (32, ny>1 ? 4 : 1), global rounded up
	o.localX = 32
	o.localY = 1
	if o.ny > 1 {
		o.localY = 4
	}
	o.globalX = roundUp(o.nx, o.localX)
	o.globalY = roundUp(o.ny, o.localY)

	if err = o.kDiffusion.SetArgs(o.bufState, o.bufIdiff, toReal(cfg.Gx), toReal(cfg.Gy), int32(o.nx), int32(o.ny), int32(o.s)); err != nil {
		return chk.Err("cannot bind diffusion_kernel arguments: %v", err)
	}
	if err = o.kStep.SetArgs(o.bufState, o.bufDeriv, toReal(0), int32(o.nx), int32(o.ny), int32(o.s)); err != nil {
		return chk.Err("cannot bind step_kernel arguments: %v", err)
	}
	for _, k := range []*cl.Kernel{o.kSlow, o.kFast} {
		if err = k.SetArgs(o.bufState, o.bufIdiff, o.bufCache, o.bufDeriv,
			toReal(0), toReal(0), toReal(0), int32(cfg.NxPaced), int32(cfg.NyPaced), int32(o.nx), int32(o.ny)); err != nil {
			return chk.Err("cannot bind derivative kernel arguments: %v", err)
		}
	}

	o.initialized = true
	return nil
}

func (o *OpenCLBackend) WriteState(state []float64) error {
	if !o.initialized {
		return chk.Err("OpenCLBackend.WriteState: not initialized")
	}
	n := o.nx * o.ny * o.s
	if len(state) != n {
		return chk.Err("OpenCLBackend.WriteState: expected length %d, got %d", n, len(state))
	}
	buf := make([]Real, n)
	for i, v := range state {
		buf[i] = toReal(v)
	}
	_, err := o.queue.EnqueueWriteBuffer(o.bufState, true, 0, n*int(unsafe.Sizeof(Real(0))), unsafe.Pointer(&buf[0]), nil)
	if err != nil {
		return chk.Err("cannot upload initial state: %v", err)
	}
	return nil
}

func (o *OpenCLBackend) ReadState(out []float64) error {
	if !o.initialized {
		return chk.Err("OpenCLBackend.ReadState: not initialized")
	}
	n := o.nx * o.ny * o.s
	if len(out) != n {
		return chk.Err("OpenCLBackend.ReadState: expected length %d, got %d", n, len(out))
	}
	buf := make([]Real, n)
	_, err := o.queue.EnqueueReadBuffer(o.bufState, true, 0, n*int(unsafe.Sizeof(Real(0))), unsafe.Pointer(&buf[0]), nil)
	if err != nil {
		return chk.Err("cannot read back state: %v", err)
	}
	for i, v := range buf {
		out[i] = float64(v)
	}
	return nil
}

func (o *OpenCLBackend) ReadCell0(out []float64) error {
	if !o.initialized {
		return chk.Err("OpenCLBackend.ReadCell0: not initialized")
	}
	if len(out) != o.s {
		return chk.Err("OpenCLBackend.ReadCell0: expected length %d, got %d", o.s, len(out))
	}
	buf := make([]Real, o.s)
	_, err := o.queue.EnqueueReadBuffer(o.bufState, true, 0, o.s*int(unsafe.Sizeof(Real(0))), unsafe.Pointer(&buf[0]), nil)
	if err != nil {
		return chk.Err("cannot read back cell 0 state: %v", err)
	}
	for i, v := range buf {
		out[i] = float64(v)
	}
	return nil
}

func (o *OpenCLBackend) ReadDiffusion(out []float64) error {
	if !o.initialized {
		return chk.Err("OpenCLBackend.ReadDiffusion: not initialized")
	}
	n := o.nx * o.ny
	if len(out) != n {
		return chk.Err("OpenCLBackend.ReadDiffusion: expected length %d, got %d", n, len(out))
	}
	buf := make([]Real, n)
	_, err := o.queue.EnqueueReadBuffer(o.bufIdiff, true, 0, n*int(unsafe.Sizeof(Real(0))), unsafe.Pointer(&buf[0]), nil)
	if err != nil {
		return chk.Err("cannot read back diffusion current: %v", err)
	}
	for i, v := range buf {
		out[i] = float64(v)
	}
	return nil
}

func (o *OpenCLBackend) Diffusion() error {
	if !o.initialized {
		return chk.Err("OpenCLBackend.Diffusion: not initialized")
	}
	_, err := o.queue.EnqueueNDRangeKernel(o.kDiffusion, nil, []int{o.globalX, o.globalY}, []int{o.localX, o.localY}, nil)
	if err != nil {
		return chk.Err("cannot enqueue diffusion_kernel: %v", err)
	}
	return nil
}

func (o *OpenCLBackend) Derivative(slow bool, time, dt, pace float64) error {
	if !o.initialized {
		return chk.Err("OpenCLBackend.Derivative: not initialized")
	}
	k := o.kFast
	if slow {
		k = o.kSlow
	}
	if err := k.SetArg(4, toReal(time)); err != nil {
		return chk.Err("cannot set derivative kernel 'time' argument: %v", err)
	}
	if err := k.SetArg(5, toReal(dt)); err != nil {
		return chk.Err("cannot set derivative kernel 'dt' argument: %v", err)
	}
	if err := k.SetArg(6, toReal(pace)); err != nil {
		return chk.Err("cannot set derivative kernel 'pace' argument: %v", err)
	}
	_, err := o.queue.EnqueueNDRangeKernel(k, nil, []int{o.globalX, o.globalY}, []int{o.localX, o.localY}, nil)
	if err != nil {
		return chk.Err("cannot enqueue derivative kernel: %v", err)
	}
	return nil
}

func (o *OpenCLBackend) Step(dt float64) error {
	if !o.initialized {
		return chk.Err("OpenCLBackend.Step: not initialized")
	}
	if err := o.kStep.SetArg(2, toReal(dt)); err != nil {
		return chk.Err("cannot set step_kernel 'dt' argument: %v", err)
	}
	_, err := o.queue.EnqueueNDRangeKernel(o.kStep, nil, []int{o.globalX, o.globalY}, []int{o.localX, o.localY}, nil)
	if err != nil {
		return chk.Err("cannot enqueue step_kernel: %v", err)
	}
	return nil
}

// Flush drains the command queue. The integrator calls this at its
// cooperative yield boundary; for the CPU backend there is nothing to
// flush.
func (o *OpenCLBackend) Flush() error {
	if o.queue == nil {
		return nil
	}
	if err := o.queue.Finish(); err != nil {
		return chk.Err("cannot flush OpenCL command queue: %v", err)
	}
	return nil
}

// Clean releases device objects in reverse allocation order, tolerating nil
// handles so it is safe from any partial-init error path and safe to call
// twice.
func (o *OpenCLBackend) Clean() error {
	release := func(r interface{ Release() }) {
		if r != nil {
			r.Release()
		}
	}
	if o.bufCache != nil {
		release(o.bufCache)
		o.bufCache = nil
	}
	if o.bufDeriv != nil {
		release(o.bufDeriv)
		o.bufDeriv = nil
	}
	if o.bufIdiff != nil {
		release(o.bufIdiff)
		o.bufIdiff = nil
	}
	if o.bufState != nil {
		release(o.bufState)
		o.bufState = nil
	}
	for _, k := range []*cl.Kernel{o.kFast, o.kSlow, o.kStep, o.kDiffusion} {
		if k != nil {
			k.Release()
		}
	}
	o.kFast, o.kSlow, o.kStep, o.kDiffusion = nil, nil, nil, nil
	if o.program != nil {
		o.program.Release()
		o.program = nil
	}
	if o.queue != nil {
		o.queue.Release()
		o.queue = nil
	}
	if o.ctx != nil {
		o.ctx.Release()
		o.ctx = nil
	}
	o.dev, o.platform = nil, nil
	o.initialized = false
	return nil
}

func roundUp(n, multiple int) int {
	if n%multiple == 0 {
		return n
	}
	return (n/multiple + 1) * multiple
}

func preferenceFromEnv(explicit string) string {
	if explicit != "" {
		return explicit
	}
	return os.Getenv(devicePreferenceEnv)
}

// selectDevice picks the first device matching preference (a case-insensitive
// substring of the device name) across all platforms, else the first
// available device overall.
func selectDevice(preference string) (*cl.Device, *cl.Platform, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		return nil, nil, chk.Err("cannot query OpenCL platforms: %v", err)
	}
	if len(platforms) == 0 {
		return nil, nil, chk.Err("no OpenCL platform found")
	}

	var firstDev *cl.Device
	var firstPlat *cl.Platform
	for _, p := range platforms {
		devices, err := p.GetDevices(cl.DeviceTypeAll)
		if err != nil {
			continue
		}
		for _, d := range devices {
			if firstDev == nil {
				firstDev, firstPlat = d, p
			}
			if preference != "" && strings.Contains(strings.ToLower(d.Name()), strings.ToLower(preference)) {
				return d, p, nil
			}
		}
	}
	if firstDev == nil {
		return nil, nil, chk.Err("no OpenCL device found")
	}
	return firstDev, firstPlat, nil
}
