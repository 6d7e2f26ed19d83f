package backend

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"spyglass/internal/adapter"
	"spyglass/internal/result"
)

// runtimeAdapter reports Go runtime statistics of the spyglass process
// itself. It takes no resource at all; any authority or path is a form
// this backend cannot use.
type runtimeAdapter struct{}

func newRuntime(_ context.Context, in adapter.ConstructInput) (adapter.Adapter, error) {
	if in.Resource != "" {
		return nil, fmt.Errorf("runtime takes no resource, got %q: %w", in.Resource, adapter.ErrResourceForm)
	}
	return &runtimeAdapter{}, nil
}

// RuntimeStats is a snapshot of the running process.
type RuntimeStats struct {
	GoVersion  string `json:"go_version"`
	OS         string `json:"os"`
	Arch       string `json:"arch"`
	NumCPU     int    `json:"num_cpu"`
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
}

func (s RuntimeStats) FormatText(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"go version:  %s\nplatform:    %s/%s\ncpus:        %d\ngoroutines:  %d\nheap alloc:  %d bytes\nheap sys:    %d bytes\ngc cycles:   %d\n",
		s.GoVersion, s.OS, s.Arch, s.NumCPU, s.Goroutines, s.HeapAlloc, s.HeapSys, s.NumGC)
	return err
}

func (a *runtimeAdapter) Structure(_ context.Context) (*result.Record, error) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	stats := RuntimeStats{
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		HeapSys:    mem.HeapSys,
		NumGC:      mem.NumGC,
	}
	return result.New("runtime_stats", "process", stats), nil
}
