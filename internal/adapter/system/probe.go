package system

import (
	"context"
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/process"
)

// ProcessProbe reads resource usage of the running server process.
type ProcessProbe struct {
	proc *process.Process
}

func NewProcessProbe() (*ProcessProbe, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("failed to inspect own process: %w", err)
	}
	return &ProcessProbe{proc: p}, nil
}

func (p *ProcessProbe) ResidentMemory(ctx context.Context) (uint64, error) {
	info, err := p.proc.MemoryInfoWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}
