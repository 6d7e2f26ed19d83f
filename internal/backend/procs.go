package backend

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/shirou/gopsutil/v4/process"

	"spyglass/internal/adapter"
	"spyglass/internal/codec"
	"spyglass/internal/result"
)

// procsAdapter introspects running processes via gopsutil. The element
// name is a PID; a name that is not a live PID is a defined absent
// result.
type procsAdapter struct {
	limit int
}

func newProcs(_ context.Context, in adapter.ConstructInput) (adapter.Adapter, error) {
	limit := 0
	if raw, ok := in.Query["limit"]; ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return nil, adapter.Validationf("invalid limit %q", raw)
		}
		limit = n
	}
	return &procsAdapter{limit: limit}, nil
}

// ProcessInfo describes one process.
type ProcessInfo struct {
	PID     int32  `json:"pid"`
	Name    string `json:"name"`
	Status  string `json:"status,omitempty"`
	Cmdline string `json:"cmdline,omitempty"`
	PPID    int32  `json:"ppid,omitempty"`
}

func (p ProcessInfo) FormatText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "pid:     %d\nname:    %s\nstatus:  %s\nppid:    %d\ncmdline: %s\n",
		p.PID, p.Name, p.Status, p.PPID, p.Cmdline)
	return err
}

// ProcessList is a process table snapshot.
type ProcessList struct {
	Count     int           `json:"count"`
	Processes []ProcessInfo `json:"processes"`
}

func (l ProcessList) Columns() []string { return []string{"PID", "NAME", "STATUS"} }

func (l ProcessList) Rows() [][]string {
	rows := make([][]string, 0, len(l.Processes))
	for _, p := range l.Processes {
		rows = append(rows, []string{strconv.Itoa(int(p.PID)), p.Name, p.Status})
	}
	return rows
}

func (l ProcessList) GrepItems() []codec.GrepItem {
	items := make([]codec.GrepItem, 0, len(l.Processes))
	for _, p := range l.Processes {
		items = append(items, codec.GrepItem{Path: "proc", Line: int(p.PID), Name: p.Name})
	}
	return items
}

func (a *procsAdapter) Structure(ctx context.Context) (*result.Record, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	list := ProcessList{}
	for _, p := range procs {
		if a.limit > 0 && len(list.Processes) >= a.limit {
			break
		}
		list.Processes = append(list.Processes, describeProcess(ctx, p))
	}
	list.Count = len(list.Processes)
	return result.New("process_list", "proc", list), nil
}

func (a *procsAdapter) Element(ctx context.Context, name string) (*result.Record, error) {
	pid, err := strconv.ParseInt(name, 10, 32)
	if err != nil {
		// Not a PID at all: a simply-missing element, not a failure.
		return nil, nil
	}
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return nil, nil
	}
	return result.New("process", "proc", describeProcess(ctx, p)), nil
}

// describeProcess collects best-effort fields; permissions on other
// users' processes commonly hide cmdline and status.
func describeProcess(ctx context.Context, p *process.Process) ProcessInfo {
	info := ProcessInfo{PID: p.Pid}
	if name, err := p.NameWithContext(ctx); err == nil {
		info.Name = name
	}
	if statuses, err := p.StatusWithContext(ctx); err == nil && len(statuses) > 0 {
		info.Status = statuses[0]
	}
	if cmdline, err := p.CmdlineWithContext(ctx); err == nil {
		info.Cmdline = cmdline
	}
	if ppid, err := p.PpidWithContext(ctx); err == nil {
		info.PPID = ppid
	}
	return info
}
