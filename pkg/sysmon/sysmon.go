// Copyright (C) 2025 Josh Simonot
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package sysmon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"heatmon/pkg/logger"
)

// Service reports host and process resource usage.
type Service struct {
	log *logger.Logger
}

func New() *Service {
	return &Service{
		log: logger.New("SysMonitor"),
	}
}

type report struct {
	GoVersion string `json:"go_version"`
	CPU       struct {
		SystemPercent  float64 `json:"system_percent"`
		ProcessPercent float64 `json:"process_percent"`
	} `json:"cpu"`
	Memory struct {
		SystemTotal uint64 `json:"system_total"`
		SystemUsed  uint64 `json:"system_used"`
		SystemFree  uint64 `json:"system_free"`
		ProcessRSS  uint64 `json:"process_rss"`
	} `json:"memory"`
	Disk struct {
		Total uint64 `json:"total"`
		Used  uint64 `json:"used"`
		Free  uint64 `json:"free"`
	} `json:"disk"`
}

func (s *Service) collect() report {
	var rep report
	rep.GoVersion = runtime.Version()

	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		rep.CPU.SystemPercent = pcts[0]
	}
	if vmem, err := mem.VirtualMemory(); err == nil {
		rep.Memory.SystemTotal = vmem.Total
		rep.Memory.SystemUsed = vmem.Used
		rep.Memory.SystemFree = vmem.Available
	}
	if total, free, used, err := DiskUsage("/"); err == nil {
		rep.Disk.Total = total
		rep.Disk.Free = free
		rep.Disk.Used = used
	}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if memInfo, err := p.MemoryInfo(); err == nil {
			rep.Memory.ProcessRSS = memInfo.RSS
		}
		if pct, err := p.CPUPercent(); err == nil {
			rep.CPU.ProcessPercent = pct
		}
	}
	return rep
}

func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rep := s.collect()

	if r.Header.Get("Accept") == "application/json" {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rep)
		return
	}

	const gb = 1024 * 1024 * 1024
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!DOCTYPE html>
<html><head><title>System Monitor</title>
<style>
 body { font-family: sans-serif; margin: 2em; background: #f9f9f9; }
 table { border-collapse: collapse; margin-top: 1em; }
 th, td { border: 1px solid #ccc; padding: 0.6em 1em; text-align: left; }
 th { background: #eee; }
</style></head><body>
<h1>System Monitor</h1>
<p>Go %s</p>
<table>
 <tr><th></th><th>System</th><th>Process</th></tr>
 <tr><td>CPU</td><td>%.2f%%</td><td>%.2f%%</td></tr>
 <tr><td>Memory</td><td>%.2f / %.2f GB</td><td>%.2f MB RSS</td></tr>
 <tr><td>Disk (/)</td><td>%.2f / %.2f GB</td><td></td></tr>
</table>
</body></html>`,
		rep.GoVersion,
		rep.CPU.SystemPercent, rep.CPU.ProcessPercent,
		float64(rep.Memory.SystemUsed)/gb, float64(rep.Memory.SystemTotal)/gb,
		float64(rep.Memory.ProcessRSS)/(1024*1024),
		float64(rep.Disk.Used)/gb, float64(rep.Disk.Total)/gb,
	)
}
