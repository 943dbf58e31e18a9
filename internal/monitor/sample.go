// Package monitor reads the appliance health from procfs/sysfs, exports it
// as Prometheus gauges and records periodic snapshots.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/procfs"
	"github.com/prometheus/procfs/sysfs"
	"github.com/zulandar/retromgr/internal/logging"
	"github.com/zulandar/retromgr/internal/models"
	"golang.org/x/sys/unix"
)

// Sample is a point-in-time reading. Fields whose source is unavailable
// are zero.
type Sample struct {
	TakenAt        time.Time     `json:"taken_at"`
	CPUTempC       float64       `json:"cpu_temp_c"`
	Load1          float64       `json:"load1"`
	Load5          float64       `json:"load5"`
	Load15         float64       `json:"load15"`
	MemTotalKB     uint64        `json:"mem_total_kb"`
	MemAvailableKB uint64        `json:"mem_available_kb"`
	DiskTotalBytes uint64        `json:"disk_total_bytes"`
	DiskFreeBytes  uint64        `json:"disk_free_bytes"`
	Uptime         time.Duration `json:"uptime_ns"`
}

// MemUsedPercent is the share of memory not available to new processes.
// It is 0 when MemAvailable was not reported.
func (s Sample) MemUsedPercent() float64 {
	if s.MemTotalKB == 0 || s.MemAvailableKB == 0 || s.MemAvailableKB >= s.MemTotalKB {
		return 0
	}
	return 100 * float64(s.MemTotalKB-s.MemAvailableKB) / float64(s.MemTotalKB)
}

// DiskUsedPercent is the share of the share partition in use.
func (s Sample) DiskUsedPercent() float64 {
	if s.DiskTotalBytes == 0 || s.DiskFreeBytes >= s.DiskTotalBytes {
		return 0
	}
	return 100 * float64(s.DiskTotalBytes-s.DiskFreeBytes) / float64(s.DiskTotalBytes)
}

// Model converts the sample to its database row.
func (s Sample) Model() *models.MonitorSample {
	return &models.MonitorSample{
		TakenAt:        s.TakenAt,
		CPUTempC:       s.CPUTempC,
		Load1:          s.Load1,
		Load5:          s.Load5,
		Load15:         s.Load15,
		MemTotalKB:     s.MemTotalKB,
		MemAvailableKB: s.MemAvailableKB,
		DiskTotalBytes: s.DiskTotalBytes,
		DiskFreeBytes:  s.DiskFreeBytes,
		UptimeSeconds:  s.Uptime.Seconds(),
	}
}

// FromModel converts a database row back to a sample.
func FromModel(m models.MonitorSample) Sample {
	return Sample{
		TakenAt:        m.TakenAt,
		CPUTempC:       m.CPUTempC,
		Load1:          m.Load1,
		Load5:          m.Load5,
		Load15:         m.Load15,
		MemTotalKB:     m.MemTotalKB,
		MemAvailableKB: m.MemAvailableKB,
		DiskTotalBytes: m.DiskTotalBytes,
		DiskFreeBytes:  m.DiskFreeBytes,
		Uptime:         time.Duration(m.UptimeSeconds * float64(time.Second)),
	}
}

// Reader takes samples. Root prefixes the proc and sys paths.
type Reader struct {
	Root      string
	SharePath string
	Now       func() time.Time
}

// NewReader returns a reader over the given filesystem root.
func NewReader(root, sharePath string) *Reader {
	if root == "" {
		root = "/"
	}
	return &Reader{Root: root, SharePath: sharePath, Now: time.Now}
}

// Sample reads every source. A source that is missing or cannot be read
// leaves its fields zero; only a cancelled context is an error.
func (r *Reader) Sample(ctx context.Context) (Sample, error) {
	if err := ctx.Err(); err != nil {
		return Sample{}, err
	}
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	s := Sample{TakenAt: now()}
	log := logging.WithComponent("monitor")

	steps := []struct {
		name string
		fn   func(*Sample) error
	}{
		{"temperature", r.readTemp},
		{"loadavg", r.readLoad},
		{"meminfo", r.readMem},
		{"uptime", r.readUptime},
		{"disk", r.readDisk},
	}
	for _, st := range steps {
		if err := ctx.Err(); err != nil {
			return s, err
		}
		err := st.fn(&s)
		switch {
		case err == nil:
		case errors.Is(err, os.ErrNotExist):
			log.Debug().Str("source", st.name).Msg("source not available")
		default:
			log.Warn().Err(err).Str("source", st.name).Msg("read source")
		}
	}
	observe(s)
	return s, nil
}

func (r *Reader) path(rel string) string {
	return filepath.Join(r.Root, rel)
}

// mount returns the path of a pseudo filesystem below Root.
func (r *Reader) mount(rel string) (string, error) {
	p := r.path(rel)
	if _, err := os.Stat(p); err != nil {
		return "", err
	}
	return p, nil
}

func (r *Reader) procFS() (procfs.FS, error) {
	p, err := r.mount("proc")
	if err != nil {
		return procfs.FS{}, err
	}
	return procfs.NewFS(p)
}

func (r *Reader) readTemp(s *Sample) error {
	p, err := r.mount("sys")
	if err != nil {
		return err
	}
	fs, err := sysfs.NewFS(p)
	if err != nil {
		return err
	}
	zones, err := fs.ClassThermalZoneStats()
	if err != nil {
		return err
	}
	if len(zones) == 0 {
		return os.ErrNotExist
	}
	zone := zones[0]
	for _, z := range zones {
		if z.Name == "0" {
			zone = z
			break
		}
	}
	s.CPUTempC = float64(zone.Temp) / 1000
	return nil
}

func (r *Reader) readLoad(s *Sample) error {
	fs, err := r.procFS()
	if err != nil {
		return err
	}
	load, err := fs.LoadAvg()
	if err != nil {
		return err
	}
	s.Load1, s.Load5, s.Load15 = load.Load1, load.Load5, load.Load15
	return nil
}

func (r *Reader) readMem(s *Sample) error {
	fs, err := r.procFS()
	if err != nil {
		return err
	}
	mem, err := fs.Meminfo()
	if err != nil {
		return err
	}
	if mem.MemTotal != nil {
		s.MemTotalKB = *mem.MemTotal
	}
	if mem.MemAvailable != nil {
		s.MemAvailableKB = *mem.MemAvailable
	}
	return nil
}

// readUptime parses proc/uptime, which procfs does not expose.
func (r *Reader) readUptime(s *Sample) error {
	data, err := os.ReadFile(r.path("proc/uptime"))
	if err != nil {
		return err
	}
	f := strings.Fields(string(data))
	if len(f) == 0 {
		return fmt.Errorf("empty uptime file")
	}
	secs, err := strconv.ParseFloat(f[0], 64)
	if err != nil {
		return err
	}
	s.Uptime = time.Duration(secs * float64(time.Second))
	return nil
}

func (r *Reader) readDisk(s *Sample) error {
	if r.SharePath == "" {
		return nil
	}
	var st unix.Statfs_t
	if err := unix.Statfs(r.SharePath, &st); err != nil {
		if errors.Is(err, unix.ENOENT) {
			return os.ErrNotExist
		}
		return err
	}
	bsize := uint64(st.Bsize)
	s.DiskTotalBytes = st.Blocks * bsize
	s.DiskFreeBytes = st.Bavail * bsize
	return nil
}
