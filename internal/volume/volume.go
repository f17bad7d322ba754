// Package volume reports the capacity of the filesystem holding a path.
package volume

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/sadopc/heft/internal/util"
)

// Info describes one mounted volume.
type Info struct {
	Path   string
	Fstype string
	Total  uint64
	Free   uint64
	Used   uint64
}

// UsedPercent is the share of the volume in use.
func (i Info) UsedPercent() float64 {
	return util.Percent(i.Used, i.Total)
}

// Share is the share of the volume a byte count represents.
func (i Info) Share(bytes uint64) float64 {
	return util.Percent(bytes, i.Total)
}

func (i Info) String() string {
	return fmt.Sprintf("%s free of %s (%.0f%% used)",
		util.FormatSize(i.Free), util.FormatSize(i.Total), i.UsedPercent())
}

// Usage returns capacity figures for the volume containing path.
func Usage(path string) (Info, error) {
	st, err := disk.Usage(path)
	if err != nil {
		return Info{}, fmt.Errorf("volume usage for %s: %w", path, err)
	}
	return Info{
		Path:   st.Path,
		Fstype: st.Fstype,
		Total:  st.Total,
		Free:   st.Free,
		Used:   st.Used,
	}, nil
}
