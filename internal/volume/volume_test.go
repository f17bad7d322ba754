package volume

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsage_TempDir(t *testing.T) {
	info, err := Usage(t.TempDir())
	require.NoError(t, err)
	assert.Positive(t, info.Total)
	assert.LessOrEqual(t, info.Free, info.Total)
	assert.GreaterOrEqual(t, info.UsedPercent(), 0.0)
	assert.Contains(t, info.String(), "free of")
}

func TestUsage_Missing(t *testing.T) {
	_, err := Usage(filepath.Join(t.TempDir(), "does", "not", "exist"))
	assert.Error(t, err)
}

func TestInfo_Share(t *testing.T) {
	i := Info{Total: 1000, Used: 250, Free: 750}
	assert.InDelta(t, 25.0, i.UsedPercent(), 0.001)
	assert.InDelta(t, 10.0, i.Share(100), 0.001)
	assert.Zero(t, Info{}.Share(5))
}
