package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"callsearch/internal/model"
)

// LoadEIPs reads every .json file in dir as an EIP record, ordered by number.
// Files that fail to decode are logged and skipped.
func LoadEIPs(dir string, log *zap.Logger) ([]model.EIP, error) {
	if log == nil {
		log = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read eip dir: %w", err)
	}

	var eips []model.EIP
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		eip, migrated, err := model.DecodeEIP(data)
		if err != nil {
			log.Warn("skipping eip file", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		if migrated {
			log.Debug("migrated legacy fork status", zap.Int("eip", eip.ID))
		}
		eips = append(eips, eip)
	}

	sort.Slice(eips, func(i, j int) bool { return eips[i].ID < eips[j].ID })
	return eips, nil
}
