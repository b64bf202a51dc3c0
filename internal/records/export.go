package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"records-backend/internal/shared/storage/object"
	"records-backend/internal/shared/util"
)

const (
	snapshotPrefix       = "snapshots"
	defaultSnapshotLabel = "records"
)

// ErrInvalidLabel is returned when a snapshot label cannot be used in a key.
var ErrInvalidLabel = errors.New("invalid snapshot label")

// Snapshot describes an exported copy of the store.
type Snapshot struct {
	Key       string `json:"key"`
	Count     int    `json:"count"`
	Checksum  string `json:"checksum"`
	SizeBytes int64  `json:"sizeBytes"`
}

type snapshotFile struct {
	ExportedAt time.Time `json:"exportedAt"`
	Count      int       `json:"count"`
	Records    []Record  `json:"records"`
}

// Exporter writes the admitted records to an object store as a JSON
// document that LoadSeed can read back.
type Exporter struct {
	Repo  Repo
	Store object.ObjectStore
	Now   func() time.Time
}

func (e *Exporter) Export(ctx context.Context, label string) (Snapshot, error) {
	if e == nil || e.Repo == nil || e.Store == nil {
		return Snapshot{}, errors.New("exporter not configured")
	}
	label = strings.TrimSpace(label)
	if label == "" {
		label = defaultSnapshotLabel
	}
	label, err := util.SanitizeFileName(label)
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidLabel, err)
	}

	recs, err := e.Repo.All(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list records: %w", err)
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	exportedAt := now().UTC()
	data, err := json.MarshalIndent(snapshotFile{
		ExportedAt: exportedAt,
		Count:      len(recs),
		Records:    recs,
	}, "", "  ")
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}

	name := fmt.Sprintf("%s-%s-%s.json", label, exportedAt.Format("20060102T150405Z"), uuid.NewString())
	key := path.Join(snapshotPrefix, name)
	size, err := e.Store.Put(ctx, key, "application/json", bytes.NewReader(data))
	if err != nil {
		return Snapshot{}, fmt.Errorf("store snapshot: %w", err)
	}
	return Snapshot{
		Key:       key,
		Count:     len(recs),
		Checksum:  util.Checksum(data),
		SizeBytes: size,
	}, nil
}
