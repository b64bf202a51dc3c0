package bolt

import (
	"path/filepath"
	"testing"

	"go.etcd.io/bbolt"
)

func TestOpenCreatesBuckets(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "records.bolt"), "a", "b")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	err = db.View(func(tx *bbolt.Tx) error {
		for _, name := range []string{"a", "b"} {
			if tx.Bucket([]byte(name)) == nil {
				t.Fatalf("bucket %s missing", name)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View: %v", err)
	}
}
