package records

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"
)

const (
	boltBucketRecords = "records"      // key: seq -> Record JSON
	boltBucketKeys    = "record_keys"  // key: name+age -> seq
	boltBucketNames   = "record_names" // key: name+seq -> empty
)

// BoltBuckets lists the buckets BoltRepo expects to exist.
var BoltBuckets = []string{boltBucketRecords, boltBucketKeys, boltBucketNames}

// BoltRepo stores records in a bbolt file. Each admission runs in a single
// write transaction, so the duplicate check and the insert are atomic.
type BoltRepo struct {
	DB *bbolt.DB
}

func (r *BoltRepo) Add(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.DB.Update(func(tx *bbolt.Tx) error {
		keys := tx.Bucket([]byte(boltBucketKeys))
		err := admit(rec, func(rec Record) (bool, error) {
			return keys.Get(boltRecordKey(rec)) != nil, nil
		})
		if err != nil {
			return err
		}

		recs := tx.Bucket([]byte(boltBucketRecords))
		seq, err := recs.NextSequence()
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode record: %w", err)
		}
		seqKey := boltSeqKey(seq)
		if err := recs.Put(seqKey, data); err != nil {
			return fmt.Errorf("put record: %w", err)
		}
		if err := keys.Put(boltRecordKey(rec), seqKey); err != nil {
			return fmt.Errorf("put record key: %w", err)
		}
		names := tx.Bucket([]byte(boltBucketNames))
		if err := names.Put(append(boltNamePrefix(rec.Name), seqKey...), []byte{}); err != nil {
			return fmt.Errorf("put name index: %w", err)
		}
		return nil
	})
}

func (r *BoltRepo) AddWith(ctx context.Context, name string, age int) error {
	return r.Add(ctx, NewRecord(name, age))
}

func (r *BoltRepo) All(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Record, 0)
	err := r.DB.View(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(boltBucketRecords)).ForEach(func(_, v []byte) error {
			rec, err := decodeBoltRecord(v)
			if err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BoltRepo) AllWithName(ctx context.Context, name string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]Record, 0)
	prefix := boltNamePrefix(name)
	err := r.DB.View(func(tx *bbolt.Tx) error {
		recs := tx.Bucket([]byte(boltBucketRecords))
		c := tx.Bucket([]byte(boltBucketNames)).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			v := recs.Get(k[len(prefix):])
			if v == nil {
				return fmt.Errorf("name index points at missing record %x", k[len(prefix):])
			}
			rec, err := decodeBoltRecord(v)
			if err != nil {
				return err
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Ping checks that the database is open and carries every bucket in
// BoltBuckets.
func (r *BoltRepo) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.DB.View(func(tx *bbolt.Tx) error {
		for _, name := range BoltBuckets {
			if tx.Bucket([]byte(name)) == nil {
				return fmt.Errorf("bolt bucket %q missing", name)
			}
		}
		return nil
	})
}

func decodeBoltRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode record: %w", err)
	}
	return rec, nil
}

func boltSeqKey(seq uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], seq)
	return b[:]
}

// boltNamePrefix length-prefixes the name so that no name is a byte prefix
// of another name's keys.
func boltNamePrefix(name string) []byte {
	b := make([]byte, 4, 4+len(name)+8)
	binary.BigEndian.PutUint32(b, uint32(len(name)))
	return append(b, name...)
}

func boltRecordKey(rec Record) []byte {
	var age [8]byte
	binary.BigEndian.PutUint64(age[:], uint64(int64(rec.Age))^(1<<63))
	return append(boltNamePrefix(rec.Name), age[:]...)
}

var _ Repo = (*BoltRepo)(nil)
