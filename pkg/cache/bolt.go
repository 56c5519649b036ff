package cache

import (
	"encoding/json"
	"time"

	"go.etcd.io/bbolt"
)

var sessionsBucketName = []byte("sessions")

type boltRecord struct {
	Blob    []byte    `json:"blob"`
	Created time.Time `json:"created"`
}

// BoltStore keeps the blobs in a single bbolt bucket.
type BoltStore struct {
	db *bbolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0o644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}
	return &BoltStore{db: db}, nil
}

func (bs *BoltStore) sessionsBucket(tx *bbolt.Tx) (*bbolt.Bucket, error) {
	if !tx.Writable() {
		bkt := tx.Bucket(sessionsBucketName)
		if bkt == nil {
			return nil, bbolt.ErrBucketNotFound
		}
		return bkt, nil
	}
	return tx.CreateBucketIfNotExists(sessionsBucketName)
}

func (bs *BoltStore) Get(key string) ([]byte, error) {
	var rec boltRecord
	err := bs.db.View(func(tx *bbolt.Tx) error {
		bkt, err := bs.sessionsBucket(tx)
		if err == bbolt.ErrBucketNotFound {
			return ErrNotFound
		} else if err != nil {
			return err
		}
		data := bkt.Get([]byte(key))
		if data == nil {
			return ErrNotFound
		}
		return json.Unmarshal(data, &rec)
	})
	return rec.Blob, err
}

func (bs *BoltStore) Put(key string, blob []byte) error {
	return bs.db.Update(func(tx *bbolt.Tx) error {
		bkt, err := bs.sessionsBucket(tx)
		if err != nil {
			return err
		}
		encoded, err := json.Marshal(boltRecord{Blob: blob, Created: time.Now()})
		if err != nil {
			return err
		}
		return bkt.Put([]byte(key), encoded)
	})
}

func (bs *BoltStore) List() ([]Entry, error) {
	entries := []Entry{}
	err := bs.db.View(func(tx *bbolt.Tx) error {
		bkt, err := bs.sessionsBucket(tx)
		if err == bbolt.ErrBucketNotFound {
			return nil
		} else if err != nil {
			return err
		}
		return bkt.ForEach(func(k, v []byte) error {
			var rec boltRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			entries = append(entries, Entry{Key: string(k), Size: int64(len(rec.Blob)), Created: rec.Created})
			return nil
		})
	})
	return entries, err
}

func (bs *BoltStore) Delete(key string) error {
	return bs.db.Update(func(tx *bbolt.Tx) error {
		bkt, err := bs.sessionsBucket(tx)
		if err != nil {
			return err
		}
		if bkt.Get([]byte(key)) == nil {
			return ErrNotFound
		}
		return bkt.Delete([]byte(key))
	})
}

func (bs *BoltStore) Close() error {
	return bs.db.Close()
}
