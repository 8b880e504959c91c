package storage

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// FormatVersion is the on-disk format version. Version 2 means slots hold
// self-describing blobs laid out as salt(16) || nonce(12) || ciphertext+tag,
// stored as raw bytes (bbolt is byte-transparent, no base64 needed here).
const FormatVersion = 2

// Bucket names
var (
	ConfigBucket = []byte("config") // Format version, timestamps, vault ID - unencrypted
	SlotsBucket  = []byte("slots")  // Encrypted store blobs, keyed by store name
)

// Config keys
var (
	ConfigVersion  = []byte("version")
	ConfigCreated  = []byte("created")
	ConfigModified = []byte("modified")
	ConfigVaultID  = []byte("vault_id")
)

var ErrSlotNotFound = errors.New("slot not found")

// Storage provides BBolt-based slot storage for walletvault
type Storage struct {
	db *bolt.DB
}

// Open opens or creates a walletvault database
func Open(path string) (*Storage, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Storage{db: db}, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *Storage) Path() string {
	return s.db.Path()
}

// Initialize creates the bucket structure for a new vault
func (s *Storage) Initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{ConfigBucket, SlotsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		config := tx.Bucket(ConfigBucket)
		if err := config.Put(ConfigVersion, []byte(strconv.Itoa(FormatVersion))); err != nil {
			return err
		}

		now := time.Now()
		created, _ := now.MarshalBinary()
		if err := config.Put(ConfigCreated, created); err != nil {
			return err
		}
		return config.Put(ConfigModified, created)
	})
}

// IsInitialized checks if the database has been initialized
func (s *Storage) IsInitialized() (bool, error) {
	var initialized bool
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config != nil && config.Get(ConfigVersion) != nil {
			initialized = true
		}
		return nil
	})
	return initialized, err
}

// GetFormatVersion retrieves the on-disk format version
func (s *Storage) GetFormatVersion() (int, error) {
	var version int
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigVersion)
		if data == nil {
			return fmt.Errorf("version not found")
		}
		v, err := strconv.Atoi(string(data))
		if err != nil {
			return fmt.Errorf("invalid version: %w", err)
		}
		version = v
		return nil
	})
	return version, err
}

// PutSlot stores an encrypted blob under a store name
func (s *Storage) PutSlot(name string, blob []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		slots := tx.Bucket(SlotsBucket)
		if slots == nil {
			return fmt.Errorf("slots bucket not found")
		}
		if err := slots.Put([]byte(name), blob); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// GetSlot retrieves the encrypted blob for a store name.
// Returns ErrSlotNotFound if no blob has been written for this name.
func (s *Storage) GetSlot(name string) ([]byte, error) {
	var blob []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		slots := tx.Bucket(SlotsBucket)
		if slots == nil {
			return fmt.Errorf("slots bucket not found")
		}
		data := slots.Get([]byte(name))
		if data == nil {
			return ErrSlotNotFound
		}
		// Make a copy since the slice is only valid during the transaction
		blob = append([]byte(nil), data...)
		return nil
	})
	return blob, err
}

// HasSlot reports whether a blob exists for the given store name
func (s *Storage) HasSlot(name string) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		slots := tx.Bucket(SlotsBucket)
		if slots == nil {
			return fmt.Errorf("slots bucket not found")
		}
		found = slots.Get([]byte(name)) != nil
		return nil
	})
	return found, err
}

// DeleteSlot removes a slot from storage
func (s *Storage) DeleteSlot(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		slots := tx.Bucket(SlotsBucket)
		if slots == nil {
			return fmt.Errorf("slots bucket not found")
		}
		if err := slots.Delete([]byte(name)); err != nil {
			return err
		}
		return touchModified(tx)
	})
}

// ListSlots returns the names of all stored slots
func (s *Storage) ListSlots() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		slots := tx.Bucket(SlotsBucket)
		if slots == nil {
			return nil
		}
		return slots.ForEach(func(k, v []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	return names, err
}

func touchModified(tx *bolt.Tx) error {
	config := tx.Bucket(ConfigBucket)
	if config == nil {
		return fmt.Errorf("config bucket not found")
	}
	now := time.Now()
	modified, _ := now.MarshalBinary()
	return config.Put(ConfigModified, modified)
}

// GetModified retrieves the last modified timestamp
func (s *Storage) GetModified() (time.Time, error) {
	var modified time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigModified)
		if data == nil {
			return fmt.Errorf("modified time not found")
		}
		return modified.UnmarshalBinary(data)
	})
	return modified, err
}

// GetVaultID retrieves the vault ID from the config bucket
func (s *Storage) GetVaultID() (string, error) {
	var vaultID string
	err := s.db.View(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		data := config.Get(ConfigVaultID)
		if data == nil {
			return fmt.Errorf("vault_id not found")
		}
		vaultID = string(data)
		return nil
	})
	return vaultID, err
}

// GetOrCreateVaultID retrieves the existing vault ID or generates a new one
func (s *Storage) GetOrCreateVaultID() (string, error) {
	vaultID, err := s.GetVaultID()
	if err == nil {
		return vaultID, nil
	}

	vaultID = uuid.NewString()

	err = s.db.Update(func(tx *bolt.Tx) error {
		config := tx.Bucket(ConfigBucket)
		if config == nil {
			return fmt.Errorf("config bucket not found")
		}
		return config.Put(ConfigVaultID, []byte(vaultID))
	})
	if err != nil {
		return "", err
	}

	return vaultID, nil
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after deleting slots to reclaim disk space.
func (s *Storage) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath)
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	// Reopen the compacted database
	db, err := bolt.Open(srcPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}
	s.db = db

	return nil
}
