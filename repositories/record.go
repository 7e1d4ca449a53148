package repositories

import (
	"fmt"
	"log/slog"
	"message-board/contract"
	"message-board/domain"
	"message-board/errors"
	"strconv"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	recordPrefix      = "rec:"
	sequencePrefix    = "seq:"
	sequenceBandwidth = 100
)

// RecordRepository is the badger-backed append-only record log.
type RecordRepository struct {
	db        *badger.DB
	log       *slog.Logger
	mu        sync.Mutex
	sequences map[string]*badger.Sequence
}

func NewRecordRepository(db *badger.DB, log *slog.Logger) *RecordRepository {
	return &RecordRepository{db: db, log: log, sequences: make(map[string]*badger.Sequence)}
}

// Append persists fields in namespace.
// The key is formatted as "rec:{namespace}:{seq_padded}:{uuid}" to:
//  1. Keep append order under lexicographical iteration using 19-digit zero padding.
//  2. Keep keys unique even if a sequence lease is replayed after a crash.
func (r *RecordRepository) Append(namespace string, fields domain.Fields) (contract.Entry, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return contract.Entry{}, err
	}
	if len(fields) == 0 {
		return contract.Entry{}, errors.ErrEmptyRecord
	}
	payload, err := structpb.NewStruct(fields)
	if err != nil {
		return contract.Entry{}, fmt.Errorf("encode record: %w", err)
	}
	bytes, err := proto.Marshal(payload)
	if err != nil {
		return contract.Entry{}, err
	}

	seq, err := r.nextSequence(namespace)
	if err != nil {
		return contract.Entry{}, err
	}
	key := fmt.Sprintf("%s%s:%019d:%s", recordPrefix, namespace, seq, uuid.New())
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return contract.Entry{}, err
	}
	return contract.Entry{Key: key, Seq: seq, Fields: domain.Fields(payload.AsMap())}, nil
}

// Scan walks namespace in append order.
func (r *RecordRepository) Scan(namespace string, fn func(contract.Entry) error) error {
	if err := ValidateNamespace(namespace); err != nil {
		return err
	}
	prefix := []byte(recordPrefix + namespace + ":")
	return r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			key := string(item.KeyCopy(nil))
			var payload structpb.Struct
			err := item.Value(func(value []byte) error {
				return proto.Unmarshal(value, &payload)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", key, err)
			}
			seq, err := sequenceFromKey(key, len(prefix))
			if err != nil {
				return err
			}
			if err = fn(contract.Entry{Key: key, Seq: seq, Fields: domain.Fields(payload.AsMap())}); err != nil {
				return err
			}
		}
		return nil
	})
}

// Namespaces lists every namespace that ever received a record.
func (r *RecordRepository) Namespaces() ([]string, error) {
	var namespaces []string
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		prefix := []byte(sequencePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			namespaces = append(namespaces, strings.TrimPrefix(string(it.Item().Key()), sequencePrefix))
		}
		return nil
	})
	return namespaces, err
}

// Close releases the leased sequence ranges.
func (r *RecordRepository) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for namespace, seq := range r.sequences {
		if err := seq.Release(); err != nil {
			r.log.Warn("Failed to release sequence", "namespace", namespace, "error", err)
		}
	}
	r.sequences = make(map[string]*badger.Sequence)
}

func (r *RecordRepository) nextSequence(namespace string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seq, ok := r.sequences[namespace]
	if !ok {
		var err error
		seq, err = r.db.GetSequence([]byte(sequencePrefix+namespace), sequenceBandwidth)
		if err != nil {
			return 0, fmt.Errorf("lease sequence: %w", err)
		}
		r.sequences[namespace] = seq
	}
	return seq.Next()
}

func sequenceFromKey(key string, prefixLen int) (uint64, error) {
	rest := key[prefixLen:]
	end := strings.IndexByte(rest, ':')
	if end < 0 {
		return 0, fmt.Errorf("malformed record key %q", key)
	}
	return strconv.ParseUint(rest[:end], 10, 64)
}

// ValidateNamespace rejects namespaces that would break key prefixes.
func ValidateNamespace(namespace string) error {
	if namespace == "" || strings.Contains(namespace, ":") {
		return errors.ErrInvalidNamespace
	}
	return nil
}
