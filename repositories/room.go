package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/rubentanahara/chat-net-8/domain"
	apperrors "github.com/rubentanahara/chat-net-8/errors"
)

// RoomRepository persists room records in BadgerDB.
//
// Two key families are maintained per room:
//  1. "room:{uuid}" holds the JSON record itself.
//  2. "idx:room:{status}:{createdAt_padded}:{uuid}" is a status index whose
//     19-digit zero-padded timestamp makes a reverse prefix scan yield
//     newest-first listings without decoding values.
//
// The index entry moves atomically with every status change inside a single
// Badger transaction, so a listing never observes a room under two statuses.
type RoomRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewRoomRepository(db *badger.DB, log *slog.Logger) *RoomRepository {
	return &RoomRepository{db: db, log: log}
}

type diskRoom struct {
	ID        string `json:"id"`
	Requestor string `json:"requestor_id"`
	Listener  string `json:"listener_id,omitempty"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
	EndedAt   *int64 `json:"ended_at,omitempty"`
}

func roomKey(id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("room:%s", id))
}

func roomIndexKey(status domain.Status, createdAt time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("idx:room:%s:%019d:%s", status, createdAt.UnixNano(), id))
}

func roomIndexPrefix(status domain.Status) []byte {
	return []byte(fmt.Sprintf("idx:room:%s:", status))
}

// Save upserts the room record and repoints its status index entry.
func (r *RoomRepository) Save(room domain.Room) error {
	record := fromRoom(room)
	bytes, err := json.Marshal(record)
	if err != nil {
		return apperrors.StoreFailure(err, "encoding room %s", room.ID)
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if item, err := txn.Get(roomKey(room.ID)); err == nil {
			var previous diskRoom
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &previous)
			}); err != nil {
				return err
			}
			if previous.Status != record.Status {
				oldKey := roomIndexKey(domain.Status(previous.Status), room.CreatedAt, room.ID)
				if err := txn.Delete(oldKey); err != nil {
					return err
				}
			}
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		if err := txn.Set(roomKey(room.ID), bytes); err != nil {
			return err
		}
		return txn.Set(roomIndexKey(room.Status, room.CreatedAt, room.ID), nil)
	})
	if err != nil {
		return apperrors.StoreFailure(err, "saving room %s", room.ID)
	}
	return nil
}

func (r *RoomRepository) GetByID(id uuid.UUID) (domain.Room, error) {
	var record diskRoom
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(roomKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Room{}, apperrors.NotFound("room %s not found", id)
	}
	if err != nil {
		return domain.Room{}, apperrors.StoreFailure(err, "loading room %s", id)
	}
	return toRoom(record)
}

// ListByStatus returns up to limit rooms in the given status, newest-first.
func (r *RoomRepository) ListByStatus(status domain.Status, limit int) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.scanStatus(status, func(room domain.Room) bool {
		rooms = append(rooms, room)
		return len(rooms) < limit
	})
	return rooms, err
}

// ListActiveForUser returns up to limit Active rooms where the user is
// requestor or listener, newest-first.
func (r *RoomRepository) ListActiveForUser(userID string, limit int) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.scanStatus(domain.StatusActive, func(room domain.Room) bool {
		if room.HasParticipant(userID) {
			rooms = append(rooms, room)
		}
		return len(rooms) < limit
	})
	return rooms, err
}

func (r *RoomRepository) CountActiveForUser(userID string) (int, error) {
	count := 0
	err := r.scanStatus(domain.StatusActive, func(room domain.Room) bool {
		if room.HasParticipant(userID) {
			count++
		}
		return true
	})
	return count, err
}

// scanStatus walks the status index newest-first, resolving each index entry
// to its primary record, until fn returns false or the index is exhausted.
func (r *RoomRepository) scanStatus(status domain.Status, fn func(domain.Room) bool) error {
	prefix := roomIndexPrefix(status)
	err := r.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible timestamp, then walk backwards.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999:")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			id, err := uuid.Parse(string(key[len(key)-36:]))
			if err != nil {
				r.log.Warn("Skipping malformed room index key", "key", string(key))
				continue
			}
			item, err := txn.Get(roomKey(id))
			if err != nil {
				return err
			}
			var record diskRoom
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return err
			}
			room, err := toRoom(record)
			if err != nil {
				return err
			}
			if !fn(room) {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return apperrors.StoreFailure(err, "scanning %s rooms", status)
	}
	return nil
}

func fromRoom(room domain.Room) diskRoom {
	record := diskRoom{
		ID:        room.ID.String(),
		Requestor: room.RequestorID,
		Listener:  room.ListenerID,
		Status:    string(room.Status),
		CreatedAt: room.CreatedAt.UnixNano(),
	}
	if room.EndedAt != nil {
		endedAt := room.EndedAt.UnixNano()
		record.EndedAt = &endedAt
	}
	return record
}

func toRoom(record diskRoom) (domain.Room, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Room{}, apperrors.StoreFailure(err, "corrupt room record %q", record.ID)
	}
	room := domain.Room{
		ID:          id,
		RequestorID: record.Requestor,
		ListenerID:  record.Listener,
		Status:      domain.Status(record.Status),
		CreatedAt:   time.Unix(0, record.CreatedAt).UTC(),
	}
	if record.EndedAt != nil {
		endedAt := time.Unix(0, *record.EndedAt).UTC()
		room.EndedAt = &endedAt
	}
	return room, nil
}
