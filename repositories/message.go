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

// MessageRepository persists a room's message window in BadgerDB.
// The key is formatted as "msg:{room_uuid}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the message UUID as a collision
//     disconnector if two messages land on the same nanosecond.
type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) *MessageRepository {
	return &MessageRepository{db: db, log: log}
}

type diskMessage struct {
	ID      string `json:"id"`
	RoomID  string `json:"room_id"`
	Sender  string `json:"sender_id"`
	Content string `json:"content"`
	At      int64  `json:"at"`
}

func messageKey(roomID uuid.UUID, at time.Time, id uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s", roomID, at.UnixNano(), id))
}

func messagePrefix(roomID uuid.UUID) []byte {
	return []byte(fmt.Sprintf("msg:%s:", roomID))
}

func (m *MessageRepository) Store(message domain.Message) error {
	bytes, err := json.Marshal(fromMessage(message))
	if err != nil {
		return apperrors.StoreFailure(err, "encoding message %s", message.ID)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(messageKey(message.RoomID, message.CreatedAt, message.ID), bytes)
	})
	if err != nil {
		return apperrors.StoreFailure(err, "storing message %s", message.ID)
	}
	return nil
}

// ListByRoom returns up to limit messages for the room, oldest first.
// Thanks to the padded timestamp in the key a forward prefix scan is
// already in ascending time order.
func (m *MessageRepository) ListByRoom(roomID uuid.UUID, limit int) ([]domain.Message, error) {
	var messages []domain.Message
	prefix := messagePrefix(roomID)
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(messages) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", limit))
				break
			}
			var record diskMessage
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return err
			}
			message, err := toMessage(record)
			if err != nil {
				return err
			}
			messages = append(messages, message)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.StoreFailure(err, "listing messages for room %s", roomID)
	}
	return messages, nil
}

// CountByRoom counts the room's stored messages with a keys-only scan.
func (m *MessageRepository) CountByRoom(roomID uuid.UUID) (int, error) {
	count := 0
	prefix := messagePrefix(roomID)
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.StoreFailure(err, "counting messages for room %s", roomID)
	}
	return count, nil
}

// LatestTimestamp returns the newest stored timestamp for the room.
// The boolean is false when the room has no messages yet.
func (m *MessageRepository) LatestTimestamp(roomID uuid.UUID) (time.Time, bool, error) {
	var at time.Time
	found := false
	prefix := messagePrefix(roomID)
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		it.Seek(seekKey)
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		var record diskMessage
		if err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		}); err != nil {
			return err
		}
		at = time.Unix(0, record.At).UTC()
		found = true
		return nil
	})
	if err != nil {
		return time.Time{}, false, apperrors.StoreFailure(err, "reading latest message for room %s", roomID)
	}
	return at, found, nil
}

func fromMessage(message domain.Message) diskMessage {
	return diskMessage{
		ID:      message.ID.String(),
		RoomID:  message.RoomID.String(),
		Sender:  message.SenderID,
		Content: message.Content,
		At:      message.CreatedAt.UnixNano(),
	}
}

func toMessage(record diskMessage) (domain.Message, error) {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return domain.Message{}, apperrors.StoreFailure(err, "corrupt message record %q", record.ID)
	}
	roomID, err := uuid.Parse(record.RoomID)
	if err != nil {
		return domain.Message{}, apperrors.StoreFailure(err, "corrupt message record %q", record.ID)
	}
	return domain.Message{
		ID:        id,
		RoomID:    roomID,
		SenderID:  record.Sender,
		Content:   record.Content,
		CreatedAt: time.Unix(0, record.At).UTC(),
	}, nil
}
