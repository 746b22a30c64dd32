//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_log.go -package=mocks
package repositories

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/Lynxchester/lynxchat/domain"
)

// IMessageLog is the durable side of the chat. The realtime core treats
// it as an external collaborator and never reads its keys directly.
type IMessageLog interface {
	Append(message domain.Message) error
	Recent(roomID domain.RoomID, limit int) ([]domain.Message, error)
}

type MessageLog struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageLog(db *badger.DB, log *slog.Logger) MessageLog {
	return MessageLog{db: db, log: log}
}

// key formats "msg:{room}:{timestamp_padded}:{uuid}" so that:
//  1. a prefix scan isolates one room,
//  2. 19-digit zero padding makes lexicographic order chronological,
//  3. the UUID disambiguates two messages in the same nanosecond.
func key(message domain.Message) []byte {
	return []byte(fmt.Sprintf("msg:%s:%019d:%s",
		message.Room,
		message.CreatedAt.UnixNano(),
		message.ID,
	))
}

// Append persists a message in BadgerDB.
func (m MessageLog) Append(message domain.Message) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(message), data)
	})
}

// Recent retrieves up to limit messages for a room, newest first.
// Thanks to the padded timestamp in the key a reverse prefix scan yields
// them already sorted; callers wanting oldest-first reverse the slice.
func (m MessageLog) Recent(roomID domain.RoomID, limit int) ([]domain.Message, error) {
	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		prefix := []byte(fmt.Sprintf("msg:%s:", roomID))
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		// Seek past the newest possible key for this room, then walk back.
		seekKey := append(append([]byte{}, prefix...), []byte("9999999999999999999")...)
		for it.Seek(seekKey); it.ValidForPrefix(prefix); it.Next() {
			if len(raw) == limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", limit))
				break
			}
			item := it.Item()
			err := item.Value(func(value []byte) error {
				raw = append(raw, append([]byte{}, value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		var message domain.Message
		if err := json.Unmarshal(b, &message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}
