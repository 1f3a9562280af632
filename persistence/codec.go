package persistence

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"catamaze/server/models"
)

// EncodeSnapshot packs a world snapshot for the world_state column.
func EncodeSnapshot(snap *models.WorldSnapshot) ([]byte, error) {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot %s: %w", snap.GameID, err)
	}
	return data, nil
}

// DecodeSnapshot is the inverse of EncodeSnapshot.
func DecodeSnapshot(data []byte) (*models.WorldSnapshot, error) {
	var snap models.WorldSnapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snap, nil
}

func cloneSnapshot(snap *models.WorldSnapshot) (*models.WorldSnapshot, error) {
	data, err := EncodeSnapshot(snap)
	if err != nil {
		return nil, err
	}
	return DecodeSnapshot(data)
}
