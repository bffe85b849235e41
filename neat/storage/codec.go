package storage

import (
	"encoding/json"
	"errors"
)

// Versions written into every record. Decoding rejects any other version.
const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// ErrVersionMismatch is returned when a stored record has an unsupported version.
var ErrVersionMismatch = errors.New("record version mismatch")

// EncodeChampion encodes a champion record as JSON.
func EncodeChampion(r ChampionRecord) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeChampion decodes a champion record and checks its version.
func DecodeChampion(data []byte) (ChampionRecord, error) {
	var record ChampionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return ChampionRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return ChampionRecord{}, err
	}
	return record, nil
}

// EncodeStats encodes a statistics record as JSON.
func EncodeStats(r StatsRecord) ([]byte, error) {
	return json.Marshal(r)
}

// DecodeStats decodes a statistics record and checks its version.
func DecodeStats(data []byte) (StatsRecord, error) {
	var record StatsRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return StatsRecord{}, err
	}
	if err := checkVersion(record.VersionedRecord); err != nil {
		return StatsRecord{}, err
	}
	return record, nil
}

func checkVersion(v VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
