package repository

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/franbe7/XLBALL/internal/constants"
	"github.com/franbe7/XLBALL/internal/domain"
)

var (
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrSchemaMismatch  = errors.New("snapshot schema version mismatch")
)

// playerTable keeps records in insertion order so the JSON object is
// written and read back in the same order.
type playerTable struct {
	keys  []string
	byKey map[string]*domain.PlayerRecord
}

func newPlayerTable() playerTable {
	return playerTable{byKey: make(map[string]*domain.PlayerRecord)}
}

func (t *playerTable) get(key string) (*domain.PlayerRecord, bool) {
	p, ok := t.byKey[key]
	return p, ok
}

func (t *playerTable) insert(p *domain.PlayerRecord) {
	if _, ok := t.byKey[p.Key]; !ok {
		t.keys = append(t.keys, p.Key)
	}
	t.byKey[p.Key] = p
}

func (t *playerTable) len() int {
	return len(t.keys)
}

func (t *playerTable) ordered() []*domain.PlayerRecord {
	out := make([]*domain.PlayerRecord, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, t.byKey[k])
	}
	return out
}

func (t playerTable) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range t.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		rec, err := json.Marshal(t.byKey[k])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal player %s: %w", k, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(rec)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (t *playerTable) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: players must be an object", ErrInvalidSnapshot)
	}

	*t = newPlayerTable()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected player key %v", ErrInvalidSnapshot, tok)
		}

		var rec *domain.PlayerRecord
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("failed to decode player %s: %w", key, err)
		}
		if rec == nil {
			continue
		}
		rec.Key = key
		t.insert(rec)
	}

	_, err = dec.Token()
	return err
}

type snapshot struct {
	Meta    *domain.StoreMeta `json:"meta"`
	Players *playerTable      `json:"players"`
}

func encodeSnapshot(meta domain.StoreMeta, players playerTable) ([]byte, error) {
	return json.MarshalIndent(snapshot{Meta: &meta, Players: &players}, "", "  ")
}

// decodeSnapshot parses a snapshot file and checks that both sections are
// present. A missing schema version is read as the current one.
func decodeSnapshot(data []byte) (domain.StoreMeta, playerTable, error) {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.StoreMeta{}, playerTable{}, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	if snap.Meta == nil || snap.Players == nil {
		return domain.StoreMeta{}, playerTable{}, fmt.Errorf("%w: missing meta or players", ErrInvalidSnapshot)
	}

	meta := *snap.Meta
	switch meta.SchemaVersion {
	case 0:
		meta.SchemaVersion = constants.SnapshotSchemaVersion
	case constants.SnapshotSchemaVersion:
	default:
		return domain.StoreMeta{}, playerTable{}, fmt.Errorf("%w: got %d, want %d",
			ErrSchemaMismatch, meta.SchemaVersion, constants.SnapshotSchemaVersion)
	}

	return meta, *snap.Players, nil
}
