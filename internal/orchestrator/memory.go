package orchestrator

// #region imports
import (
	"database/sql"
	"math"
	"sort"
	"time"
)

// #endregion

// #region schema

const protocolOutcomesSchema = `
CREATE TABLE IF NOT EXISTS protocol_outcomes (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    trace_id      TEXT NOT NULL,
    battle_tag    TEXT NOT NULL,
    turn          INTEGER NOT NULL,
    protocol      TEXT NOT NULL,
    calls         INTEGER NOT NULL,
    errors        INTEGER NOT NULL,
    fallback      INTEGER NOT NULL DEFAULT 0,
    created_at    TEXT NOT NULL
);
`

const protocolOutcomesIndex = `
CREATE INDEX IF NOT EXISTS idx_protocol_outcomes_protocol
ON protocol_outcomes(protocol);
`

// #endregion

// minSamples is the history a protocol needs before it is ranked.
const minSamples = 3

// #region memory-struct

// OutcomeMemory persists per-turn protocol outcomes in SQLite and ranks
// protocols by decay-weighted success.
type OutcomeMemory struct {
	db *sql.DB
}

// NewOutcomeMemory initializes the protocol_outcomes table.
func NewOutcomeMemory(db *sql.DB) (*OutcomeMemory, error) {
	if _, err := db.Exec(protocolOutcomesSchema); err != nil {
		return nil, err
	}
	if _, err := db.Exec(protocolOutcomesIndex); err != nil {
		return nil, err
	}
	return &OutcomeMemory{db: db}, nil
}

// #endregion

// #region record-outcome

// RecordOutcome persists a single turn outcome row.
func (m *OutcomeMemory) RecordOutcome(rec OutcomeRecord) error {
	fallback := 0
	if rec.Fallback {
		fallback = 1
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := m.db.Exec(`
		INSERT INTO protocol_outcomes
		(trace_id, battle_tag, turn, protocol, calls, errors, fallback, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.TraceID,
		rec.BattleTag,
		rec.Turn,
		string(rec.Protocol),
		rec.Calls,
		rec.Errors,
		fallback,
		rec.CreatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// #endregion

// #region stats

// ProtocolStat summarizes recorded turns for one protocol.
type ProtocolStat struct {
	Protocol     ProtocolID
	Turns        int
	Fallbacks    int
	Calls        int
	Errors       int
	FallbackRate float64
}

// Stats aggregates every recorded turn per protocol, sorted by protocol.
func (m *OutcomeMemory) Stats() ([]ProtocolStat, error) {
	rows, err := m.db.Query(`
		SELECT protocol, COUNT(*), SUM(fallback), SUM(calls), SUM(errors)
		FROM protocol_outcomes
		GROUP BY protocol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ProtocolStat
	for rows.Next() {
		var s ProtocolStat
		var pid string
		if err := rows.Scan(&pid, &s.Turns, &s.Fallbacks, &s.Calls, &s.Errors); err != nil {
			return nil, err
		}
		s.Protocol = ProtocolID(pid)
		if s.Turns > 0 {
			s.FallbackRate = float64(s.Fallbacks) / float64(s.Turns)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Protocol < out[j].Protocol })
	return out, nil
}

// #endregion

// #region sample-counts

// SampleCounts returns the number of recorded turns per protocol.
func (m *OutcomeMemory) SampleCounts() (map[ProtocolID]int, error) {
	rows, err := m.db.Query(`SELECT protocol, COUNT(*) FROM protocol_outcomes GROUP BY protocol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[ProtocolID]int)
	for rows.Next() {
		var pid string
		var n int
		if err := rows.Scan(&pid, &n); err != nil {
			return nil, err
		}
		out[ProtocolID(pid)] = n
	}
	return out, rows.Err()
}

// #endregion

// #region best-protocol

// BestProtocol returns the protocol with the highest decay-weighted rate of
// turns resolved without fallback. Returns ("", 0, nil) if no protocol has
// 3 samples.
func (m *OutcomeMemory) BestProtocol() (ProtocolID, float32, error) {
	rows, err := m.db.Query(`SELECT protocol, fallback, created_at FROM protocol_outcomes`)
	if err != nil {
		return "", 0, err
	}
	defer rows.Close()

	type protoAccum struct {
		weightedSum float64
		totalWeight float64
		count       int
	}

	now := time.Now()
	halfLife := 7.0 * 24.0 // 7 days in hours
	accum := make(map[ProtocolID]*protoAccum)

	for rows.Next() {
		var pid string
		var fallback int
		var createdAtStr string
		if err := rows.Scan(&pid, &fallback, &createdAtStr); err != nil {
			return "", 0, err
		}
		createdAt, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			continue
		}
		weight := math.Exp(-now.Sub(createdAt).Hours() / halfLife)
		success := 1.0
		if fallback != 0 {
			success = 0
		}

		id := ProtocolID(pid)
		if _, ok := accum[id]; !ok {
			accum[id] = &protoAccum{}
		}
		accum[id].weightedSum += success * weight
		accum[id].totalWeight += weight
		accum[id].count++
	}
	if err := rows.Err(); err != nil {
		return "", 0, err
	}

	var bestID ProtocolID
	var bestScore float64 = -1

	// sorted for a stable winner on ties
	ids := make([]ProtocolID, 0, len(accum))
	for id := range accum {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		a := accum[id]
		if a.count < minSamples || a.totalWeight == 0 {
			continue
		}
		avg := a.weightedSum / a.totalWeight
		if avg > bestScore {
			bestScore = avg
			bestID = id
		}
	}
	if bestID == "" {
		return "", 0, nil
	}
	return bestID, float32(bestScore), nil
}

// #endregion
