package domain

import (
	"encoding/json"
	"fmt"
)

// AnswersSchemaVersion is the current wire version for stored answer
// and stat payloads. Bump it when the envelope shape changes.
const AnswersSchemaVersion = 1

// AnswersEnvelope is the versioned storage form of a result's answers.
type AnswersEnvelope struct {
	Version int          `json:"version"`
	Answers []UserAnswer `json:"answers"`
}

// StatsEnvelope is the versioned storage form of a result's question stats.
type StatsEnvelope struct {
	Version int            `json:"version"`
	Stats   []QuestionStat `json:"stats"`
}

// EncodeAnswers marshals answers into a versioned envelope.
func EncodeAnswers(answers []UserAnswer) ([]byte, error) {
	if answers == nil {
		answers = []UserAnswer{}
	}
	return json.Marshal(AnswersEnvelope{Version: AnswersSchemaVersion, Answers: answers})
}

// DecodeAnswers unmarshals a versioned answers envelope, rejecting
// unknown versions instead of guessing at the payload shape.
func DecodeAnswers(data []byte) ([]UserAnswer, error) {
	var env AnswersEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode answers: %w", err)
	}
	if env.Version != AnswersSchemaVersion {
		return nil, fmt.Errorf("decode answers: unsupported schema version %d", env.Version)
	}
	return env.Answers, nil
}

// EncodeStats marshals question stats into a versioned envelope.
func EncodeStats(stats []QuestionStat) ([]byte, error) {
	if stats == nil {
		stats = []QuestionStat{}
	}
	return json.Marshal(StatsEnvelope{Version: AnswersSchemaVersion, Stats: stats})
}

// DecodeStats unmarshals a versioned stats envelope.
func DecodeStats(data []byte) ([]QuestionStat, error) {
	var env StatsEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	if env.Version != AnswersSchemaVersion {
		return nil, fmt.Errorf("decode stats: unsupported schema version %d", env.Version)
	}
	return env.Stats, nil
}
