package newscache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	errNotAnArray        = errors.New("value is not a JSON array")
	errMissingArticles   = errors.New("envelope has no articles array")
	errMissingTimestamp  = errors.New("envelope has no timestamp")
	errInvalidTimestamp  = errors.New("envelope timestamp is not an integer")
	errEnvelopeNotObject = errors.New("envelope is not a JSON object")
)

// rawEnvelope keeps both fields undecoded so their shapes can be checked individually.
type rawEnvelope struct {
	Articles  json.RawMessage `json:"articles"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// ParseEnvelope decodes a stored value. Any shape deviation is an error:
// the value must be an object holding an articles array and an integer timestamp.
func ParseEnvelope(raw string) (Envelope, error) {
	var re rawEnvelope
	trimmed := bytes.TrimSpace([]byte(raw))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return Envelope{}, errEnvelopeNotObject
	}
	if err := json.Unmarshal(trimmed, &re); err != nil {
		return Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}

	if isAbsent(re.Articles) {
		return Envelope{}, errMissingArticles
	}
	articles, err := decodeArticles(re.Articles)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", errMissingArticles, err)
	}

	if isAbsent(re.Timestamp) {
		return Envelope{}, errMissingTimestamp
	}
	var timestamp int64
	if err := json.Unmarshal(re.Timestamp, &timestamp); err != nil {
		return Envelope{}, fmt.Errorf("%w: %w", errInvalidTimestamp, err)
	}

	return Envelope{Articles: articles, Timestamp: timestamp}, nil
}

// Encode serializes the envelope in its stored form.
func (e Envelope) Encode() (string, error) {
	if e.Articles == nil {
		e.Articles = []Article{}
	}
	data, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// decodeArticles splits a JSON array into its elements.
// Anything other than an array, including null, is rejected.
func decodeArticles(raw json.RawMessage) ([]Article, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, errNotAnArray
	}
	var articles []Article
	if err := json.Unmarshal(trimmed, &articles); err != nil {
		return nil, fmt.Errorf("%w: %w", errNotAnArray, err)
	}
	if articles == nil {
		articles = []Article{}
	}
	// Store in the form Encode writes, so a later hit returns the same bytes.
	for i, article := range articles {
		normalized, err := json.Marshal(article)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errNotAnArray, err)
		}
		articles[i] = normalized
	}
	return articles, nil
}

func isAbsent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
