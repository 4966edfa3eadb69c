package robinhood

import (
	"encoding/json"

	"github.com/ckartner/hoodbot/internal/domain"
)

// decodeResults unwraps the {"results": [...]} envelope the list endpoints
// share. A response without a results key is terminal for the call, not
// retried: it usually means an invalid symbol, not a transient fault.
func decodeResults[T any](raw json.RawMessage, what string) ([]T, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, &domain.APIError{
			Code:   domain.ErrCodeJSONDecodeFailed,
			Detail: err.Error(),
		}
	}

	resultsRaw, ok := probe["results"]
	if !ok {
		return nil, &domain.APIError{
			Code:   domain.ErrCodeMissingResults,
			Detail: "Failed to get " + what,
		}
	}

	var results []T
	if err := json.Unmarshal(resultsRaw, &results); err != nil {
		return nil, &domain.APIError{
			Code:   domain.ErrCodeJSONDecodeFailed,
			Detail: err.Error(),
		}
	}

	return results, nil
}

// decodeFirstResult is decodeResults for single-symbol lookups; an empty
// results list is treated the same as a missing key.
func decodeFirstResult[T any](raw json.RawMessage, what string) (T, error) {
	var zero T
	results, err := decodeResults[T](raw, what)
	if err != nil {
		return zero, err
	}
	if len(results) == 0 {
		return zero, &domain.APIError{
			Code:   domain.ErrCodeMissingResults,
			Detail: "Failed to get " + what,
		}
	}
	return results[0], nil
}

// decodeObject decodes a bare JSON object response (account, order detail).
func decodeObject[T any](raw json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		var zero T
		return zero, &domain.APIError{
			Code:   domain.ErrCodeJSONDecodeFailed,
			Detail: err.Error(),
		}
	}
	return out, nil
}
