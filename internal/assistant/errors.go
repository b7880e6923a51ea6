package assistant

import "errors"

// ErrRetrievalUnavailable is returned when both the filtered vector query and
// the filterless retry failed, or the embedding call failed. It is surfaced
// instead of an empty result set so callers can tell an outage apart from
// "no relevant documents".
var ErrRetrievalUnavailable = errors.New("retrieval unavailable")

// ErrEmptyQuestion is returned when a turn is submitted without a question.
var ErrEmptyQuestion = errors.New("question cannot be empty")
