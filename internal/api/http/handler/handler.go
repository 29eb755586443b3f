package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/model"
)

// decodeJSON decodes the request body into dst. An empty body leaves dst
// untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apiErrors.NewErrBodyTooLarge()
	}
	return apiErrors.NewErrValidation("Invalid JSON body")
}

func requireUserID(cm model.ContextManager, r *http.Request) (uuid.UUID, error) {
	userID, ok := cm.GetUserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, apiErrors.NewErrNoSessionToken()
	}
	return userID, nil
}

// flexString accepts a JSON string, number or boolean. Clients send PINs and
// ids either way.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	v, err := scalarString(data)
	if err != nil {
		return err
	}
	*s = flexString(v)
	return nil
}

// scalarString renders a JSON scalar as text. null yields "".
func scalarString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return "", err
		}
		return strconv.FormatBool(b), nil
	case '{', '[':
		return "", fmt.Errorf("expected a scalar, got %s", raw[:1])
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// timestampString normalizes a timestamp given as text or as epoch
// milliseconds. null yields nil.
func timestampString(raw json.RawMessage) (*string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return &s, nil
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return nil, err
	}
	if math.IsInf(ms, 0) || math.IsNaN(ms) {
		return nil, fmt.Errorf("invalid timestamp")
	}
	s := time.UnixMilli(int64(ms)).UTC().Format(time.RFC3339Nano)
	return &s, nil
}
