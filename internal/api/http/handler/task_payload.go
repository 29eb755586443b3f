package handler

import (
	"encoding/json"
	"fmt"

	apiErrors "github.com/dtroode/taskflow-server/internal/api/errors"
	"github.com/dtroode/taskflow-server/internal/model"
)

// taskFields is a task body keyed by field name. Each field may arrive under
// several aliases; the first alias present wins.
type taskFields map[string]json.RawMessage

func (f taskFields) lookup(keys ...string) (string, json.RawMessage, bool) {
	for _, k := range keys {
		if v, ok := f[k]; ok {
			return k, v, true
		}
	}
	return "", nil, false
}

func invalidField(key string) error {
	return apiErrors.NewErrValidation(fmt.Sprintf("Invalid %s", key))
}

func (f taskFields) optString(keys ...string) (*string, error) {
	key, raw, ok := f.lookup(keys...)
	if !ok || isNull(raw) {
		return nil, nil
	}
	s, err := scalarString(raw)
	if err != nil {
		return nil, invalidField(key)
	}
	return &s, nil
}

func (f taskFields) optBool(keys ...string) (*bool, error) {
	key, raw, ok := f.lookup(keys...)
	if !ok || isNull(raw) {
		return nil, nil
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, invalidField(key)
	}
	return &b, nil
}

// optTimestamp reports whether the field was present at all. A present null
// yields (true, nil).
func (f taskFields) optTimestamp(keys ...string) (bool, *string, error) {
	key, raw, ok := f.lookup(keys...)
	if !ok {
		return false, nil, nil
	}
	s, err := timestampString(raw)
	if err != nil {
		return true, nil, invalidField(key)
	}
	return true, s, nil
}

func (f taskFields) optTags(keys ...string) (*[]string, error) {
	key, raw, ok := f.lookup(keys...)
	if !ok {
		return nil, nil
	}
	tags := []string{}
	if isNull(raw) {
		return &tags, nil
	}
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil, invalidField(key)
	}
	return &tags, nil
}

// taskInput resolves aliases and JSON types into a model.TaskInput.
func (f taskFields) taskInput() (model.TaskInput, error) {
	var (
		in  model.TaskInput
		err error
	)

	id, err := f.optString("id")
	if err != nil {
		return in, err
	}
	if id != nil {
		in.ID = *id
	}

	if in.Text, err = f.optString("text"); err != nil {
		return in, err
	}
	if in.Category, err = f.optString("category"); err != nil {
		return in, err
	}
	if in.ListName, err = f.optString("listName", "list_name", "list"); err != nil {
		return in, err
	}
	if in.Tags, err = f.optTags("tags"); err != nil {
		return in, err
	}
	if in.DueDateSet, in.DueDate, err = f.optTimestamp("dueDate", "due_date"); err != nil {
		return in, err
	}
	if in.Priority, err = f.optString("priority"); err != nil {
		return in, err
	}
	if in.Notes, err = f.optString("notes"); err != nil {
		return in, err
	}
	if in.Completed, err = f.optBool("completed", "done"); err != nil {
		return in, err
	}
	if in.CompletedAtSet, in.CompletedAt, err = f.optTimestamp("completedAt", "completed_at"); err != nil {
		return in, err
	}
	if in.IsArchived, err = f.optBool("isArchived", "is_archived"); err != nil {
		return in, err
	}
	if _, in.CreatedAt, err = f.optTimestamp("createdAt", "created_at"); err != nil {
		return in, err
	}
	if _, in.LastModified, err = f.optTimestamp("lastModified", "last_modified"); err != nil {
		return in, err
	}

	return in, nil
}
