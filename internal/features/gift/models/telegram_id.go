package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidTelegramID = errors.New("invalid telegram id")

// TelegramID is a Telegram user id in canonical decimal form. Clients send
// it both as a JSON number and as a string; both decode to the same value.
type TelegramID string

// ParseTelegramID normalizes s ("00123", " 123 ", "+123") to "123".
func ParseTelegramID(s string) (TelegramID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidTelegramID
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// 123.0 from JS clients that went through a float
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int64(f)) {
			return "", fmt.Errorf("%w: %q", ErrInvalidTelegramID, s)
		}
		n = int64(f)
	}
	if n == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTelegramID, s)
	}
	return TelegramID(strconv.FormatInt(n, 10)), nil
}

// FromInt64 converts an id coming from the Bot API.
func FromInt64(id int64) TelegramID {
	return TelegramID(strconv.FormatInt(id, 10))
}

func (id TelegramID) String() string { return string(id) }

func (id TelegramID) IsZero() bool { return id == "" }

// Int64 returns the numeric id, or 0 when it is not set.
func (id TelegramID) Int64() int64 {
	n, _ := strconv.ParseInt(string(id), 10, 64)
	return n
}

func (id *TelegramID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			*id = ""
			return nil
		}
	} else {
		raw = string(data)
	}

	parsed, err := ParseTelegramID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
