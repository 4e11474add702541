package preview

import (
	"bytes"
	"encoding/json"

	engine "contentpreview/service/preview"
)

// Message is one decoded preview payload. Values stay raw until a command
// asks for them.
type Message map[string]json.RawMessage

func (m Message) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// String reads a scalar parameter. Numbers and booleans keep their literal
// text, null reads as "".
func (m Message) String(key string) (string, error) {
	raw := bytes.TrimSpace(m[key])
	if len(raw) == 0 {
		return "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", &InvalidParameterError{Parameter: key}
		}
		return s, nil
	case '{', '[':
		return "", &InvalidParameterError{Parameter: key}
	case 'n':
		return "", nil
	default:
		return string(raw), nil
	}
}

func (m Message) require(key string) (string, error) {
	if !m.Has(key) {
		return "", &MissingParameterError{Parameter: key}
	}
	return m.String(key)
}

// command reads the command name. Anything but a JSON string is an unknown
// command.
func (m Message) command() (string, Command) {
	var name string
	if err := json.Unmarshal(m["command"], &name); err != nil {
		return string(m["command"]), CommandUnknown
	}
	return name, ParseCommand(name)
}

type Command int

const (
	CommandUnknown Command = iota
	CommandStart
	CommandStop
	CommandUpdate
)

func ParseCommand(s string) Command {
	switch s {
	case "start":
		return CommandStart
	case "stop":
		return CommandStop
	case "update":
		return CommandUpdate
	default:
		return CommandUnknown
	}
}

func (c Command) String() string {
	switch c {
	case CommandStart:
		return "start"
	case CommandStop:
		return "stop"
	case CommandUpdate:
		return "update"
	default:
		return "unknown"
	}
}

type property struct {
	name  string
	value json.RawMessage
}

// decodeProperties reads a JSON object keeping the order of its keys. A key
// given twice keeps its first position and its last value.
func decodeProperties(raw json.RawMessage) ([]property, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil || tok != json.Delim('{') {
		return nil, false
	}

	var properties []property
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, false
		}
		name, ok := tok.(string)
		if !ok {
			return nil, false
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, false
		}
		if i, seen := index[name]; seen {
			properties[i].value = value
			continue
		}
		index[name] = len(properties)
		properties = append(properties, property{name: name, value: value})
	}

	if tok, err := dec.Token(); err != nil || tok != json.Delim('}') {
		return nil, false
	}
	return properties, true
}

type Response struct {
	Command string `json:"command"`
	Content string `json:"content"`
	Msg     string `json:"msg"`
}

type UpdateResponse struct {
	Command string         `json:"command"`
	Content string         `json:"content"`
	Data    engine.Changes `json:"data"`
}

type FailResponse struct {
	Command   string  `json:"command"`
	Code      int     `json:"code"`
	Msg       string  `json:"msg"`
	ParentMsg Message `json:"parentMsg"`
}
