package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// AnswerKind tells which shape an AnswerValue holds.
type AnswerKind uint8

const (
	AnswerEmpty AnswerKind = iota
	AnswerScalar
	AnswerList
	AnswerLikert
)

// ScalarKind tells which primitive a Scalar holds.
type ScalarKind uint8

const (
	ScalarString ScalarKind = iota
	ScalarNumber
	ScalarBool
)

// Scalar is a single primitive answer. Numbers keep the literal they were
// submitted with so that "4" and "4.0" render the way the respondent sent them.
type Scalar struct {
	Kind ScalarKind
	Text string
	Bool bool
}

func StringScalar(s string) Scalar { return Scalar{Kind: ScalarString, Text: s} }

func NumberScalar(f float64) Scalar {
	return Scalar{Kind: ScalarNumber, Text: strconv.FormatFloat(f, 'f', -1, 64)}
}

func BoolScalar(b bool) Scalar { return Scalar{Kind: ScalarBool, Bool: b} }

// Number returns the numeric value of a number scalar.
func (s Scalar) Number() (float64, bool) {
	if s.Kind != ScalarNumber {
		return 0, false
	}
	f, err := strconv.ParseFloat(s.Text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (s Scalar) String() string {
	if s.Kind == ScalarBool {
		return strconv.FormatBool(s.Bool)
	}
	return s.Text
}

func (s Scalar) appendJSON(buf *bytes.Buffer) {
	switch s.Kind {
	case ScalarNumber:
		buf.WriteString(s.Text)
	case ScalarBool:
		buf.WriteString(strconv.FormatBool(s.Bool))
	default:
		writeJSONString(buf, s.Text)
	}
}

// LikertAnswer is one rated row of a likert grid.
type LikertAnswer struct {
	Row   string
	Value Scalar
}

// AnswerValue is the answer_value payload of a response item: nothing, a
// scalar, a list of scalars (multi-select) or a row -> value map (likert).
// Row order of a likert map is kept as submitted.
type AnswerValue struct {
	kind   AnswerKind
	scalar Scalar
	list   []Scalar
	likert []LikertAnswer
}

func EmptyAnswer() AnswerValue { return AnswerValue{} }

func ScalarAnswer(s Scalar) AnswerValue { return AnswerValue{kind: AnswerScalar, scalar: s} }

func ListAnswer(values ...Scalar) AnswerValue {
	return AnswerValue{kind: AnswerList, list: append([]Scalar(nil), values...)}
}

// LikertAnswers builds a likert map. A repeated row keeps its first position
// and its last value.
func LikertAnswers(rows ...LikertAnswer) AnswerValue {
	out := AnswerValue{kind: AnswerLikert, likert: make([]LikertAnswer, 0, len(rows))}
	for _, r := range rows {
		out.setRow(r.Row, r.Value)
	}
	return out
}

func (a *AnswerValue) setRow(row string, v Scalar) {
	for i := range a.likert {
		if a.likert[i].Row == row {
			a.likert[i].Value = v
			return
		}
	}
	a.likert = append(a.likert, LikertAnswer{Row: row, Value: v})
}

func (a AnswerValue) Kind() AnswerKind { return a.kind }

func (a AnswerValue) IsEmpty() bool { return a.kind == AnswerEmpty }

func (a AnswerValue) Scalar() (Scalar, bool) { return a.scalar, a.kind == AnswerScalar }

func (a AnswerValue) List() []Scalar { return a.list }

func (a AnswerValue) Likert() []LikertAnswer { return a.likert }

// CompactJSON renders the value without insignificant whitespace and without
// HTML escaping. Empty values render as "null".
func (a AnswerValue) CompactJSON() string {
	var buf bytes.Buffer
	switch a.kind {
	case AnswerScalar:
		a.scalar.appendJSON(&buf)
	case AnswerList:
		buf.WriteByte('[')
		for i, s := range a.list {
			if i > 0 {
				buf.WriteByte(',')
			}
			s.appendJSON(&buf)
		}
		buf.WriteByte(']')
	case AnswerLikert:
		buf.WriteByte('{')
		for i, r := range a.likert {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeJSONString(&buf, r.Row)
			buf.WriteByte(':')
			r.Value.appendJSON(&buf)
		}
		buf.WriteByte('}')
	default:
		buf.WriteString("null")
	}
	return buf.String()
}

func (a AnswerValue) MarshalJSON() ([]byte, error) {
	return []byte(a.CompactJSON()), nil
}

// UnmarshalJSON accepts null, a primitive, an array or an object. Nested
// arrays and objects inside a list or map are kept as their compact JSON text
// so old payloads with unexpected shapes still load.
func (a *AnswerValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		if tok == nil {
			*a = AnswerValue{}
			return nil
		}
		s, err := scalarFromRaw(bytes.TrimSpace(data))
		if err != nil {
			return err
		}
		*a = ScalarAnswer(s)
		return nil
	}

	switch delim {
	case '[':
		out := AnswerValue{kind: AnswerList, list: []Scalar{}}
		for dec.More() {
			s, err := decodeScalar(dec)
			if err != nil {
				return err
			}
			out.list = append(out.list, s)
		}
		*a = out
	case '{':
		out := AnswerValue{kind: AnswerLikert, likert: []LikertAnswer{}}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			key, ok := keyTok.(string)
			if !ok {
				return fmt.Errorf("answer_value: unexpected key %v", keyTok)
			}
			s, err := decodeScalar(dec)
			if err != nil {
				return err
			}
			out.setRow(key, s)
		}
		*a = out
	default:
		return fmt.Errorf("answer_value: unexpected delimiter %v", delim)
	}
	// closing delimiter
	_, err = dec.Token()
	return err
}

func decodeScalar(dec *json.Decoder) (Scalar, error) {
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return Scalar{}, err
	}
	return scalarFromRaw(raw)
}

func scalarFromRaw(raw []byte) (Scalar, error) {
	if len(raw) == 0 {
		return Scalar{}, errors.New("answer_value: empty element")
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Scalar{}, err
		}
		return StringScalar(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return Scalar{}, err
		}
		return BoolScalar(b), nil
	case '{', '[', 'n':
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return Scalar{}, err
		}
		return StringScalar(buf.String()), nil
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return Scalar{}, err
		}
		return Scalar{Kind: ScalarNumber, Text: n.String()}, nil
	}
}

// Value stores the payload in a jsonb column; empty answers become NULL.
func (a AnswerValue) Value() (driver.Value, error) {
	if a.kind == AnswerEmpty {
		return nil, nil
	}
	return a.CompactJSON(), nil
}

func (a *AnswerValue) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = AnswerValue{}
		return nil
	case []byte:
		return a.UnmarshalJSON(v)
	case string:
		return a.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("answer_value: cannot scan %T", src)
	}
}

// GormDataType lets gorm pick jsonb on postgres.
func (AnswerValue) GormDataType() string { return "jsonb" }

func writeJSONString(buf *bytes.Buffer, s string) {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	// Encode appends a newline
	buf.Truncate(buf.Len() - 1)
}
