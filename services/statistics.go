package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/vnkhanh/surveyhub/models"
)

// ValueCounts is a frequency table that remembers the order in which values
// were first seen.
type ValueCounts struct {
	keys   []string
	counts map[string]int
}

func (v *ValueCounts) Add(key string) {
	if v.counts == nil {
		v.counts = make(map[string]int)
	}
	if _, ok := v.counts[key]; !ok {
		v.keys = append(v.keys, key)
	}
	v.counts[key]++
}

func (v ValueCounts) Len() int { return len(v.keys) }

func (v ValueCounts) Keys() []string { return append([]string(nil), v.keys...) }

func (v ValueCounts) Get(key string) int { return v.counts[key] }

func (v ValueCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range v.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		fmt.Fprintf(&buf, ":%d", v.counts[k])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (v *ValueCounts) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*v = ValueCounts{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("value_counts: expected object, got %v", tok)
	}
	out := ValueCounts{counts: map[string]int{}}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var n int
		if err := dec.Decode(&n); err != nil {
			return err
		}
		if _, ok := out.counts[key]; !ok {
			out.keys = append(out.keys, key)
		}
		out.counts[key] = n
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*v = out
	return nil
}

type QuestionStatistics struct {
	ResponseCount int         `json:"response_count"`
	ValueCounts   ValueCounts `json:"value_counts"`
	TextResponses []string    `json:"text_responses"`
	Average       *float64    `json:"average"`

	numericMean  float64
	numericCount int
}

// addNumber folds v into a running mean that stays finite for any finite input.
func (s *QuestionStatistics) addNumber(v float64) {
	s.numericCount++
	n := float64(s.numericCount)
	d := v - s.numericMean
	if math.IsInf(d, 0) {
		s.numericMean += v/n - s.numericMean/n
		return
	}
	s.numericMean += d / n
}

type StatisticsReport struct {
	TotalResponses int                                `json:"total_responses"`
	QuestionStats  map[uuid.UUID]*QuestionStatistics `json:"question_stats"`
}

// For returns the statistics of a question, or nil when nobody answered it.
func (r *StatisticsReport) For(questionID uuid.UUID) *QuestionStatistics {
	if r == nil {
		return nil
	}
	return r.QuestionStats[questionID]
}

// Aggregate folds completed responses into per-question statistics. Averages
// are left unrounded.
func Aggregate(responses []models.Response) *StatisticsReport {
	report := &StatisticsReport{
		TotalResponses: len(responses),
		QuestionStats:  make(map[uuid.UUID]*QuestionStatistics),
	}

	for ri := range responses {
		for ii := range responses[ri].Items {
			item := &responses[ri].Items[ii]
			st, ok := report.QuestionStats[item.QuestionID]
			if !ok {
				st = &QuestionStatistics{TextResponses: []string{}}
				report.QuestionStats[item.QuestionID] = st
			}
			st.ResponseCount++

			v := item.AnswerValue
			switch v.Kind() {
			case models.AnswerList:
				for _, s := range v.List() {
					st.ValueCounts.Add(s.String())
				}
			case models.AnswerLikert:
				for _, row := range v.Likert() {
					st.ValueCounts.Add(row.Row + ":" + row.Value.String())
					if n, ok := row.Value.Number(); ok {
						st.addNumber(n)
					}
				}
			case models.AnswerScalar:
				s, _ := v.Scalar()
				if n, ok := s.Number(); ok {
					st.addNumber(n)
				}
				st.ValueCounts.Add(s.String())
			case models.AnswerEmpty:
			}

			if text := item.Text(); text != "" {
				st.TextResponses = append(st.TextResponses, text)
			}
		}
	}

	for _, st := range report.QuestionStats {
		if st.numericCount > 0 && !math.IsInf(st.numericMean, 0) && !math.IsNaN(st.numericMean) {
			avg := st.numericMean
			st.Average = &avg
		}
	}
	return report
}
