// Package store keeps a fixed number of temperature readings in memory.
// Once the store is full the oldest reading is overwritten by each new one.
package store

import (
	"errors"

	"github.com/KyleBrandon/temp-monitor/internal/reading"
)

const DefaultCapacity = 64

var ErrEmpty = errors.New("no readings stored")

type (
	Statistics struct {
		Min     reading.Temperature `json:"min"`
		Max     reading.Temperature `json:"max"`
		Average reading.Temperature `json:"average"`
		Count   int                 `json:"count"`
	}

	// Store is a ring buffer of readings. It is not safe for concurrent use.
	Store struct {
		buf   []reading.Reading
		next  int
		count int
	}
)

// New allocates a store holding up to capacity readings. A capacity below one
// falls back to DefaultCapacity.
func New(capacity int) *Store {
	if capacity < 1 {
		capacity = DefaultCapacity
	}

	return &Store{
		buf: make([]reading.Reading, capacity),
	}
}

func (s *Store) Capacity() int {
	return len(s.buf)
}

func (s *Store) Len() int {
	return s.count
}

// Push appends a reading, overwriting the oldest one when the store is full.
func (s *Store) Push(r reading.Reading) {
	s.buf[s.next] = r
	s.next = (s.next + 1) % len(s.buf)
	if s.count < len(s.buf) {
		s.count++
	}
}

// Latest returns the most recently pushed reading.
func (s *Store) Latest() (reading.Reading, bool) {
	if s.count == 0 {
		return reading.Reading{}, false
	}

	idx := (s.next - 1 + len(s.buf)) % len(s.buf)
	return s.buf[idx], true
}

// Statistics scans the stored readings for min, max and average.
func (s *Store) Statistics() (Statistics, error) {
	if s.count == 0 {
		return Statistics{}, ErrEmpty
	}

	lo := s.buf[0].Temperature.Celsius
	hi := lo
	var sum float64
	for _, r := range s.buf[:s.count] {
		c := r.Temperature.Celsius
		if c < lo {
			lo = c
		}
		if c > hi {
			hi = c
		}
		sum += float64(c)
	}

	return Statistics{
		Min:     reading.NewTemperature(lo),
		Max:     reading.NewTemperature(hi),
		Average: reading.NewTemperature(float32(sum / float64(s.count))),
		Count:   s.count,
	}, nil
}

// Readings returns a copy of the stored readings, oldest first.
func (s *Store) Readings() []reading.Reading {
	result := make([]reading.Reading, s.count)
	if s.count < len(s.buf) {
		copy(result, s.buf[:s.count])
	} else {
		n := copy(result, s.buf[s.next:])
		copy(result[n:], s.buf[:s.next])
	}

	return result
}

// Reset empties the store without releasing the backing array.
func (s *Store) Reset() {
	clear(s.buf)
	s.next = 0
	s.count = 0
}
