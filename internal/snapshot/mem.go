package snapshot

import "context"

// MemSlot is an in-memory slot for tests. SaveErr, when set, is returned
// by every Save so callers' failure paths can be exercised.
type MemSlot struct {
	Data    []byte
	SaveErr error
	Saves   int
}

func (s *MemSlot) Load(_ context.Context) ([]byte, error) {
	if s.Data == nil {
		return nil, ErrNotFound
	}
	out := make([]byte, len(s.Data))
	copy(out, s.Data)
	return out, nil
}

func (s *MemSlot) Save(_ context.Context, data []byte) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Data = make([]byte, len(data))
	copy(s.Data, data)
	s.Saves++
	return nil
}
