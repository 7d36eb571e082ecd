package store

import (
	"context"
	"time"

	"jobwatch/internal/model"
)

// NopStore is a no-op store used by the one-shot check command. It never
// marks signatures, so every posting appears new on each sweep.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

var _ model.SeenStore = (*NopStore)(nil)

func (s *NopStore) HasSeen(context.Context, string) (bool, error) { return false, nil }
func (s *NopStore) MarkSeen(context.Context, string) error        { return nil }
func (s *NopStore) Cleanup(context.Context, time.Duration) error  { return nil }
func (s *NopStore) Close() error                                  { return nil }
